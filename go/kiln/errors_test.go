// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kiln

import (
	"errors"
	"testing"
)

func TestConstError_Error(t *testing.T) {
	const myError = ConstError("this is a constant error")

	if myError.Error() != "this is a constant error" {
		t.Errorf("expected 'this is a constant error', got '%s'", myError.Error())
	}

	if !errors.Is(myError, ConstError("this is a constant error")) {
		t.Errorf("expected true, got false")
	}
}

func TestConstError_Empty(t *testing.T) {
	const emptyError ConstError = ""

	if emptyError.Error() != "" {
		t.Errorf("expected empty string, got '%s'", emptyError.Error())
	}
}

func TestExecutionError_UnwrapsToKind(t *testing.T) {
	kinds := []error{
		ErrStackUnderflow,
		ErrStackOverflow,
		ErrCodeOutOfBounds,
		ErrMemoryOutOfBounds,
		ErrInvalidJump,
		ErrStepLimitReached,
	}
	for _, kind := range kinds {
		t.Run(kind.Error(), func(t *testing.T) {
			var err error = &ExecutionError{Err: kind, Pc: 12, OpCode: 0x01}
			if !errors.Is(err, kind) {
				t.Errorf("expected %v to wrap %v", err, kind)
			}
			for _, other := range kinds {
				if other != kind && errors.Is(err, other) {
					t.Errorf("%v should not match %v", err, other)
				}
			}
		})
	}
}

func TestExecutionError_InvalidInstructionCanBeExtracted(t *testing.T) {
	var err error = &ExecutionError{
		Err:    &InvalidInstructionError{OpCode: 0xef, Offset: 7},
		Pc:     7,
		OpCode: 0xef,
	}

	var invalid *InvalidInstructionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected error to contain an invalid instruction error")
	}
	if want, got := byte(0xef), invalid.OpCode; want != got {
		t.Errorf("unexpected op code, wanted 0x%02x, got 0x%02x", want, got)
	}
	if want, got := uint64(7), invalid.Offset; want != got {
		t.Errorf("unexpected offset, wanted %d, got %d", want, got)
	}
	if want, got := "execution failed at pc 7 (op 0xef): invalid instruction 0xef at offset 7", err.Error(); want != got {
		t.Errorf("unexpected message, wanted %q, got %q", want, got)
	}
}
