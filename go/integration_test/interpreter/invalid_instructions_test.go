// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
)

func TestInterpreterDetectsInvalidInstruction(t *testing.T) {
	instructions := getInstructions()
	for _, variant := range getAllInterpreterVariantsForTests() {
		interpreter := newInterpreter(t, variant)
		for i := 0; i < 256; i++ {
			op := vm.OpCode(i)
			if _, exists := instructions[op]; exists {
				continue
			}
			t.Run(fmt.Sprintf("%s-%s", variant, op), func(t *testing.T) {
				code := []byte{byte(vm.JUMPDEST), byte(op), byte(vm.STOP)}

				_, err := run(interpreter, code, []byte{})
				var invalid *kiln.InvalidInstructionError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected invalid instruction error, got %v", err)
				}
				if invalid.OpCode != byte(op) || invalid.Offset != 1 {
					t.Errorf("unexpected error details, got %v", invalid)
				}
			})
		}
	}
}

func TestInterpreterInstructionSetMatchesDecoder(t *testing.T) {
	instructions := getInstructions()
	for i := 0; i < 256; i++ {
		op := vm.OpCode(i)
		_, exists := instructions[op]
		if want, got := exists, vm.IsValid(op); want != got {
			t.Errorf("unexpected validity of %v, wanted %t, got %t", op, want, got)
		}
	}
}
