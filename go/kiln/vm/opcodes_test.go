// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vm

import (
	"errors"
	"regexp"
	"slices"
	"testing"

	"github.com/kiln-vm/kiln/go/kiln"
)

func TestOpCode_ValidOpCodesHaveNames(t *testing.T) {
	noPrettyPrint := regexp.MustCompile(`^op\(0x[0-9a-f]{2}\)$`)
	for i := 0; i < 256; i++ {
		op := OpCode(i)
		want := !noPrettyPrint.MatchString(op.String())
		if got := IsValid(op); want != got {
			t.Errorf("invalid classification of instruction %v, wanted %t, got %t", op, want, got)
		}
	}
}

func TestOpCode_NumberOfOpCodes(t *testing.T) {
	currentOpCodes := []OpCode{
		STOP, ADD, MUL, SUB, DIV, SDIV, MOD, SMOD, ADDMOD, MULMOD, EXP, SIGNEXTEND,
		LT, GT, SLT, SGT, EQ, ISZERO, AND, OR, XOR, NOT, BYTE, SHL, SHR, SAR,
		CALLDATALOAD, CALLDATASIZE, CALLDATACOPY, CODESIZE, CODECOPY,
		POP, MLOAD, MSTORE, MSTORE8, SLOAD, SSTORE, JUMP, JUMPI, PC, MSIZE, JUMPDEST,
		PUSH1, PUSH2, PUSH3, PUSH4, PUSH5, PUSH6, PUSH7, PUSH8, PUSH9, PUSH10, PUSH11, PUSH12, PUSH13, PUSH14, PUSH15, PUSH16, PUSH17, PUSH18, PUSH19, PUSH20, PUSH21, PUSH22, PUSH23, PUSH24, PUSH25, PUSH26, PUSH27, PUSH28, PUSH29, PUSH30, PUSH31, PUSH32,
		DUP1, DUP2, DUP3, DUP4, DUP5, DUP6, DUP7, DUP8, DUP9, DUP10, DUP11, DUP12, DUP13, DUP14, DUP15, DUP16,
		SWAP1, SWAP2, SWAP3, SWAP4, SWAP5, SWAP6, SWAP7, SWAP8, SWAP9, SWAP10, SWAP11, SWAP12, SWAP13, SWAP14, SWAP15, SWAP16,
		RETURN,
	}

	for i := 0; i < 256; i++ {
		op := OpCode(i)
		if want, got := slices.Contains(currentOpCodes, op), IsValid(op); want != got {
			t.Errorf("unexpected validity of %v, wanted %t, got %t", op, want, got)
		}
	}
	if want, got := currentOpCodes, ValidOpCodes(); len(want) != len(got) {
		t.Errorf("unexpected number of op codes, wanted %d, got %d", len(want), len(got))
	}
}

func TestOpCode_Decode(t *testing.T) {
	for i := 0; i < 256; i++ {
		op, err := Decode(byte(i), 42)
		if IsValid(OpCode(i)) {
			if err != nil {
				t.Errorf("unexpected error decoding 0x%02x: %v", i, err)
			}
			if want, got := OpCode(i), op; want != got {
				t.Errorf("unexpected op code, wanted %v, got %v", want, got)
			}
			continue
		}
		var invalid *kiln.InvalidInstructionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected invalid instruction error for 0x%02x, got %v", i, err)
		}
		if want, got := byte(i), invalid.OpCode; want != got {
			t.Errorf("unexpected op code in error, wanted 0x%02x, got 0x%02x", want, got)
		}
		if want, got := uint64(42), invalid.Offset; want != got {
			t.Errorf("unexpected offset in error, wanted %d, got %d", want, got)
		}
	}
}

func TestOpCode_PushClassification(t *testing.T) {
	for i := 0; i < 256; i++ {
		op := OpCode(i)
		isPush := 0x60 <= i && i <= 0x7f
		if want, got := isPush, IsPush(op); want != got {
			t.Errorf("unexpected push classification of %v, wanted %t, got %t", op, want, got)
		}
		want := 0
		if isPush {
			want = i - 0x60 + 1
		}
		if got := PushImmediateLength(op); want != got {
			t.Errorf("unexpected push length of %v, wanted %d, got %d", op, want, got)
		}
	}
	if want, got := 1, PushImmediateLength(PUSH1); want != got {
		t.Errorf("unexpected length of PUSH1, wanted %d, got %d", want, got)
	}
	if want, got := 32, PushImmediateLength(PUSH32); want != got {
		t.Errorf("unexpected length of PUSH32, wanted %d, got %d", want, got)
	}
}

func TestOpCode_DupAndSwapPositions(t *testing.T) {
	for i := 0; i < 16; i++ {
		dup := OpCode(0x80 + i)
		swap := OpCode(0x90 + i)
		if want, got := i+1, DupPosition(dup); want != got {
			t.Errorf("unexpected position of %v, wanted %d, got %d", dup, want, got)
		}
		if want, got := i+1, SwapPosition(swap); want != got {
			t.Errorf("unexpected position of %v, wanted %d, got %d", swap, want, got)
		}
		if got := SwapPosition(dup); got != 0 {
			t.Errorf("%v should not have a swap position, got %d", dup, got)
		}
		if got := DupPosition(swap); got != 0 {
			t.Errorf("%v should not have a dup position, got %d", swap, got)
		}
	}
	for _, op := range []OpCode{STOP, ADD, PUSH1, PUSH32, RETURN, OpCode(0xa0)} {
		if DupPosition(op) != 0 || SwapPosition(op) != 0 {
			t.Errorf("%v should have neither a dup nor a swap position", op)
		}
	}
}

func TestOpCode_String(t *testing.T) {
	tests := map[OpCode]string{
		STOP:           "STOP",
		PUSH1:          "PUSH1",
		PUSH32:         "PUSH32",
		DUP16:          "DUP16",
		SWAP1:          "SWAP1",
		SIGNEXTEND:     "SIGNEXTEND",
		OpCode(0xad):   "op(0xad)",
		OpCode(0xfe):   "op(0xfe)",
		OpCode(0x0c):   "op(0x0c)",
		CALLDATALOAD:   "CALLDATALOAD",
		OpCode(RETURN): "RETURN",
	}
	for op, want := range tests {
		if got := op.String(); want != got {
			t.Errorf("unexpected name, wanted %s, got %s", want, got)
		}
	}
}
