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
	"fmt"
	"strings"
)

// Instruction is a single decoded instruction of a code sequence.
type Instruction struct {
	Offset uint64
	OpCode OpCode
	// Immediate holds the data bytes of PUSH instructions. It is shorter than
	// the instruction's push length if the code ends prematurely.
	Immediate []byte
	// Valid is false for bytes not mapped to any instruction.
	Valid bool
}

// Truncated is true for PUSH instructions whose immediate data runs past the
// end of the code.
func (i Instruction) Truncated() bool {
	return len(i.Immediate) < PushImmediateLength(i.OpCode)
}

func (i Instruction) String() string {
	if !i.Valid {
		return fmt.Sprintf("INVALID(0x%02x)", byte(i.OpCode))
	}
	if !IsPush(i.OpCode) {
		return i.OpCode.String()
	}
	res := fmt.Sprintf("%v 0x%x", i.OpCode, i.Immediate)
	if i.Truncated() {
		res += " (truncated)"
	}
	return res
}

// Disassemble splits the given code into instructions, skipping the
// immediate data of PUSH instructions.
func Disassemble(code []byte) []Instruction {
	res := []Instruction{}
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		cur := Instruction{
			Offset: pc,
			OpCode: op,
			Valid:  IsValid(op),
		}
		pc++
		if n := uint64(PushImmediateLength(op)); n > 0 {
			end := min(pc+n, uint64(len(code)))
			cur.Immediate = code[pc:end]
			pc += n
		}
		res = append(res, cur)
	}
	return res
}

// Listing renders the given instructions one per line, prefixed by their
// code offset.
func Listing(instructions []Instruction) string {
	var builder strings.Builder
	for _, instruction := range instructions {
		builder.WriteString(fmt.Sprintf("0x%04x: %v\n", instruction.Offset, instruction))
	}
	return builder.String()
}
