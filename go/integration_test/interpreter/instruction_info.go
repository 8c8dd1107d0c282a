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
	"github.com/kiln-vm/kiln/go/kiln/vm"
)

// StackUsage describes how many elements an instruction consumes and
// produces.
type StackUsage struct {
	popped int // < the number of elements popped from the stack
	pushed int // < the number of elements pushed on the stack
}

// getInstructions returns the stack usage of every member of the
// instruction set.
func getInstructions() map[vm.OpCode]StackUsage {
	res := map[vm.OpCode]StackUsage{
		vm.STOP:         {0, 0},
		vm.ADD:          {2, 1},
		vm.MUL:          {2, 1},
		vm.SUB:          {2, 1},
		vm.DIV:          {2, 1},
		vm.SDIV:         {2, 1},
		vm.MOD:          {2, 1},
		vm.SMOD:         {2, 1},
		vm.ADDMOD:       {3, 1},
		vm.MULMOD:       {3, 1},
		vm.EXP:          {2, 1},
		vm.SIGNEXTEND:   {2, 1},
		vm.LT:           {2, 1},
		vm.GT:           {2, 1},
		vm.SLT:          {2, 1},
		vm.SGT:          {2, 1},
		vm.EQ:           {2, 1},
		vm.ISZERO:       {1, 1},
		vm.AND:          {2, 1},
		vm.OR:           {2, 1},
		vm.XOR:          {2, 1},
		vm.NOT:          {1, 1},
		vm.BYTE:         {2, 1},
		vm.SHL:          {2, 1},
		vm.SHR:          {2, 1},
		vm.SAR:          {2, 1},
		vm.CALLDATALOAD: {1, 1},
		vm.CALLDATASIZE: {0, 1},
		vm.CALLDATACOPY: {3, 0},
		vm.CODESIZE:     {0, 1},
		vm.CODECOPY:     {3, 0},
		vm.POP:          {1, 0},
		vm.MLOAD:        {1, 1},
		vm.MSTORE:       {2, 0},
		vm.MSTORE8:      {2, 0},
		vm.SLOAD:        {1, 1},
		vm.SSTORE:       {2, 0},
		vm.JUMP:         {1, 0},
		vm.JUMPI:        {2, 0},
		vm.PC:           {0, 1},
		vm.MSIZE:        {0, 1},
		vm.JUMPDEST:     {0, 0},
		vm.RETURN:       {2, 0},
	}
	for i := 1; i <= 32; i++ {
		res[vm.PUSH1+vm.OpCode(i-1)] = StackUsage{0, 1}
	}
	for i := 1; i <= 16; i++ {
		res[vm.DUP1+vm.OpCode(i-1)] = StackUsage{i, i + 1}
		res[vm.SWAP1+vm.OpCode(i-1)] = StackUsage{i + 1, i + 1}
	}
	return res
}
