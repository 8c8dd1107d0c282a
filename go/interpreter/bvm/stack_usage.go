// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bvm

import (
	"fmt"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
)

// stackUsage describes the stack effect of an instruction. The instruction
// accesses the elements in [from, to) relative to the current stack pointer
// and changes the stack height by delta.
type stackUsage struct {
	from, to, delta int
}

// computeStackUsage returns the stack usage of the given opcode, or an error
// if it is not a valid instruction.
func computeStackUsage(op vm.OpCode) (stackUsage, error) {
	makeUsage := func(pops, pushes int) stackUsage {
		delta := pushes - pops
		to := 0
		if delta > 0 {
			to = delta
		}
		return stackUsage{from: -pops, to: to, delta: delta}
	}

	if vm.IsPush(op) {
		return makeUsage(0, 1), nil
	}
	if n := vm.DupPosition(op); n > 0 {
		return makeUsage(n, n+1), nil
	}
	if n := vm.SwapPosition(op); n > 0 {
		return makeUsage(n+1, n+1), nil
	}

	switch op {
	case vm.STOP, vm.JUMPDEST:
		return makeUsage(0, 0), nil
	case vm.PC, vm.MSIZE, vm.CALLDATASIZE, vm.CODESIZE:
		return makeUsage(0, 1), nil
	case vm.POP, vm.JUMP:
		return makeUsage(1, 0), nil
	case vm.ISZERO, vm.NOT, vm.CALLDATALOAD, vm.MLOAD, vm.SLOAD:
		return makeUsage(1, 1), nil
	case vm.MSTORE, vm.MSTORE8, vm.SSTORE, vm.JUMPI, vm.RETURN:
		return makeUsage(2, 0), nil
	case vm.ADD, vm.SUB, vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.EXP,
		vm.SIGNEXTEND, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.AND, vm.OR,
		vm.XOR, vm.BYTE, vm.SHL, vm.SHR, vm.SAR:
		return makeUsage(2, 1), nil
	case vm.CALLDATACOPY, vm.CODECOPY:
		return makeUsage(3, 0), nil
	case vm.ADDMOD, vm.MULMOD:
		return makeUsage(3, 1), nil
	}

	return stackUsage{}, fmt.Errorf("unsupported opcode: %v", op)
}

// stackLimits is the range of stack heights an instruction may start with.
type stackLimits struct {
	min int
	max int
}

var precomputedStackLimits = func() (res [256]stackLimits) {
	for i := range res {
		usage, err := computeStackUsage(vm.OpCode(i))
		if err != nil {
			// Never dispatched, the decoder rejects these bytes first.
			continue
		}
		res[i] = stackLimits{
			min: -usage.from,
			max: maxStackSize - usage.to,
		}
	}
	return res
}()

// checkStackLimits verifies that op can run on a stack of the given height
// without under- or overflowing it.
func checkStackLimits(stackLen int, op vm.OpCode) error {
	limits := precomputedStackLimits[op]
	if stackLen < limits.min {
		return kiln.ErrStackUnderflow
	}
	if stackLen > limits.max {
		return kiln.ErrStackOverflow
	}
	return nil
}
