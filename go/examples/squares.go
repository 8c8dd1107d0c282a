// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import "github.com/kiln-vm/kiln/go/kiln/vm"

// GetSquaresExample stores i*i under key i for every i in [1, n] and
// returns the sum of all stored values, truncated to 32 bits.
func GetSquaresExample() Example {
	a := newAssembler()
	a.push(0)                     // [sum]
	a.push(0).op(vm.CALLDATALOAD) // [sum, i]

	a.label("loop")
	a.op(vm.DUP1, vm.ISZERO).pushLabel("end").op(vm.JUMPI)
	a.op(vm.DUP1, vm.DUP1, vm.MUL)    // [sum, i, i*i]
	a.op(vm.DUP1, vm.DUP3, vm.SSTORE) // storage[i] = i*i
	a.op(vm.DUP3, vm.ADD)             // [sum, i, sum+i*i]
	a.op(vm.SWAP2, vm.POP)            // [sum+i*i, i]
	a.push(1).op(vm.SWAP1, vm.SUB)    // [sum+i*i, i-1]
	a.pushLabel("loop").op(vm.JUMP)

	a.label("end")
	a.op(vm.POP)
	a.push(0).op(vm.MSTORE)
	a.push(32).push(0).op(vm.RETURN)

	return exampleSpec{
		Name:      "squares",
		Code:      mustAssemble(a),
		reference: squares,
	}.build()
}

func squares(n int) int {
	var sum uint32
	for i := 1; i <= n; i++ {
		sum += uint32(i) * uint32(i)
	}
	return int(sum)
}
