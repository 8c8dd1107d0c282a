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

// GetFibExample computes the n-th Fibonacci number iteratively, keeping all
// its variables on the stack. Results are truncated to 32 bits.
func GetFibExample() Example {
	a := newAssembler()
	a.push(0).op(vm.CALLDATALOAD) // [n]
	a.push(1)                     // [n, b]
	a.push(0)                     // [n, b, a]

	a.label("loop")
	a.op(vm.DUP3, vm.ISZERO).pushLabel("end").op(vm.JUMPI)
	a.op(vm.DUP1, vm.DUP3, vm.ADD)   // [n, b, a, a+b]
	a.op(vm.SWAP2, vm.SWAP1, vm.POP) // [n, a+b, b]
	a.op(vm.SWAP2).push(1).op(vm.SWAP1, vm.SUB, vm.SWAP2)
	a.pushLabel("loop").op(vm.JUMP)

	a.label("end")
	a.push(0).op(vm.MSTORE)
	a.push(32).push(0).op(vm.RETURN)

	return exampleSpec{
		Name:      "fib",
		Code:      mustAssemble(a),
		reference: fib,
	}.build()
}

func fib(n int) int {
	var a, b uint32 = 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return int(a)
}
