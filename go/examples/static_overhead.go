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

// GetStaticOverheadExample is the worst case for very short programs. It
// triggers the allocations happening in every run:
// - non-empty code requires a jump analysis
// - CALLDATACOPY expands the memory
// - RETURN produces a non-empty output
func GetStaticOverheadExample() Example {
	code := []byte{
		byte(vm.PUSH1), 4, // push size 4
		byte(vm.PUSH1), 28, // push offset 28
		byte(vm.PUSH1), 28, // push destOffset 28
		byte(vm.CALLDATACOPY), // copy the low 4 bytes of the argument into memory
		byte(vm.PUSH1), 32,    // push len 32
		byte(vm.PUSH1), 0, // push offset 0
		byte(vm.RETURN), // return 32 bytes at offset 0
	}

	return exampleSpec{
		Name:      "static_overhead",
		Code:      code,
		reference: identity,
	}.build()
}

func identity(x int) int {
	return x
}
