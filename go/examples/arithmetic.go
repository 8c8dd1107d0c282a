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

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/kiln-vm/kiln/go/kiln/vm"
)

// Memory slots of the arithmetic example.
const (
	slotResult = 0x00
	slotI      = 0x20
	slotN      = 0x40
)

// GetArithmeticExample computes
//
//	result := 0
//	for i := 1; i <= n; i++ {
//		result += i
//		result *= i
//		result += i * i
//		result -= i
//		result /= i
//		result *= (i % 3) + 1
//		result += i * i * i
//	}
//	return result % MaxInt32
//
// using wrapping 256-bit arithmetic, keeping its variables in memory.
func GetArithmeticExample() Example {
	a := newAssembler()
	load := func(slot uint64) { a.push(slot).op(vm.MLOAD) }
	store := func(slot uint64) { a.push(slot).op(vm.MSTORE) }

	a.push(0).op(vm.CALLDATALOAD)
	store(slotN)
	a.push(1)
	store(slotI)

	a.label("loop")
	load(slotN)
	load(slotI)
	a.op(vm.GT).pushLabel("end").op(vm.JUMPI)

	// result += i
	load(slotI)
	load(slotResult)
	a.op(vm.ADD)
	store(slotResult)

	// result *= i
	load(slotI)
	load(slotResult)
	a.op(vm.MUL)
	store(slotResult)

	// result += i * i
	load(slotI)
	load(slotI)
	a.op(vm.MUL)
	load(slotResult)
	a.op(vm.ADD)
	store(slotResult)

	// result -= i
	load(slotI)
	load(slotResult)
	a.op(vm.SUB)
	store(slotResult)

	// result /= i
	load(slotI)
	load(slotResult)
	a.op(vm.DIV)
	store(slotResult)

	// result *= (i % 3) + 1
	a.push(3)
	load(slotI)
	a.op(vm.MOD).push(1).op(vm.ADD)
	load(slotResult)
	a.op(vm.MUL)
	store(slotResult)

	// result += i * i * i
	load(slotI)
	load(slotI)
	a.op(vm.MUL)
	load(slotI)
	a.op(vm.MUL)
	load(slotResult)
	a.op(vm.ADD)
	store(slotResult)

	// i++
	a.push(1)
	load(slotI)
	a.op(vm.ADD)
	store(slotI)
	a.pushLabel("loop").op(vm.JUMP)

	a.label("end")
	a.push(math.MaxInt32)
	load(slotResult)
	a.op(vm.MOD)
	store(slotResult)
	a.push(32).push(slotResult).op(vm.RETURN)

	return exampleSpec{
		Name:      "arithmetic",
		Code:      mustAssemble(a),
		reference: arithmetic,
	}.build()
}

func arithmetic(n int) int {
	iterations := uint256.NewInt(uint64(n))
	result := uint256.NewInt(0)
	for i := uint256.NewInt(1); i.Lt(iterations) || i.Eq(iterations); i.AddUint64(i, 1) {
		iSquared := i.Clone().Mul(i, i)
		iCubed := iSquared.Clone().Mul(iSquared, i)
		iMod3 := i.Clone().Mod(i, uint256.NewInt(3))
		result.Add(result, i)
		result.Mul(result, i)
		result.Add(result, iSquared)
		result.Sub(result, i)
		result.Div(result, i)
		result.Mul(result, iMod3.AddUint64(iMod3, 1))
		result.Add(result, iCubed)
	}
	maxInt32 := uint256.NewInt(math.MaxInt32)
	result.Mod(result, maxInt32)
	return int(result[0])
}
