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

// maxAnalysisCodeLength is the length of the codes produced by
// generateAnalysisCode.
const maxAnalysisCodeLength = 0x6000

// generateAnalysisCode produces a code returning its argument after
// jumping over a long sequence of the given filler. Its run time is
// dominated by the jump analysis of the code.
func generateAnalysisCode(filler []byte) []byte {
	initCode := []byte{
		// Parse the input parameter.
		byte(vm.PUSH1), 0,
		byte(vm.CALLDATALOAD),

		// Store result (input) in memory[0].
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		// Jump over filler code (destination is a placeholder).
		byte(vm.PUSH2), 0xFF, 0xFF,
		byte(vm.JUMP),
	}

	endingCode := []byte{
		// Jumpdest for jumping over filler code.
		byte(vm.JUMPDEST),

		// Return the result from memory[0].
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	maxFillerCodeLength := maxAnalysisCodeLength - len(initCode) - len(endingCode)
	fillerCode := []byte{}
	for i := 0; i < maxFillerCodeLength/len(filler); i++ {
		fillerCode = append(fillerCode, filler...)
	}

	jumpdestPos := len(initCode) + len(fillerCode)
	initCode[7] = byte(jumpdestPos >> 8)
	initCode[8] = byte(jumpdestPos)

	code := append(initCode, fillerCode...)
	return append(code, endingCode...)
}

func GetJumpdestAnalysisExample() Example {
	return analysisExample("jumpdest", []byte{byte(vm.JUMPDEST)})
}

func GetStopAnalysisExample() Example {
	return analysisExample("stop", []byte{byte(vm.STOP)})
}

func GetPush1AnalysisExample() Example {
	return analysisExample("push1", []byte{byte(vm.PUSH1), 0})
}

// GetPush32AnalysisExample fills the code with PUSH32 instructions whose
// immediate data consists of JUMPDEST bytes, none of them valid targets.
func GetPush32AnalysisExample() Example {
	filler := []byte{byte(vm.PUSH32)}
	for i := 0; i < 32; i++ {
		filler = append(filler, byte(vm.JUMPDEST))
	}
	return analysisExample("push32", filler)
}

func analysisExample(name string, filler []byte) Example {
	return exampleSpec{
		Name:      name,
		Code:      generateAnalysisCode(filler),
		reference: identity,
	}.build()
}
