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

import "github.com/kiln-vm/kiln/go/kiln/vm"

// bitvec is a bit vector with one bit per code position.
type bitvec []byte

func newBitvec(size int) bitvec {
	return make(bitvec, size/8+1)
}

func (bits bitvec) set(pos uint64) {
	bits[pos/8] |= 1 << (pos % 8)
}

func (bits bitvec) isSet(pos uint64) bool {
	return bits[pos/8]&(1<<(pos%8)) != 0
}

// codeAnalysis holds facts about a code sequence that are independent of
// the input of a run and can be shared among runs.
type codeAnalysis struct {
	jumpDests bitvec
	codeSize  uint64
}

// analyzeCode marks all JUMPDEST instructions of the given code. Bytes in
// the immediate data of PUSH instructions are skipped, so a 0x5b byte
// inside push data is not a valid jump target.
func analyzeCode(code []byte) *codeAnalysis {
	res := &codeAnalysis{
		jumpDests: newBitvec(len(code)),
		codeSize:  uint64(len(code)),
	}
	for pc := uint64(0); pc < uint64(len(code)); pc++ {
		op := vm.OpCode(code[pc])
		if op == vm.JUMPDEST {
			res.jumpDests.set(pc)
			continue
		}
		pc += uint64(vm.PushImmediateLength(op))
	}
	return res
}

// isJumpDest reports whether the given target is the offset of a JUMPDEST
// instruction.
func (a *codeAnalysis) isJumpDest(target uint64) bool {
	return target < a.codeSize && a.jumpDests.isSet(target)
}
