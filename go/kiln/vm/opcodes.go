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

	"github.com/kiln-vm/kiln/go/kiln"
)

// OpCode is the single byte identifying an instruction.
type OpCode byte

const (
	STOP       OpCode = 0x00
	ADD        OpCode = 0x01
	MUL        OpCode = 0x02
	SUB        OpCode = 0x03
	DIV        OpCode = 0x04
	SDIV       OpCode = 0x05
	MOD        OpCode = 0x06
	SMOD       OpCode = 0x07
	ADDMOD     OpCode = 0x08
	MULMOD     OpCode = 0x09
	EXP        OpCode = 0x0A
	SIGNEXTEND OpCode = 0x0B

	LT     OpCode = 0x10
	GT     OpCode = 0x11
	SLT    OpCode = 0x12
	SGT    OpCode = 0x13
	EQ     OpCode = 0x14
	ISZERO OpCode = 0x15
	AND    OpCode = 0x16
	OR     OpCode = 0x17
	XOR    OpCode = 0x18
	NOT    OpCode = 0x19
	BYTE   OpCode = 0x1A
	SHL    OpCode = 0x1B
	SHR    OpCode = 0x1C
	SAR    OpCode = 0x1D

	CALLDATALOAD OpCode = 0x35
	CALLDATASIZE OpCode = 0x36
	CALLDATACOPY OpCode = 0x37
	CODESIZE     OpCode = 0x38
	CODECOPY     OpCode = 0x39

	POP      OpCode = 0x50
	MLOAD    OpCode = 0x51
	MSTORE   OpCode = 0x52
	MSTORE8  OpCode = 0x53
	SLOAD    OpCode = 0x54
	SSTORE   OpCode = 0x55
	JUMP     OpCode = 0x56
	JUMPI    OpCode = 0x57
	PC       OpCode = 0x58
	MSIZE    OpCode = 0x59
	JUMPDEST OpCode = 0x5B

	PUSH1  OpCode = 0x60
	PUSH2  OpCode = 0x61
	PUSH3  OpCode = 0x62
	PUSH4  OpCode = 0x63
	PUSH5  OpCode = 0x64
	PUSH6  OpCode = 0x65
	PUSH7  OpCode = 0x66
	PUSH8  OpCode = 0x67
	PUSH9  OpCode = 0x68
	PUSH10 OpCode = 0x69
	PUSH11 OpCode = 0x6A
	PUSH12 OpCode = 0x6B
	PUSH13 OpCode = 0x6C
	PUSH14 OpCode = 0x6D
	PUSH15 OpCode = 0x6E
	PUSH16 OpCode = 0x6F
	PUSH17 OpCode = 0x70
	PUSH18 OpCode = 0x71
	PUSH19 OpCode = 0x72
	PUSH20 OpCode = 0x73
	PUSH21 OpCode = 0x74
	PUSH22 OpCode = 0x75
	PUSH23 OpCode = 0x76
	PUSH24 OpCode = 0x77
	PUSH25 OpCode = 0x78
	PUSH26 OpCode = 0x79
	PUSH27 OpCode = 0x7A
	PUSH28 OpCode = 0x7B
	PUSH29 OpCode = 0x7C
	PUSH30 OpCode = 0x7D
	PUSH31 OpCode = 0x7E
	PUSH32 OpCode = 0x7F

	DUP1  OpCode = 0x80
	DUP2  OpCode = 0x81
	DUP3  OpCode = 0x82
	DUP4  OpCode = 0x83
	DUP5  OpCode = 0x84
	DUP6  OpCode = 0x85
	DUP7  OpCode = 0x86
	DUP8  OpCode = 0x87
	DUP9  OpCode = 0x88
	DUP10 OpCode = 0x89
	DUP11 OpCode = 0x8A
	DUP12 OpCode = 0x8B
	DUP13 OpCode = 0x8C
	DUP14 OpCode = 0x8D
	DUP15 OpCode = 0x8E
	DUP16 OpCode = 0x8F

	SWAP1  OpCode = 0x90
	SWAP2  OpCode = 0x91
	SWAP3  OpCode = 0x92
	SWAP4  OpCode = 0x93
	SWAP5  OpCode = 0x94
	SWAP6  OpCode = 0x95
	SWAP7  OpCode = 0x96
	SWAP8  OpCode = 0x97
	SWAP9  OpCode = 0x98
	SWAP10 OpCode = 0x99
	SWAP11 OpCode = 0x9A
	SWAP12 OpCode = 0x9B
	SWAP13 OpCode = 0x9C
	SWAP14 OpCode = 0x9D
	SWAP15 OpCode = 0x9E
	SWAP16 OpCode = 0x9F

	RETURN OpCode = 0xF3
)

// Byte values delimiting the contiguous instruction families. They are used
// for explicit numeric range checks when building the opcode table.
const (
	firstPush = 0x60
	lastPush  = 0x7F
	firstDup  = 0x80
	lastDup   = 0x8F
	firstSwap = 0x90
	lastSwap  = 0x9F
)

// opInfo summarizes the static properties of a single byte value.
type opInfo struct {
	name         string
	valid        bool
	pushLength   int // number of immediate bytes, 0 for non-push instructions
	dupPosition  int // 1-based stack position copied by DUPn, 0 otherwise
	swapPosition int // 1-based stack position exchanged by SWAPn, 0 otherwise
}

// namedOpCodes lists all instructions outside of the PUSH, DUP, and SWAP
// families.
var namedOpCodes = map[OpCode]string{
	STOP:         "STOP",
	ADD:          "ADD",
	MUL:          "MUL",
	SUB:          "SUB",
	DIV:          "DIV",
	SDIV:         "SDIV",
	MOD:          "MOD",
	SMOD:         "SMOD",
	ADDMOD:       "ADDMOD",
	MULMOD:       "MULMOD",
	EXP:          "EXP",
	SIGNEXTEND:   "SIGNEXTEND",
	LT:           "LT",
	GT:           "GT",
	SLT:          "SLT",
	SGT:          "SGT",
	EQ:           "EQ",
	ISZERO:       "ISZERO",
	AND:          "AND",
	OR:           "OR",
	XOR:          "XOR",
	NOT:          "NOT",
	BYTE:         "BYTE",
	SHL:          "SHL",
	SHR:          "SHR",
	SAR:          "SAR",
	CALLDATALOAD: "CALLDATALOAD",
	CALLDATASIZE: "CALLDATASIZE",
	CALLDATACOPY: "CALLDATACOPY",
	CODESIZE:     "CODESIZE",
	CODECOPY:     "CODECOPY",
	POP:          "POP",
	MLOAD:        "MLOAD",
	MSTORE:       "MSTORE",
	MSTORE8:      "MSTORE8",
	SLOAD:        "SLOAD",
	SSTORE:       "SSTORE",
	JUMP:         "JUMP",
	JUMPI:        "JUMPI",
	PC:           "PC",
	MSIZE:        "MSIZE",
	JUMPDEST:     "JUMPDEST",
	RETURN:       "RETURN",
}

// opCodeTable is the byte-keyed lookup table of all instruction properties.
// It is computed once at package initialization.
var opCodeTable = newOpCodeTable()

func newOpCodeTable() [256]opInfo {
	var table [256]opInfo
	for i := 0; i < 256; i++ {
		info := &table[i]
		switch {
		case firstPush <= i && i <= lastPush:
			info.pushLength = i - firstPush + 1
			info.name = fmt.Sprintf("PUSH%d", info.pushLength)
		case firstDup <= i && i <= lastDup:
			info.dupPosition = i - firstDup + 1
			info.name = fmt.Sprintf("DUP%d", info.dupPosition)
		case firstSwap <= i && i <= lastSwap:
			info.swapPosition = i - firstSwap + 1
			info.name = fmt.Sprintf("SWAP%d", info.swapPosition)
		default:
			name, found := namedOpCodes[OpCode(i)]
			if !found {
				continue
			}
			info.name = name
		}
		info.valid = true
	}
	return table
}

// Decode maps the given byte, found at the given code offset, to an
// instruction. Bytes not mapped to any instruction yield an
// *kiln.InvalidInstructionError.
func Decode(b byte, offset uint64) (OpCode, error) {
	if !opCodeTable[b].valid {
		return 0, &kiln.InvalidInstructionError{OpCode: b, Offset: offset}
	}
	return OpCode(b), nil
}

// IsValid determines whether the given OpCode is a member of the instruction set.
func IsValid(op OpCode) bool {
	return opCodeTable[op].valid
}

// ValidOpCodes returns all members of the instruction set in byte order.
func ValidOpCodes() []OpCode {
	res := make([]OpCode, 0, 256)
	for i := 0; i < 256; i++ {
		if opCodeTable[i].valid {
			res = append(res, OpCode(i))
		}
	}
	return res
}

// IsPush is true for the contiguous PUSH1..PUSH32 range.
func IsPush(op OpCode) bool {
	return opCodeTable[op].pushLength > 0
}

// PushImmediateLength returns the number of immediate bytes following a PUSHn
// instruction in the code, and 0 for all other instructions.
func PushImmediateLength(op OpCode) int {
	return opCodeTable[op].pushLength
}

// DupPosition returns n for DUPn, identifying the 1-based stack position that
// is copied to the top, and 0 for all other instructions.
func DupPosition(op OpCode) int {
	return opCodeTable[op].dupPosition
}

// SwapPosition returns n for SWAPn, identifying the 1-based stack position
// below the top that is exchanged with the top, and 0 for all other
// instructions.
func SwapPosition(op OpCode) int {
	return opCodeTable[op].swapPosition
}

func (op OpCode) String() string {
	if info := opCodeTable[op]; info.valid {
		return info.name
	}
	return fmt.Sprintf("op(0x%02x)", byte(op))
}
