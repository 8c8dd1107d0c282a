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
	"fmt"

	"github.com/kiln-vm/kiln/go/kiln/vm"
)

// assembler builds code from instructions, constants, and named jump
// targets. Jump targets are referenced with PUSH2 instructions, so codes
// are limited to 64KiB.
type assembler struct {
	code   []byte
	labels map[string]int
	fixups map[int]string // position of a PUSH2 immediate -> label
	err    error
}

func newAssembler() *assembler {
	return &assembler{
		labels: map[string]int{},
		fixups: map[int]string{},
	}
}

func (a *assembler) op(ops ...vm.OpCode) *assembler {
	for _, op := range ops {
		a.code = append(a.code, byte(op))
	}
	return a
}

// push adds the shortest PUSH instruction producing the given value.
func (a *assembler) push(value uint64) *assembler {
	data := []byte{}
	for v := value; v > 0; v >>= 8 {
		data = append([]byte{byte(v)}, data...)
	}
	if len(data) == 0 {
		data = []byte{0}
	}
	a.code = append(a.code, byte(vm.PUSH1)+byte(len(data)-1))
	a.code = append(a.code, data...)
	return a
}

// pushLabel adds a PUSH2 instruction producing the offset of the given
// label, which may be defined later.
func (a *assembler) pushLabel(name string) *assembler {
	a.code = append(a.code, byte(vm.PUSH2))
	a.fixups[len(a.code)] = name
	a.code = append(a.code, 0, 0)
	return a
}

// label defines a jump target at the current position by adding a
// JUMPDEST instruction.
func (a *assembler) label(name string) *assembler {
	if _, found := a.labels[name]; found && a.err == nil {
		a.err = fmt.Errorf("label %q defined twice", name)
	}
	a.labels[name] = len(a.code)
	return a.op(vm.JUMPDEST)
}

// assemble resolves all label references and returns the resulting code.
func (a *assembler) assemble() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	if len(a.code) > 0xffff {
		return nil, fmt.Errorf("code too long: %d bytes", len(a.code))
	}
	code := make([]byte, len(a.code))
	copy(code, a.code)
	for pos, name := range a.fixups {
		target, found := a.labels[name]
		if !found {
			return nil, fmt.Errorf("undefined label %q", name)
		}
		code[pos] = byte(target >> 8)
		code[pos+1] = byte(target)
	}
	return code, nil
}

func mustAssemble(a *assembler) []byte {
	code, err := a.assemble()
	if err != nil {
		panic(fmt.Sprintf("invalid example code: %v", err))
	}
	return code
}
