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
	"bytes"
	"testing"

	"github.com/kiln-vm/kiln/go/kiln/vm"
)

func TestAssembler_PushUsesShortestEncoding(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{byte(vm.PUSH1), 0}},
		{0xff, []byte{byte(vm.PUSH1), 0xff}},
		{0x100, []byte{byte(vm.PUSH2), 0x01, 0x00}},
		{0x7fffffff, []byte{byte(vm.PUSH4), 0x7f, 0xff, 0xff, 0xff}},
		{1<<64 - 1, append([]byte{byte(vm.PUSH8)}, bytes.Repeat([]byte{0xff}, 8)...)},
	}
	for _, test := range tests {
		code, err := newAssembler().push(test.value).assemble()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(test.want, code) {
			t.Errorf("push(%d): wanted %x, got %x", test.value, test.want, code)
		}
	}
}

func TestAssembler_ResolvesForwardAndBackwardLabels(t *testing.T) {
	code, err := newAssembler().
		label("start").
		pushLabel("end").
		op(vm.JUMP).
		pushLabel("start").
		label("end").
		op(vm.STOP).
		assemble()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{
		byte(vm.JUMPDEST),
		byte(vm.PUSH2), 0x00, 0x08,
		byte(vm.JUMP),
		byte(vm.PUSH2), 0x00, 0x00,
		byte(vm.JUMPDEST),
		byte(vm.STOP),
	}
	if !bytes.Equal(want, code) {
		t.Errorf("unexpected code, wanted %x, got %x", want, code)
	}
}

func TestAssembler_ReportsLabelErrors(t *testing.T) {
	if _, err := newAssembler().pushLabel("missing").assemble(); err == nil {
		t.Errorf("expected error for undefined label")
	}
	if _, err := newAssembler().label("a").label("a").assemble(); err == nil {
		t.Errorf("expected error for duplicated label")
	}
}

func TestMustAssemble_PanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	mustAssemble(newAssembler().pushLabel("missing"))
}
