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
	"bytes"
	"errors"
	"testing"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
)

func TestLogger_ExecutesCodeAndLogs(t *testing.T) {
	tests := map[string]struct {
		code []byte
		want string
	}{
		"empty": {},
		"stop": {
			code: []byte{byte(vm.STOP)},
			want: "0: STOP, 0, -empty-\n",
		},
		"multiple codes": {
			code: []byte{byte(vm.PUSH1), 0x1f, byte(vm.DUP1), byte(vm.STOP)},
			want: "0: PUSH1, 0, -empty-\n2: DUP1, 1, 0x1f\n3: STOP, 2, 0x1f\n",
		},
		"failing code": {
			code: []byte{byte(vm.PUSH1), 0x01, byte(vm.ADD)},
			want: "0: PUSH1, 0, -empty-\n2: ADD, 1, 0x1\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			buffer := bytes.NewBuffer([]byte{})
			config := interpreterConfig{
				runner: newLogger(buffer),
			}
			_, _ = run(config, kiln.Parameters{Code: test.code}, analyzeCode(test.code))
			if want, got := test.want, buffer.String(); want != got {
				t.Errorf("unexpected log: want %q, got %q", want, got)
			}
		})
	}
}

func TestLogger_WithoutWriterStillExecutes(t *testing.T) {
	code := []byte{byte(vm.PUSH1), 0x01, byte(vm.ADD)}
	config := interpreterConfig{runner: newLogger(nil)}
	_, err := run(config, kiln.Parameters{Code: code}, analyzeCode(code))
	if !errors.Is(err, kiln.ErrStackUnderflow) {
		t.Errorf("expected stack underflow, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("injected error")
}

func TestLogger_WriteErrorsAreReported(t *testing.T) {
	code := []byte{byte(vm.STOP)}
	config := interpreterConfig{runner: newLogger(failingWriter{})}
	_, err := run(config, kiln.Parameters{Code: code}, analyzeCode(code))
	if err == nil {
		t.Fatalf("expected an error")
	}
	var execErr *kiln.ExecutionError
	if errors.As(err, &execErr) {
		t.Errorf("write failures should not be reported as execution errors, got %v", err)
	}
}
