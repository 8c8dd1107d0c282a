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
	"strings"
	"testing"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
	"github.com/kiln-vm/kiln/go/state"
)

func TestBvm_IsRegistered(t *testing.T) {
	RegisterExperimentalInterpreterConfigurations()
	RegisterExperimentalInterpreterConfigurations()
	for _, name := range []string{"bvm", "BVM", "bvm-logging", "bvm-stats", "bvm-no-cache", "bvm-direct-storage"} {
		interpreter, err := kiln.NewInterpreter(name)
		if err != nil {
			t.Fatalf("failed to create interpreter %s: %v", name, err)
		}
		if _, ok := interpreter.(kiln.ProfilingInterpreter); !ok {
			t.Errorf("interpreter %s does not support profiling", name)
		}
	}
}

func TestBvm_FactoryAcceptsConfig(t *testing.T) {
	RegisterExperimentalInterpreterConfigurations()
	interpreter, err := kiln.NewInterpreter("bvm-no-cache", Config{StepLimit: 7})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	config := interpreter.(*bvm).config
	if want, got := uint64(7), config.StepLimit; want != got {
		t.Errorf("unexpected step limit, wanted %d, got %d", want, got)
	}
	if want, got := -1, config.AnalysisCacheSize; want != got {
		t.Errorf("unexpected cache size, wanted %d, got %d", want, got)
	}

	if _, err := kiln.NewInterpreter("bvm", "not a config"); err == nil {
		t.Errorf("expected invalid configuration to be rejected")
	}
}

func TestBvm_RunUsesCodeHashForCaching(t *testing.T) {
	instance, err := NewVm(Config{})
	if err != nil {
		t.Fatalf("failed to create VM: %v", err)
	}
	code := []byte{byte(vm.PUSH1), 3, byte(vm.JUMP), byte(vm.JUMPDEST)}
	hash := kiln.Keccak256(code)
	for i := 0; i < 2; i++ {
		if _, err := instance.Run(kiln.Parameters{Code: code, CodeHash: &hash}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if want, got := 1, instance.analyzer.cache.Len(); want != got {
		t.Errorf("unexpected cache size, wanted %d, got %d", want, got)
	}
}

func TestBvm_TraceConfigLogsSteps(t *testing.T) {
	var buffer bytes.Buffer
	instance, err := NewVm(Config{Trace: &buffer})
	if err != nil {
		t.Fatalf("failed to create VM: %v", err)
	}
	if _, err := instance.Run(kiln.Parameters{Code: []byte{byte(vm.STOP)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := "0: STOP, 0, -empty-\n", buffer.String(); want != got {
		t.Errorf("unexpected trace, wanted %q, got %q", want, got)
	}
}

func TestBvm_ProfileIsCollectedAndReset(t *testing.T) {
	instance, err := NewVm(Config{CollectStatistics: true})
	if err != nil {
		t.Fatalf("failed to create VM: %v", err)
	}
	if _, err := instance.Run(kiln.Parameters{Code: []byte{byte(vm.STOP)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(instance.DumpProfile(), "Steps: 1") {
		t.Errorf("unexpected profile:\n%s", instance.DumpProfile())
	}
	instance.ResetProfile()
	if !strings.Contains(instance.DumpProfile(), "Steps: 0") {
		t.Errorf("unexpected profile after reset:\n%s", instance.DumpProfile())
	}
}

func TestBvm_ProfileIsEmptyWithoutStatistics(t *testing.T) {
	instance, err := NewVm(Config{})
	if err != nil {
		t.Fatalf("failed to create VM: %v", err)
	}
	instance.ResetProfile()
	if want, got := "", instance.DumpProfile(); want != got {
		t.Errorf("unexpected profile %q", got)
	}
}

func TestExecute_ReturnsOutputAndUpdatesStorage(t *testing.T) {
	storage := state.NewInMemory()
	code := append([]byte{
		byte(vm.PUSH1), 9, byte(vm.PUSH1), 2, byte(vm.SSTORE),
		byte(vm.PUSH1), 2, byte(vm.SLOAD),
	}, returnTop...)
	output, err := Execute(code, nil, storage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := byte(9), output[31]; want != got {
		t.Errorf("unexpected output, wanted %d, got %d", want, got)
	}
	if want, got := kiln.NewWord(9), storage.GetStorage(kiln.Key(kiln.NewWord(2))); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
}

func TestExecute_StopYieldsNoOutput(t *testing.T) {
	output, err := Execute([]byte{byte(vm.STOP)}, nil, state.NewInMemory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != nil {
		t.Errorf("unexpected output %x", output)
	}
}

func TestExecute_FailuresLeaveStorageUntouched(t *testing.T) {
	storage := state.NewInMemory()
	code := []byte{byte(vm.PUSH1), 9, byte(vm.PUSH1), 2, byte(vm.SSTORE), 0xef}
	_, err := Execute(code, nil, storage)
	var invalid *kiln.InvalidInstructionError
	if !errors.As(err, &invalid) {
		t.Errorf("expected invalid instruction error, got %v", err)
	}
	if want, got := 0, storage.Len(); want != got {
		t.Errorf("unexpected number of storage slots, wanted %d, got %d", want, got)
	}
}
