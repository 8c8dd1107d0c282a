// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package examples provides small programs with reference implementations
// of the function they compute. They are used for cross-checking
// interpreters and for benchmarking.
package examples

import (
	"fmt"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/state"
)

// Example is an executable program computing an (int)->int function. The
// argument is passed as a 32-byte big-endian word in the call data and the
// result is returned as a 32-byte big-endian word.
type Example struct {
	exampleSpec
	codeHash kiln.Hash
}

// exampleSpec specifies a program and the function it computes.
type exampleSpec struct {
	Name      string
	Code      []byte
	reference func(int) int
}

func (s exampleSpec) build() Example {
	return Example{
		exampleSpec: s,
		codeHash:    kiln.Keccak256(s.Code),
	}
}

type Result struct {
	Result int
	// Storage is the storage left behind by the run.
	Storage *state.InMemory
}

// RunOn runs this example on the given interpreter, using the given
// argument and a fresh, empty storage.
func (e *Example) RunOn(interpreter kiln.Interpreter, argument int) (Result, error) {
	storage := state.NewInMemory()
	params := kiln.Parameters{
		Code:     e.Code,
		CodeHash: &e.codeHash,
		Input:    encodeArgument(argument),
		Storage:  storage,
	}

	res, err := interpreter.Run(params)
	if err != nil {
		return Result{}, err
	}

	result, err := decodeOutput(res.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Result:  result,
		Storage: storage,
	}, nil
}

// RunReference runs the reference function of this example to produce the
// expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

// GetAllExamples returns all examples of this package.
func GetAllExamples() []Example {
	return []Example{
		GetArithmeticExample(),
		GetFibExample(),
		GetSquaresExample(),
		GetStaticOverheadExample(),
		GetJumpdestAnalysisExample(),
		GetStopAnalysisExample(),
		GetPush1AnalysisExample(),
		GetPush32AnalysisExample(),
	}
}

// GetExample returns the example with the given name.
func GetExample(name string) (Example, error) {
	for _, example := range GetAllExamples() {
		if example.Name == name {
			return example, nil
		}
	}
	return Example{}, fmt.Errorf("unknown example: %s", name)
}

func encodeArgument(arg int) []byte {
	data := make([]byte, 32)
	data[28] = byte(arg >> 24)
	data[29] = byte(arg >> 16)
	data[30] = byte(arg >> 8)
	data[31] = byte(arg)
	return data
}

func decodeOutput(output []byte) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return int(uint32(kiln.Word(output).ToUint256().Uint64())), nil
}
