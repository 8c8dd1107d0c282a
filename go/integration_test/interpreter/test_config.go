// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/kiln-vm/kiln/go/interpreter/bvm"
	"github.com/kiln-vm/kiln/go/kiln"
)

// referenceVariant is the interpreter other variants are compared to in
// differential tests.
const referenceVariant = "geth"

func init() {
	// Experimental configurations should be covered by integration tests
	// as they might be used by down-stream tools and for debugging.
	bvm.RegisterExperimentalInterpreterConfigurations()
}

// getAllInterpreterVariantsForTests returns all registered interpreter variants
// that should be covered in integration tests. The geth reference interpreter
// is excluded since it is not held to the limits of the byte-code VM; it is
// covered by the differential tests instead.
func getAllInterpreterVariantsForTests() []string {
	return slices.DeleteFunc(
		kiln.RegisteredInterpreterNames(),
		func(s string) bool { return s == referenceVariant },
	)
}

// newInterpreter creates an instance of the given variant. Tracing variants
// write to a discarding sink to keep test output readable.
func newInterpreter(t testing.TB, variant string) kiln.Interpreter {
	t.Helper()
	var config []any
	if strings.Contains(variant, "logging") {
		config = append(config, bvm.Config{Trace: io.Discard})
	}
	interpreter, err := kiln.NewInterpreter(variant, config...)
	if err != nil {
		t.Fatalf("failed to load %s interpreter: %v", variant, err)
	}
	return interpreter
}

// run executes the given code with the given input on a fresh storage.
func run(interpreter kiln.Interpreter, code []byte, input []byte) (kiln.Result, error) {
	hash := kiln.Keccak256(code)
	return interpreter.Run(kiln.Parameters{
		Code:     code,
		Input:    input,
		CodeHash: &hash,
	})
}
