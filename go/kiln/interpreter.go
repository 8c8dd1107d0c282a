// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kiln

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package kiln

// Interpreter is a component capable of executing byte-code on a Storage.
// To obtain an Interpreter instance, client code should use NewInterpreter()
// provided by the registry file in this package.
type Interpreter interface {
	// Run executes the code provided by the parameters and returns the
	// processing result. A non-nil error reports that the program aborted;
	// it is an *ExecutionError wrapping the failure kind. In such a case the
	// result is undefined. Interpreters are required to be thread-safe, yet
	// runs sharing a Storage must not overlap.
	Run(Parameters) (Result, error)
}

// Parameters summarizes the list of input parameters required for executing code.
type Parameters struct {
	Code    Code
	Input   Data
	Storage Storage
	// CodeHash is optional. If set, it must be the Keccak256 hash of Code and
	// enables interpreters to reuse the analysis of previously seen code.
	CodeHash *Hash
}

// Result summarizes the result of a code execution.
type Result struct {
	// Output is nil if the program stopped without producing output (STOP,
	// running off the end of the code). A RETURN always yields a non-nil
	// slice, which is empty for a zero-length return.
	Output Data
}

// ProfilingInterpreter is an optional extension to the Interpreter interface
// above which may be implemented by interpreters collecting statistical data
// on their executions.
type ProfilingInterpreter interface {
	Interpreter

	// ResetProfile resets the operation statistic collected by the underlying
	// Interpreter implementation. It should not be called while running
	// operations on the Interpreter in parallel.
	ResetProfile()

	// DumpProfile returns a summary of the profiling data collected since the
	// last reset.
	DumpProfile() string
}
