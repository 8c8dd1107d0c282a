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

import "fmt"

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// Kinds of execution failures. All of them abort the current invocation.
const (
	ErrStackUnderflow    = ConstError("stack underflow")
	ErrStackOverflow     = ConstError("stack overflow")
	ErrCodeOutOfBounds   = ConstError("code out of bounds")
	ErrMemoryOutOfBounds = ConstError("memory out of bounds")
	ErrInvalidJump       = ConstError("invalid jump destination")
	ErrStepLimitReached  = ConstError("step limit reached")
)

// InvalidInstructionError is produced when decoding a byte that is not
// mapped to any instruction.
type InvalidInstructionError struct {
	OpCode byte
	Offset uint64
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction 0x%02x at offset %d", e.OpCode, e.Offset)
}

// ExecutionError is the error returned by interpreters when a program
// aborts. It records where the failure happened and wraps the failure kind,
// which can be inspected using errors.Is and errors.As.
type ExecutionError struct {
	Err    error
	Pc     uint64
	OpCode byte
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at pc %d (op 0x%02x): %v", e.Pc, e.OpCode, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
