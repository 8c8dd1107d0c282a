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
	"fmt"
	"slices"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
	"github.com/kiln-vm/kiln/go/state"
)

// status is enumeration of the execution state of an interpreter run.
type status byte

const (
	statusRunning  status = iota // < all fine, ops are processed
	statusStopped                // < execution stopped with a STOP or by reaching the end of the code
	statusReturned               // < execution stopped with a RETURN
	statusFailed                 // < execution stopped with an error
)

func (s status) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusStopped:
		return "stopped"
	case statusReturned:
		return "returned"
	case statusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", byte(s))
}

// context is the execution environment of a single run. It holds the
// inputs and all the internal state of the run. A new context is created
// for each run.
type context struct {
	// Inputs
	code     []byte
	input    []byte
	storage  kiln.Storage
	analysis *codeAnalysis

	// Execution state
	pc     uint64
	stack  *stack
	memory *Memory

	// Output
	returnData []byte

	// Step accounting
	steps     uint64
	stepLimit uint64
}

// interpreterConfig is the per-run subset of the VM configuration.
type interpreterConfig struct {
	runner              runner
	maxMemorySize       uint64
	stepLimit           uint64
	directStorageWrites bool
}

type runner interface {
	// run executes the code in the given context until it halts. Failures of
	// the executed program are reported as *kiln.ExecutionError. Other
	// errors are reserved for failures of the runner itself.
	run(*context) (status, error)
}

func run(
	config interpreterConfig,
	params kiln.Parameters,
	analysis *codeAnalysis,
) (kiln.Result, error) {
	if len(params.Code) == 0 {
		return kiln.Result{}, nil
	}

	storage := params.Storage
	if storage == nil {
		storage = state.NewInMemory()
	}
	var buffer *state.WriteBuffer
	if !config.directStorageWrites {
		buffer = state.NewWriteBuffer(storage)
		storage = buffer
	}

	ctxt := context{
		code:      params.Code,
		input:     params.Input,
		storage:   storage,
		analysis:  analysis,
		stack:     newStack(),
		memory:    NewMemory(config.maxMemorySize),
		stepLimit: config.stepLimit,
	}
	defer returnStack(ctxt.stack)

	if config.runner == nil {
		config.runner = vanillaRunner{}
	}
	status, err := config.runner.run(&ctxt)
	if err != nil {
		return kiln.Result{}, err
	}

	res, err := generateResult(status, &ctxt)
	if err != nil {
		return kiln.Result{}, err
	}
	if buffer != nil {
		buffer.Commit()
	}
	return res, nil
}

func generateResult(status status, ctxt *context) (kiln.Result, error) {
	switch status {
	case statusStopped:
		return kiln.Result{}, nil
	case statusReturned:
		return kiln.Result{Output: ctxt.returnData}, nil
	default:
		return kiln.Result{}, fmt.Errorf("unexpected error in interpreter, unknown status: %v", status)
	}
}

// vanillaRunner is the default runner that executes the code without any
// additional features.
type vanillaRunner struct{}

func (vanillaRunner) run(c *context) (status, error) {
	return steps(c, false)
}

// step executes the instruction at the current program counter.
func step(c *context) (status, error) {
	return steps(c, true)
}

// steps executes instructions until the run halts or, if oneStepOnly is
// set, after a single instruction. Any failure of the program is returned as
// a *kiln.ExecutionError locating the failing instruction, together with
// statusFailed.
func steps(c *context, oneStepOnly bool) (status, error) {
	status := statusRunning
	for status == statusRunning {
		if c.pc >= uint64(len(c.code)) {
			return statusStopped, nil
		}

		pc := c.pc
		op, err := vm.Decode(c.code[pc], pc)
		if err != nil {
			return failAt(c, pc, err)
		}

		if c.stepLimit > 0 && c.steps >= c.stepLimit {
			return failAt(c, pc, kiln.ErrStepLimitReached)
		}
		c.steps++

		// Check stack boundary for every instruction
		if err := checkStackLimits(c.stack.len(), op); err != nil {
			return failAt(c, pc, err)
		}

		c.pc++

		switch op {
		case vm.STOP:
			status = statusStopped
		case vm.ADD:
			opAdd(c)
		case vm.MUL:
			opMul(c)
		case vm.SUB:
			opSub(c)
		case vm.DIV:
			opDiv(c)
		case vm.SDIV:
			opSDiv(c)
		case vm.MOD:
			opMod(c)
		case vm.SMOD:
			opSMod(c)
		case vm.ADDMOD:
			opAddMod(c)
		case vm.MULMOD:
			opMulMod(c)
		case vm.EXP:
			opExp(c)
		case vm.SIGNEXTEND:
			opSignExtend(c)
		case vm.LT:
			opLt(c)
		case vm.GT:
			opGt(c)
		case vm.SLT:
			opSlt(c)
		case vm.SGT:
			opSgt(c)
		case vm.EQ:
			opEq(c)
		case vm.ISZERO:
			opIszero(c)
		case vm.AND:
			opAnd(c)
		case vm.OR:
			opOr(c)
		case vm.XOR:
			opXor(c)
		case vm.NOT:
			opNot(c)
		case vm.BYTE:
			opByte(c)
		case vm.SHL:
			opShl(c)
		case vm.SHR:
			opShr(c)
		case vm.SAR:
			opSar(c)
		case vm.CALLDATALOAD:
			opCallDataload(c)
		case vm.CALLDATASIZE:
			opCallDatasize(c)
		case vm.CALLDATACOPY:
			err = genericDataCopy(c, c.input)
		case vm.CODESIZE:
			opCodeSize(c)
		case vm.CODECOPY:
			err = genericDataCopy(c, c.code)
		case vm.POP:
			opPop(c)
		case vm.MLOAD:
			err = opMload(c)
		case vm.MSTORE:
			err = opMstore(c)
		case vm.MSTORE8:
			err = opMstore8(c)
		case vm.SLOAD:
			opSload(c)
		case vm.SSTORE:
			opSstore(c)
		case vm.JUMP:
			err = opJump(c)
		case vm.JUMPI:
			err = opJumpi(c)
		case vm.PC:
			opPc(c)
		case vm.MSIZE:
			opMsize(c)
		case vm.JUMPDEST:
			// nothing
		case vm.PUSH1:
			err = opPush1(c)
		case vm.PUSH2, vm.PUSH3, vm.PUSH4, vm.PUSH5, vm.PUSH6, vm.PUSH7, vm.PUSH8,
			vm.PUSH9, vm.PUSH10, vm.PUSH11, vm.PUSH12, vm.PUSH13, vm.PUSH14, vm.PUSH15,
			vm.PUSH16, vm.PUSH17, vm.PUSH18, vm.PUSH19, vm.PUSH20, vm.PUSH21, vm.PUSH22,
			vm.PUSH23, vm.PUSH24, vm.PUSH25, vm.PUSH26, vm.PUSH27, vm.PUSH28, vm.PUSH29,
			vm.PUSH30, vm.PUSH31, vm.PUSH32:
			err = opPush(c, vm.PushImmediateLength(op))
		case vm.DUP1, vm.DUP2, vm.DUP3, vm.DUP4, vm.DUP5, vm.DUP6, vm.DUP7, vm.DUP8,
			vm.DUP9, vm.DUP10, vm.DUP11, vm.DUP12, vm.DUP13, vm.DUP14, vm.DUP15, vm.DUP16:
			opDup(c, vm.DupPosition(op))
		case vm.SWAP1, vm.SWAP2, vm.SWAP3, vm.SWAP4, vm.SWAP5, vm.SWAP6, vm.SWAP7, vm.SWAP8,
			vm.SWAP9, vm.SWAP10, vm.SWAP11, vm.SWAP12, vm.SWAP13, vm.SWAP14, vm.SWAP15, vm.SWAP16:
			opSwap(c, vm.SwapPosition(op))
		case vm.RETURN:
			err = opReturn(c)
			status = statusReturned
		default:
			err = &kiln.InvalidInstructionError{OpCode: byte(op), Offset: pc}
		}

		if err != nil {
			return failAt(c, pc, err)
		}

		if oneStepOnly {
			return status, nil
		}
	}
	return status, nil
}

// failAt wraps err into an execution error locating the instruction at pc.
func failAt(c *context, pc uint64, err error) (status, error) {
	return statusFailed, &kiln.ExecutionError{Err: err, Pc: pc, OpCode: c.code[pc]}
}

// returnedOutput copies the given memory range into a fresh, non-nil slice.
func returnedOutput(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	return slices.Clone(data)
}
