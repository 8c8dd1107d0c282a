// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package geth provides a reference interpreter executing programs using the
// interpreter of go-ethereum. It is intended for differential testing of the
// byte-code VM and supports programs using its instruction set only; other
// instructions are reported as invalid. Known differences:
//   - PUSH instructions with truncated immediate data are zero padded
//   - a zero-length RETURN is reported as no output
//   - memory is bounded by a gas budget instead of a fixed size
package geth

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/stateless"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/trie/utils"
	"github.com/holiman/uint256"
	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
	"github.com/kiln-vm/kiln/go/state"
)

func init() {
	err := kiln.RegisterInterpreterFactory("geth", func(config any) (kiln.Interpreter, error) {
		if config != nil {
			return nil, fmt.Errorf("geth interpreter does not support configuration, got %T", config)
		}
		return &gethVm{}, nil
	})
	if err != nil {
		panic(err)
	}
}

// referenceGas is the gas budget of every run. Memory expansion costs limit
// the memory usage to roughly 47 MiB.
const referenceGas = 1 << 32

// contractAddress is the account executing the code.
var contractAddress = common.Address{0x42}

type gethVm struct{}

// Run executes the code on geth's interpreter. Instructions geth supports
// but the byte-code VM does not, e.g. LOG0 or ADDRESS, fail the run with an
// invalid instruction error.
func (m *gethVm) Run(parameters kiln.Parameters) (result kiln.Result, err error) {
	if len(parameters.Code) == 0 {
		return kiln.Result{}, nil
	}

	storage := parameters.Storage
	if storage == nil {
		storage = state.NewInMemory()
	}
	buffer := state.NewWriteBuffer(storage)

	var last lastInstruction
	defer func() {
		// Instructions outside the supported set may reach parts of the
		// state adapter that are not implemented.
		if issue := recover(); issue != nil {
			buffer.Discard()
			result = kiln.Result{}
			if last.unsupported != nil {
				err = last.unsupported
			} else {
				err = fmt.Errorf("internal EVM error in geth at pc %d: %v", last.pc, issue)
			}
		}
	}()

	evm, contract := createGethInterpreterContext(parameters, buffer, &last)
	output, err := evm.Interpreter().Run(contract, parameters.Input, false)
	if last.unsupported != nil {
		buffer.Discard()
		return kiln.Result{}, last.unsupported
	}
	if err != nil {
		buffer.Discard()
		return kiln.Result{}, convertError(err, last)
	}
	buffer.Commit()

	return kiln.Result{Output: bytes.Clone(output)}, nil
}

// lastInstruction records the most recently started instruction, which is
// the failing one if the execution aborts, and the first started instruction
// not covered by the byte-code VM's instruction set.
type lastInstruction struct {
	pc          uint64
	op          byte
	unsupported *kiln.ExecutionError
}

func (l *lastInstruction) onOpcode(pc uint64, op byte, _, _ uint64, _ tracing.OpContext, _ []byte, _ int, _ error) {
	l.pc = pc
	l.op = op
	if l.unsupported == nil && !vm.IsValid(vm.OpCode(op)) {
		l.unsupported = &kiln.ExecutionError{
			Err:    &kiln.InvalidInstructionError{OpCode: op, Offset: pc},
			Pc:     pc,
			OpCode: op,
		}
	}
}

// convertError maps geth's execution errors to the error kinds of the
// byte-code VM.
func convertError(err error, last lastInstruction) error {
	var underflow *geth.ErrStackUnderflow
	var overflow *geth.ErrStackOverflow
	var invalid *geth.ErrInvalidOpCode

	var kind error
	switch {
	case errors.As(err, &underflow):
		kind = kiln.ErrStackUnderflow
	case errors.As(err, &overflow):
		kind = kiln.ErrStackOverflow
	case errors.As(err, &invalid):
		kind = &kiln.InvalidInstructionError{OpCode: last.op, Offset: last.pc}
	case errors.Is(err, geth.ErrInvalidJump):
		kind = kiln.ErrInvalidJump
	case errors.Is(err, geth.ErrOutOfGas),
		errors.Is(err, geth.ErrGasUintOverflow):
		kind = kiln.ErrMemoryOutOfBounds
	default:
		return fmt.Errorf("internal EVM error in geth: %v", err)
	}
	return &kiln.ExecutionError{Err: kind, Pc: last.pc, OpCode: last.op}
}

func createGethInterpreterContext(
	parameters kiln.Parameters,
	storage kiln.Storage,
	last *lastInstruction,
) (*geth.EVM, *geth.Contract) {
	chainConfig := *params.AllEthashProtocolChanges

	blockCtx := geth.BlockContext{
		BlockNumber: big.NewInt(1),
		Difficulty:  big.NewInt(1),
		GasLimit:    referenceGas,
		GetHash:     func(uint64) common.Hash { return common.Hash{} },
		BaseFee:     big.NewInt(0),
		BlobBaseFee: big.NewInt(0),
		Transfer:    transferFunc,
		CanTransfer: canTransferFunc,
	}
	txCtx := geth.TxContext{
		GasPrice:   big.NewInt(0),
		BlobFeeCap: big.NewInt(0),
	}
	config := geth.Config{
		Tracer: &tracing.Hooks{OnOpcode: last.onOpcode},
	}

	stateDb := &stateDbAdapter{storage: storage}
	evm := geth.NewEVM(blockCtx, txCtx, stateDb, &chainConfig, config)

	addr := geth.AccountRef(contractAddress)
	contract := geth.NewContract(addr, addr, uint256.NewInt(0), referenceGas)
	contract.Code = parameters.Code
	if parameters.CodeHash != nil {
		contract.CodeHash = common.Hash(*parameters.CodeHash)
	} else {
		contract.CodeHash = crypto.Keccak256Hash(parameters.Code)
	}
	contract.Input = parameters.Input

	return evm, contract
}

// --- Adapter ---

func transferFunc(geth.StateDB, common.Address, common.Address, *uint256.Int) {
	// ignored: programs can not transfer value
}

func canTransferFunc(stateDB geth.StateDB, callerAddress common.Address, value *uint256.Int) bool {
	return value.IsZero()
}

// stateDbAdapter adapts a kiln.Storage for its usage as the storage of the
// executing account in a geth.StateDB. All other accounts and all other
// account properties are empty.
type stateDbAdapter struct {
	storage kiln.Storage
	refund  uint64
}

func (s *stateDbAdapter) CreateAccount(common.Address) {}

func (s *stateDbAdapter) CreateContract(common.Address) {}

func (s *stateDbAdapter) SubBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason) {}

func (s *stateDbAdapter) AddBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason) {}

func (s *stateDbAdapter) GetBalance(common.Address) *uint256.Int {
	return uint256.NewInt(0)
}

func (s *stateDbAdapter) GetNonce(common.Address) uint64 {
	return 0
}

func (s *stateDbAdapter) SetNonce(common.Address, uint64) {}

func (s *stateDbAdapter) GetCodeHash(common.Address) common.Hash {
	return common.Hash{}
}

func (s *stateDbAdapter) GetCode(common.Address) []byte {
	return nil
}

func (s *stateDbAdapter) SetCode(common.Address, []byte) {}

func (s *stateDbAdapter) GetCodeSize(common.Address) int {
	return 0
}

func (s *stateDbAdapter) AddRefund(value uint64) {
	s.refund += value
}

func (s *stateDbAdapter) SubRefund(value uint64) {
	s.refund -= value
}

func (s *stateDbAdapter) GetRefund() uint64 {
	return s.refund
}

func (s *stateDbAdapter) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	return s.GetState(addr, key)
}

func (s *stateDbAdapter) GetState(addr common.Address, key common.Hash) common.Hash {
	if addr != contractAddress {
		return common.Hash{}
	}
	return common.Hash(s.storage.GetStorage(kiln.Key(key)))
}

func (s *stateDbAdapter) SetState(addr common.Address, key common.Hash, value common.Hash) {
	if addr == contractAddress {
		s.storage.SetStorage(kiln.Key(key), kiln.Word(value))
	}
}

func (s *stateDbAdapter) GetStorageRoot(common.Address) common.Hash {
	return common.Hash{}
}

func (s *stateDbAdapter) GetTransientState(common.Address, common.Hash) common.Hash {
	return common.Hash{}
}

func (s *stateDbAdapter) SetTransientState(common.Address, common.Hash, common.Hash) {}

func (s *stateDbAdapter) SelfDestruct(common.Address) {}

func (s *stateDbAdapter) HasSelfDestructed(common.Address) bool {
	return false
}

func (s *stateDbAdapter) Selfdestruct6780(common.Address) {}

func (s *stateDbAdapter) Exist(addr common.Address) bool {
	return addr == contractAddress
}

func (s *stateDbAdapter) Empty(addr common.Address) bool {
	return !s.Exist(addr)
}

func (s *stateDbAdapter) AddressInAccessList(common.Address) bool {
	return true
}

func (s *stateDbAdapter) SlotInAccessList(common.Address, common.Hash) (addressOk bool, slotOk bool) {
	return true, true
}

func (s *stateDbAdapter) AddAddressToAccessList(common.Address) {}

func (s *stateDbAdapter) AddSlotToAccessList(common.Address, common.Hash) {}

func (s *stateDbAdapter) Prepare(params.Rules, common.Address, common.Address, *common.Address, []common.Address, types.AccessList) {
	panic("not needed for running single programs")
}

func (s *stateDbAdapter) RevertToSnapshot(int) {
	panic("not needed for running single programs")
}

func (s *stateDbAdapter) Snapshot() int {
	return 0
}

func (s *stateDbAdapter) AddLog(*types.Log) {
	panic("not needed for running single programs")
}

func (s *stateDbAdapter) AddPreimage(common.Hash, []byte) {
	panic("not needed for running single programs")
}

func (s *stateDbAdapter) ForEachStorage(common.Address, func(common.Hash, common.Hash) bool) error {
	panic("not needed for running single programs")
}

func (s *stateDbAdapter) PointCache() *utils.PointCache {
	panic("not needed for running single programs")
}

func (s *stateDbAdapter) Witness() *stateless.Witness {
	return nil
}
