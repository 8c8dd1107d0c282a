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
	"github.com/holiman/uint256"
	"github.com/kiln-vm/kiln/go/kiln"
)

// Binary operations take their first operand from the top of the stack and
// their second operand from the element below it.

func opAdd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Add(a, b)
}

func opSub(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Sub(a, b)
}

func opMul(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mul(a, b)
}

// opDiv, opMod and their signed counterparts yield zero for a zero divisor.
func opDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Div(a, b)
}

func opSDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SDiv(a, b)
}

func opMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mod(a, b)
}

func opSMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SMod(a, b)
}

func opAddMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.AddMod(a, b, n)
}

func opMulMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.MulMod(a, b, n)
}

func opExp(c *context) {
	base, exponent := c.stack.pop(), c.stack.peek()
	exponent.Exp(base, exponent)
}

func opSignExtend(c *context) {
	back, num := c.stack.pop(), c.stack.peek()
	num.ExtendSign(num, back)
}

func opLt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Lt(b))
}

func opGt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Gt(b))
}

func opSlt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Slt(b))
}

func opSgt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Sgt(b))
}

func opEq(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	setBool(b, a.Eq(b))
}

func opIszero(c *context) {
	top := c.stack.peek()
	setBool(top, top.IsZero())
}

func setBool(trg *uint256.Int, value bool) {
	if value {
		trg.SetOne()
	} else {
		trg.Clear()
	}
}

func opAnd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.And(a, b)
}

func opOr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Or(a, b)
}

func opXor(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Xor(a, b)
}

func opNot(c *context) {
	a := c.stack.peek()
	a.Not(a)
}

func opByte(c *context) {
	th, val := c.stack.pop(), c.stack.peek()
	val.Byte(th)
}

func opShl(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Lsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opShr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Rsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

// opSar fills all vacated bits with the sign bit of the shifted value.
func opSar(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.SRsh(b, uint(a.Uint64()))
		return
	}
	if b.Sign() >= 0 {
		b.Clear()
	} else {
		b.SetAllOne()
	}
}

func opCallDataload(c *context) {
	top := c.stack.peek()
	if !top.IsUint64() || top.Uint64() >= uint64(len(c.input)) {
		top.Clear()
		return
	}
	var value [32]byte
	copy(value[:], c.input[top.Uint64():])
	top.SetBytes32(value[:])
}

func opCallDatasize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.input)))
}

func opCodeSize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.code)))
}

// genericDataCopy implements CALLDATACOPY and CODECOPY. Source bytes beyond
// the end of data read as zero.
func genericDataCopy(c *context, data []byte) error {
	memOffset, dataOffset, length := c.stack.pop(), c.stack.pop(), c.stack.pop()
	if length.IsZero() {
		return nil
	}
	if !memOffset.IsUint64() || !length.IsUint64() {
		return kiln.ErrMemoryOutOfBounds
	}
	offset, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		offset = uint64(len(data))
	}
	return c.memory.copyPadded(memOffset.Uint64(), length.Uint64(), data, offset)
}

func opPop(c *context) {
	c.stack.pop()
}

func opMload(c *context) error {
	top := c.stack.peek()
	offset, overflow := top.Uint64WithOverflow()
	if overflow {
		return kiln.ErrMemoryOutOfBounds
	}
	return c.memory.readWord(offset, top)
}

func opMstore(c *context) error {
	addr := c.stack.pop()
	value := c.stack.pop()
	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return kiln.ErrMemoryOutOfBounds
	}
	return c.memory.setWord(offset, value)
}

func opMstore8(c *context) error {
	addr := c.stack.pop()
	value := c.stack.pop()
	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return kiln.ErrMemoryOutOfBounds
	}
	return c.memory.setByte(offset, byte(value.Uint64()))
}

func opMsize(c *context) {
	c.stack.pushUndefined().SetUint64(c.memory.length())
}

func opSload(c *context) {
	top := c.stack.peek()
	value := c.storage.GetStorage(kiln.Key(top.Bytes32()))
	top.SetBytes32(value[:])
}

func opSstore(c *context) {
	key := c.stack.pop()
	value := c.stack.pop()
	c.storage.SetStorage(kiln.Key(key.Bytes32()), kiln.WordFromUint256(value))
}

// jumpTarget validates the given destination against the code analysis.
func jumpTarget(c *context, destination *uint256.Int) (uint64, error) {
	if !destination.IsUint64() || !c.analysis.isJumpDest(destination.Uint64()) {
		return 0, kiln.ErrInvalidJump
	}
	return destination.Uint64(), nil
}

func opJump(c *context) error {
	target, err := jumpTarget(c, c.stack.pop())
	if err != nil {
		return err
	}
	c.pc = target
	return nil
}

func opJumpi(c *context) error {
	destination := c.stack.pop()
	condition := c.stack.pop()
	if condition.IsZero() {
		return nil
	}
	target, err := jumpTarget(c, destination)
	if err != nil {
		return err
	}
	c.pc = target
	return nil
}

// opPc pushes the offset of the PC instruction itself. The program counter
// has already been advanced past it.
func opPc(c *context) {
	c.stack.pushUndefined().SetUint64(c.pc - 1)
}

func opPush1(c *context) error {
	if c.pc >= uint64(len(c.code)) {
		return kiln.ErrCodeOutOfBounds
	}
	c.stack.pushUndefined().SetUint64(uint64(c.code[c.pc]))
	c.pc++
	return nil
}

// opPush pushes the n bytes following the instruction as a big-endian word.
func opPush(c *context, n int) error {
	end := c.pc + uint64(n)
	if end > uint64(len(c.code)) {
		return kiln.ErrCodeOutOfBounds
	}
	c.stack.pushUndefined().SetBytes(c.code[c.pc:end])
	c.pc = end
	return nil
}

func opDup(c *context, pos int) {
	c.stack.dup(pos - 1)
}

func opSwap(c *context, pos int) {
	c.stack.swap(pos)
}

// opReturn halts the run with the memory range given by offset and length
// as output. A zero length never touches memory.
func opReturn(c *context) error {
	offset := c.stack.pop()
	size := c.stack.pop()
	if size.IsZero() {
		c.returnData = []byte{}
		return nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return kiln.ErrMemoryOutOfBounds
	}
	data, err := c.memory.getSlice(offset.Uint64(), size.Uint64())
	if err != nil {
		return err
	}
	c.returnData = returnedOutput(data)
	return nil
}
