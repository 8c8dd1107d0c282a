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

// defaultMaxMemorySize is the memory growth cap used if no other limit is
// configured.
const defaultMaxMemorySize = 32 << 20

// Memory is the byte-addressable scratch memory of a single run. It grows in
// 32-byte words on demand, newly exposed bytes are zero, and it never
// shrinks. Growth beyond the configured limit fails with
// kiln.ErrMemoryOutOfBounds.
type Memory struct {
	store []byte
	limit uint64
}

func NewMemory(limit uint64) *Memory {
	if limit == 0 {
		limit = defaultMaxMemorySize
	}
	return &Memory{limit: limit}
}

func (m *Memory) length() uint64 {
	return uint64(len(m.store))
}

// expand makes sure the range [offset, offset+size) is backed by memory. A
// zero size never expands the memory.
func (m *Memory) expand(offset, size uint64) error {
	if size == 0 {
		return nil
	}
	needed := offset + size
	if needed < offset || needed > m.limit {
		return kiln.ErrMemoryOutOfBounds
	}
	if m.length() >= needed {
		return nil
	}
	words := needed / 32
	if needed%32 != 0 {
		words++
	}
	m.store = append(m.store, make([]byte, words*32-m.length())...)
	return nil
}

// getSlice returns a view of the given memory range, expanding the memory
// if needed. The view is only valid until the next expansion.
func (m *Memory) getSlice(offset, size uint64) ([]byte, error) {
	if err := m.expand(offset, size); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	return m.store[offset : offset+size], nil
}

func (m *Memory) set(offset uint64, data []byte) error {
	dest, err := m.getSlice(offset, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(dest, data)
	return nil
}

func (m *Memory) setByte(offset uint64, value byte) error {
	if err := m.expand(offset, 1); err != nil {
		return err
	}
	m.store[offset] = value
	return nil
}

// setWord writes the big-endian encoding of value at the given offset.
func (m *Memory) setWord(offset uint64, value *uint256.Int) error {
	dest, err := m.getSlice(offset, 32)
	if err != nil {
		return err
	}
	value.WriteToSlice(dest)
	return nil
}

// readWord reads the 32 bytes at the given offset into target.
func (m *Memory) readWord(offset uint64, target *uint256.Int) error {
	data, err := m.getSlice(offset, 32)
	if err != nil {
		return err
	}
	target.SetBytes32(data)
	return nil
}

// copyPadded copies data[dataOffset:] into the memory range
// [offset, offset+size), filling the part beyond the end of data with zeros.
func (m *Memory) copyPadded(offset, size uint64, data []byte, dataOffset uint64) error {
	dest, err := m.getSlice(offset, size)
	if err != nil {
		return err
	}
	n := 0
	if dataOffset < uint64(len(data)) {
		n = copy(dest, data[dataOffset:])
	}
	clear(dest[n:])
	return nil
}
