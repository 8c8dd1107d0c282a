// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"github.com/kiln-vm/kiln/go/kiln"
)

// WriteBuffer collects storage writes on top of an underlying storage. Reads
// observe buffered writes. Nothing reaches the underlying storage before
// Commit is called.
type WriteBuffer struct {
	base    kiln.Storage
	pending map[kiln.Key]kiln.Word
	order   []kiln.Key
}

var _ kiln.Storage = (*WriteBuffer)(nil)

func NewWriteBuffer(base kiln.Storage) *WriteBuffer {
	return &WriteBuffer{
		base:    base,
		pending: map[kiln.Key]kiln.Word{},
	}
}

func (b *WriteBuffer) GetStorage(key kiln.Key) kiln.Word {
	if value, found := b.pending[key]; found {
		return value
	}
	return b.base.GetStorage(key)
}

func (b *WriteBuffer) SetStorage(key kiln.Key, value kiln.Word) {
	if _, found := b.pending[key]; !found {
		b.order = append(b.order, key)
	}
	b.pending[key] = value
}

// Commit forwards all buffered writes to the underlying storage, in the
// order keys were first written, and resets the buffer.
func (b *WriteBuffer) Commit() {
	for _, key := range b.order {
		b.base.SetStorage(key, b.pending[key])
	}
	b.Discard()
}

// Discard drops all buffered writes.
func (b *WriteBuffer) Discard() {
	clear(b.pending)
	b.order = b.order[:0]
}
