// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state provides kiln.Storage implementations used by the
// interpreters and tools of this module.
package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kiln-vm/kiln/go/kiln"
	"golang.org/x/exp/maps"
)

// InMemory is a map-based kiln.Storage. Keys never written read as zero. The
// zero value is not ready for use, use NewInMemory instead.
type InMemory struct {
	slots map[kiln.Key]kiln.Word
}

var _ kiln.Storage = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{slots: map[kiln.Key]kiln.Word{}}
}

// NewInMemoryFrom creates a storage pre-populated with a copy of the given
// slots.
func NewInMemoryFrom(slots map[kiln.Key]kiln.Word) *InMemory {
	if slots == nil {
		return NewInMemory()
	}
	return &InMemory{slots: maps.Clone(slots)}
}

func (s *InMemory) GetStorage(key kiln.Key) kiln.Word {
	return s.slots[key]
}

func (s *InMemory) SetStorage(key kiln.Key, value kiln.Word) {
	s.slots[key] = value
}

// Len returns the number of slots ever written, including slots reset to
// zero.
func (s *InMemory) Len() int {
	return len(s.slots)
}

// Keys returns all written keys in ascending order.
func (s *InMemory) Keys() []kiln.Key {
	keys := maps.Keys(s.slots)
	slices.SortFunc(keys, func(a, b kiln.Key) int {
		return slices.Compare(a[:], b[:])
	})
	return keys
}

// NonZero returns a copy of all slots holding a non-zero value.
func (s *InMemory) NonZero() map[kiln.Key]kiln.Word {
	res := make(map[kiln.Key]kiln.Word, len(s.slots))
	for k, v := range s.slots {
		if v != (kiln.Word{}) {
			res[k] = v
		}
	}
	return res
}

func (s *InMemory) String() string {
	var builder strings.Builder
	builder.WriteString("{")
	for i, key := range s.Keys() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(fmt.Sprintf("%v: %v", key, s.slots[key]))
	}
	builder.WriteString("}")
	return builder.String()
}
