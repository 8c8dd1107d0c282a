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

//go:generate mockgen -source storage.go -destination storage_mock.go -package kiln

// Storage is the key/value store a program operates on. It is owned by the
// caller, outlives a single invocation, and is borrowed exclusively by one
// interpreter run at a time. Concurrent runs on the same storage must be
// serialized by the caller.
type Storage interface {
	// GetStorage returns the value stored under the given key. Keys that
	// have never been written read as the zero Word.
	GetStorage(Key) Word
	// SetStorage inserts or overwrites the value of the given key.
	SetStorage(Key, Word)
}
