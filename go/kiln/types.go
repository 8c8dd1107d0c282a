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

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Word represents an arbitrary 256-bit (32 byte) word in big-endian encoding.
// It is the value type of the storage and the wire format of a VM word.
type Word [32]byte

// Key represents the 256-bit (32 bytes) key of a storage slot.
type Key [32]byte

// Hash represents the 256-bit (32 bytes) hash of a code or similar sequence
// of cryptographic summary information.
type Hash [32]byte

// Code represents the byte-code of a program.
type Code []byte

// Data represents the input or output of program invocations.
type Data []byte

// NewWord creates a new Word from up to 4 uint64 arguments. The arguments
// are given in the order from most significant to least significant by
// padding leading zeros as needed. No argument results in a value of zero.
func NewWord(args ...uint64) (result Word) {
	if len(args) > 4 {
		panic("Too many arguments")
	}
	var value uint256.Int
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		value[3-i-offset] = args[i]
	}
	return value.Bytes32()
}

// WordFromUint256 converts a *uint256.Int to a Word. A nil input yields zero.
func WordFromUint256(value *uint256.Int) Word {
	if value == nil {
		return Word{}
	}
	return value.Bytes32()
}

// ToUint256 interprets the word as a big-endian 256-bit unsigned integer.
func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

func (w Word) String() string {
	return fmt.Sprintf("0x%x", w[:])
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:])
}

func (w *Word) UnmarshalText(data []byte) error {
	return textToPaddedBytes(w[:], data)
}

func (k Key) String() string {
	return fmt.Sprintf("0x%x", k[:])
}

func (k Key) MarshalText() ([]byte, error) {
	return bytesToText(k[:])
}

func (k *Key) UnmarshalText(data []byte) error {
	return textToPaddedBytes(k[:], data)
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

// textToPaddedBytes parses a 0x-prefixed hex string into trg. Shorter inputs
// are left-padded with zeros, so "0x01" and "0x0000…01" denote the same word.
func textToPaddedBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	s = s[2:]
	if len(s)%2 == 1 {
		s = "0" + s
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(decoded) > len(trg) {
		return fmt.Errorf("invalid format, wanted at most %d bytes, got %d", len(trg), len(decoded))
	}
	for i := range trg {
		trg[i] = 0
	}
	copy(trg[len(trg)-len(decoded):], decoded)
	return nil
}
