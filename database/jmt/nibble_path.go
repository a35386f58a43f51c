// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package jmt

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Arbor/go/common"
)

// MaxNibbles is the length of the path of a hashed key.
const MaxNibbles = 2 * len(common.Hash{})

// NibblePath is a sequence of up to 64 nibbles (4-bit values) addressing
// a position in the trie. Nibbles beyond the length of the path read as 0,
// independent of the content of the underlying buffer.
type NibblePath struct {
	buf        [32]byte
	numNibbles uint8
}

// NewNibblePath creates a path of n nibbles from the given buffer, which
// must hold at least (n+1)/2 bytes. Buffer content beyond the n-th nibble
// is ignored.
func NewNibblePath(buf []byte, n int) (NibblePath, error) {
	if n < 0 || n > MaxNibbles {
		return NibblePath{}, fmt.Errorf("invalid number of nibbles: %d", n)
	}
	if len(buf) < (n+1)/2 {
		return NibblePath{}, fmt.Errorf("buffer of %d bytes too short for %d nibbles", len(buf), n)
	}
	res := NibblePath{numNibbles: uint8(n)}
	copy(res.buf[:], buf)
	return res, nil
}

// NibblePathOf returns the full 64-nibble path of a hashed key.
func NibblePathOf(hash common.Hash) NibblePath {
	return NibblePath{buf: hash, numNibbles: uint8(MaxNibbles)}
}

func (p NibblePath) NumNibbles() int {
	return int(p.numNibbles)
}

// GetNibble returns the i-th nibble, or 0 if i is out of range.
func (p NibblePath) GetNibble(i int) byte {
	if i < 0 || i >= int(p.numNibbles) {
		return 0
	}
	if i%2 == 0 {
		return p.buf[i/2] >> 4
	}
	return p.buf[i/2] & 0xF
}

// CommonPrefix returns the number of leading nibbles shared by both paths.
func (p NibblePath) CommonPrefix(other NibblePath) int {
	limit := min(p.NumNibbles(), other.NumNibbles())
	for i := 0; i < limit; i++ {
		if p.GetNibble(i) != other.GetNibble(i) {
			return i
		}
	}
	return limit
}

// Bytes returns the packed nibbles of the path. If the number of nibbles is
// odd, the low half of the last byte is zero.
func (p NibblePath) Bytes() []byte {
	res := make([]byte, (p.NumNibbles()+1)/2)
	copy(res, p.buf[:])
	if p.numNibbles%2 == 1 {
		res[len(res)-1] &= 0xF0
	}
	return res
}

// Equal compares the nibbles of both paths, ignoring buffer content beyond
// their length.
func (p NibblePath) Equal(other NibblePath) bool {
	return p.numNibbles == other.numNibbles && p.CommonPrefix(other) == p.NumNibbles()
}

func (p NibblePath) String() string {
	var builder strings.Builder
	for i := 0; i < p.NumNibbles(); i++ {
		builder.WriteByte("0123456789abcdef"[p.GetNibble(i)])
	}
	return builder.String()
}
