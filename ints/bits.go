// Copyright (C) 2026 Dropbox, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package ints provides the bit-level helpers used by row-selection
// bitmaps and grouping-key packing.
package ints

import (
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// TestBit checks if the k-th bit is set in range "in"
func TestBit[T, K constraints.Integer](in []T, k K) bool {
	return (in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] & (T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))) != 0
}

// SetBit sets the k-th bit in range "in"
func SetBit[T, K constraints.Integer](in []T, k K) {
	in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] |= (T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))
}

// ClearBit clears the k-th bit in range "in"
func ClearBit[T, K constraints.Integer](in []T, k K) {
	in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] &= ^(T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))
}

// Bitmap is a fixed-capacity row-selection bit set
// backed by 64-bit words.
type Bitmap []uint64

// NewBitmap returns a Bitmap with capacity for n bits, all clear.
func NewBitmap(n int) Bitmap {
	return make(Bitmap, (n+63)/64)
}

// Set sets bit k.
func (b Bitmap) Set(k int) { SetBit(b, k) }

// Test reports whether bit k is set.
func (b Bitmap) Test(k int) bool { return TestBit(b, k) }

// Count returns the number of set bits.
func (b Bitmap) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// Width returns the number of bits needed to represent all
// values in [0, max]. A zero max still occupies one bit so
// that packed grouping-key fields never collapse to zero width.
func Width(max int64) int {
	if max <= 1 {
		return 1
	}
	return bits.Len64(uint64(max))
}
