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

package vm

import (
	"github.com/dropbox/ruba/ints"
)

// FilterKind selects the active row-selection mode of a stage.
type FilterKind uint8

const (
	// FilterNone processes all rows.
	FilterNone FilterKind = iota
	// FilterBitVec selects rows via a bitmap.
	FilterBitVec
	// FilterIndices selects rows via an explicit index list.
	FilterIndices
)

// Filter is the active row selection of an executor stage. Every
// column-access operator is lowered into a different physical
// variant depending on which representation is active.
type Filter struct {
	Kind    FilterKind
	Bits    ints.Bitmap
	Indices []uint32
}

// NoFilter returns the process-all-rows filter.
func NoFilter() Filter { return Filter{} }

// BitVecFilter wraps a row-selection bitmap.
func BitVecFilter(bits ints.Bitmap) Filter {
	return Filter{Kind: FilterBitVec, Bits: bits}
}

// IndexFilter wraps an explicit selected-row index list.
func IndexFilter(idx []uint32) Filter {
	return Filter{Kind: FilterIndices, Indices: idx}
}

// BoolsToBitmap converts a boolean vector into a selection bitmap.
func BoolsToBitmap(bools []bool) ints.Bitmap {
	bits := ints.NewBitmap(len(bools))
	for i := range bools {
		if bools[i] {
			bits.Set(i)
		}
	}
	return bits
}

// BitmapIndices expands the set bits of a selection bitmap over n
// rows into an ascending index list.
func BitmapIndices(bits ints.Bitmap, n int) []uint32 {
	idx := make([]uint32, 0, bits.Count())
	for i := 0; i < n; i++ {
		if bits.Test(i) {
			idx = append(idx, uint32(i))
		}
	}
	return idx
}
