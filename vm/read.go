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
	"fmt"

	"github.com/dropbox/ruba/ints"
	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
)

// decodeAll materializes the decoded logical values of a column as
// a typed vector. Nulls collapse to the zero value of the column's
// basic type, matching the byte-packed layout's null representation.
func decodeAll(col mem.ColumnData) any {
	switch col.BasicType() {
	case mem.Integer:
		out := make([]int64, 0, col.Len())
		it := col.Iter()
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			out = append(out, v.Int)
		}
		return out
	default:
		out := make([]string, 0, col.Len())
		it := col.Iter()
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			out = append(out, v.Str)
		}
		return out
	}
}

// GetDecode materializes all decoded values of a column.
type GetDecode struct {
	Col mem.ColumnData
	Out BufferRef
}

func (op *GetDecode) Exec(s *Scratchpad) error {
	s.Set(op.Out, decodeAll(op.Col))
	return nil
}

func (op *GetDecode) String() string {
	return fmt.Sprintf("%d <- get_decode", op.Out)
}

// FilterDecode materializes the decoded values of the
// bitmap-selected rows of a column, skipping unselected rows as
// the forward iteration advances.
type FilterDecode struct {
	Col  mem.ColumnData
	Bits ints.Bitmap
	Out  BufferRef
}

func (op *FilterDecode) Exec(s *Scratchpad) error {
	switch op.Col.BasicType() {
	case mem.Integer:
		out := []int64{}
		filterIter(op.Col, op.Bits, func(v value.Value) { out = append(out, v.Int) })
		s.Set(op.Out, out)
	default:
		out := []string{}
		filterIter(op.Col, op.Bits, func(v value.Value) { out = append(out, v.Str) })
		s.Set(op.Out, out)
	}
	return nil
}

func filterIter(col mem.ColumnData, bits ints.Bitmap, emit func(value.Value)) {
	it := col.Iter()
	row := 0
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		if bits.Test(row) {
			emit(v)
		}
		row++
	}
}

func (op *FilterDecode) String() string {
	return fmt.Sprintf("%d <- filter_decode", op.Out)
}

// IndexDecode materializes the decoded values of an explicit
// (possibly unordered) row-index list. The index list may be in
// any order, so the column is decoded once and then gathered.
type IndexDecode struct {
	Col     mem.ColumnData
	Indices []uint32
	Out     BufferRef
}

func (op *IndexDecode) Exec(s *Scratchpad) error {
	out, err := gather(decodeAll(op.Col), op.Indices)
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *IndexDecode) String() string {
	return fmt.Sprintf("%d <- index_decode", op.Out)
}

// GetEncoded exposes a column's raw code vector without copying.
// Downstream operators must treat the buffer as read-only.
type GetEncoded struct {
	Col mem.Codec
	Out BufferRef
}

func (op *GetEncoded) Exec(s *Scratchpad) error {
	s.Set(op.Out, op.Col.EncodedVec())
	return nil
}

func (op *GetEncoded) String() string {
	return fmt.Sprintf("%d <- get_encoded", op.Out)
}

// FilterEncoded gathers the bitmap-selected codes of an encoded
// column, preserving the code width.
type FilterEncoded struct {
	Col  mem.Codec
	Bits ints.Bitmap
	Out  BufferRef
}

func (op *FilterEncoded) Exec(s *Scratchpad) error {
	raw := op.Col.EncodedVec()
	out, err := gather(raw, BitmapIndices(op.Bits, vecLen(raw)))
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *FilterEncoded) String() string {
	return fmt.Sprintf("%d <- filter_encoded", op.Out)
}

// IndexEncoded gathers codes of an encoded column by an explicit
// row-index list, preserving the code width.
type IndexEncoded struct {
	Col     mem.Codec
	Indices []uint32
	Out     BufferRef
}

func (op *IndexEncoded) Exec(s *Scratchpad) error {
	out, err := gather(op.Col.EncodedVec(), op.Indices)
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *IndexEncoded) String() string {
	return fmt.Sprintf("%d <- index_encoded", op.Out)
}
