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

// Package mem implements the in-memory columnar storage layer:
// byte-packed and dictionary-encoded strings, width-narrowed
// integers, and compressed frozen snapshots of all of the above.
//
// Columns are append-then-freeze: they are fully constructed by
// the builders in this package and immutable afterwards, which is
// the entire concurrency contract of the query engine.
package mem

import (
	"github.com/dropbox/ruba/value"
)

// Iter is a forward-only iterator over the logical values of a
// column. A fresh Iter always starts at the first row; an open
// Iter must not outlive mutation of the underlying column (the
// storage layer is append-then-freeze, so this never happens
// after construction).
type Iter interface {
	Next() (value.Value, bool)
}

// ColumnData owns (or can decode) the raw values of one column.
type ColumnData interface {
	// Len is the number of rows.
	Len() int
	// BasicType is the logical type of the stored values.
	BasicType() BasicType
	// HeapSize is the approximate in-memory footprint in bytes,
	// used to guide storage-format selection and freezing.
	HeapSize() int
	// Iter returns a fresh forward iterator over logical values.
	Iter() Iter
}

// Ranger is implemented by ColumnData that statically knows the
// minimum and maximum of the decoded values it stores.
type Ranger interface {
	Range() (min, max int64, ok bool)
}

// Codec is implemented by ColumnData whose physical representation
// is encoded: the stored values are codes that are not directly
// interpretable as logical values. The plan compiler consults the
// codec to decide when constants can be encoded into code space
// and when stored codes must be decoded.
type Codec interface {
	ColumnData

	// EncodingType is the physical type of the stored codes.
	EncodingType() EncodingType
	// EncodingRange returns the static range of the stored codes
	// (not of the decoded values).
	EncodingRange() (min, max int64, ok bool)
	// OrderPreserving reports whether comparing codes orders the
	// same way as comparing the decoded values.
	OrderPreserving() bool
	// SummationPreserving reports whether summing codes yields
	// totals consistent with summing the decoded values.
	SummationPreserving() bool

	// EncodedVec returns the raw code vector: []uint8, []uint16,
	// []uint32 or []int64 according to EncodingType. Callers must
	// treat the returned slice as read-only.
	EncodedVec() any
	// DecodeVec decodes a vector of codes into logical values
	// ([]int64 or []string).
	DecodeVec(v any) (any, error)
	// EncodeInt maps a logical integer constant into code space.
	// The result may lie outside EncodingRange when the constant
	// lies outside the stored value range.
	EncodeInt(v int64) (int64, error)
	// EncodeStr maps a logical string constant into code space.
	// A constant absent from the dictionary yields (-1, false):
	// a code that matches no stored row.
	EncodeStr(s string) (int64, bool)
}

// Column is a named, immutable unit of storage.
type Column struct {
	name string
	data ColumnData
}

// NewColumn wraps data as a named column.
func NewColumn(name string, data ColumnData) *Column {
	return &Column{name: name, data: data}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Data returns the column's storage.
func (c *Column) Data() ColumnData { return c.data }

// Codec returns the column's codec, or nil if the column's
// representation is directly interpretable.
func (c *Column) Codec() Codec {
	if cd, ok := c.data.(Codec); ok {
		return cd
	}
	return nil
}
