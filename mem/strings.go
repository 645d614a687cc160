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

package mem

import (
	"bytes"
	"fmt"

	"github.com/dropbox/ruba/value"
)

// StringPacker stores a sequence of strings as concatenated UTF-8
// bytes, each value terminated by a single zero byte. A null value
// is stored as an empty string and is therefore indistinguishable
// from an empty-string value; this collision is inherited from the
// on-the-wire layout and deliberately not papered over here.
//
// Values containing an embedded zero byte cannot be represented
// and are rejected at Push time.
type StringPacker struct {
	data []byte
	n    int
}

// PackStrings packs a sequence of nullable string values.
func PackStrings(vals []value.Value) (*StringPacker, error) {
	sp := &StringPacker{data: make([]byte, 0, len(vals)*8)}
	for i := range vals {
		switch vals[i].Kind {
		case value.KindNull:
			if err := sp.Push(""); err != nil {
				return nil, err
			}
		case value.KindStr:
			if err := sp.Push(vals[i].Str); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("row %d: cannot pack %s value into string column", i, vals[i].Kind)
		}
	}
	return sp, nil
}

// Push appends one string value. All pushes happen before any
// iteration for a given packer instance.
func (sp *StringPacker) Push(s string) error {
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return fmt.Errorf("string %q contains a zero byte", s)
	}
	sp.data = append(sp.data, s...)
	sp.data = append(sp.data, 0)
	sp.n++
	return nil
}

// Len implements ColumnData.
func (sp *StringPacker) Len() int { return sp.n }

// BasicType implements ColumnData.
func (sp *StringPacker) BasicType() BasicType { return String }

// HeapSize implements ColumnData.
func (sp *StringPacker) HeapSize() int { return cap(sp.data) }

// Iter implements ColumnData. The iterator scans forward from the
// last terminator found; a fresh iterator always starts at offset 0.
func (sp *StringPacker) Iter() Iter {
	return &stringPackerIter{data: sp.data}
}

type stringPackerIter struct {
	data []byte
	off  int
}

func (it *stringPackerIter) Next() (value.Value, bool) {
	if it.off >= len(it.data) {
		return value.Value{}, false
	}
	end := it.off
	for it.data[end] != 0 {
		end++
	}
	s := string(it.data[it.off:end])
	it.off = end + 1
	// an empty string doubles as null; see the type comment
	return value.String(s), true
}
