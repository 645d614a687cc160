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
	"fmt"

	"github.com/dropbox/ruba/value"
)

// MaxUniqueStrings is the default cardinality ceiling for
// dictionary encoding. Above it, string columns fall back to
// byte packing.
const MaxUniqueStrings = 10000

// DictStrings is a dictionary-encoded string column: every value
// (including null, which gets its own dictionary entry) is replaced
// by a small integer code indexing the mapping table. Decoding one
// position is a direct index into the mapping. The code width is
// fixed at construction; a dictionary never widens.
type DictStrings struct {
	mapping []value.Value
	reverse map[string]int64
	hasNull bool
	nullAt  int64
	codes   packed
}

// NewDictStrings dictionary-encodes vals. The number of distinct
// values (null included) must not exceed ceiling; otherwise a
// structured error is returned and the caller should fall back to
// byte packing. A ceiling <= 0 means MaxUniqueStrings.
func NewDictStrings(vals []value.Value, ceiling int) (*DictStrings, error) {
	if ceiling <= 0 {
		ceiling = MaxUniqueStrings
	}
	d := &DictStrings{reverse: make(map[string]int64), nullAt: -1}
	// enumeration order is first occurrence: arbitrary but fixed
	for i := range vals {
		switch vals[i].Kind {
		case value.KindNull:
			if !d.hasNull {
				d.hasNull = true
				d.nullAt = int64(len(d.mapping))
				d.mapping = append(d.mapping, value.Null())
			}
		case value.KindStr:
			if _, ok := d.reverse[vals[i].Str]; !ok {
				d.reverse[vals[i].Str] = int64(len(d.mapping))
				d.mapping = append(d.mapping, vals[i])
			}
		default:
			return nil, fmt.Errorf("row %d: cannot dictionary-encode %s value", i, vals[i].Kind)
		}
		if len(d.mapping) > ceiling {
			return nil, fmt.Errorf("dictionary cardinality exceeds ceiling %d", ceiling)
		}
	}
	max := int64(len(d.mapping)) - 1
	if max < 0 {
		max = 0
	}
	d.codes = newPacked(packedWidth(max), len(vals))
	for i := range vals {
		if vals[i].Kind == value.KindNull {
			d.codes.push(d.nullAt)
		} else {
			d.codes.push(d.reverse[vals[i].Str])
		}
	}
	return d, nil
}

// Cardinality returns the number of dictionary entries.
func (d *DictStrings) Cardinality() int { return len(d.mapping) }

// Len implements ColumnData.
func (d *DictStrings) Len() int { return d.codes.len() }

// BasicType implements ColumnData.
func (d *DictStrings) BasicType() BasicType { return String }

// HeapSize implements ColumnData.
func (d *DictStrings) HeapSize() int {
	sz := d.codes.heapSize()
	for i := range d.mapping {
		sz += len(d.mapping[i].Str) + 16
	}
	return sz
}

// Iter implements ColumnData.
func (d *DictStrings) Iter() Iter {
	return &dictIter{d: d}
}

type dictIter struct {
	d *DictStrings
	i int
}

func (it *dictIter) Next() (value.Value, bool) {
	if it.i >= it.d.codes.len() {
		return value.Value{}, false
	}
	v := it.d.mapping[it.d.codes.at(it.i)]
	it.i++
	return v, true
}

// EncodingType implements Codec.
func (d *DictStrings) EncodingType() EncodingType { return d.codes.width }

// EncodingRange implements Codec: codes span [0, cardinality-1].
func (d *DictStrings) EncodingRange() (int64, int64, bool) {
	return 0, int64(len(d.mapping)) - 1, true
}

// OrderPreserving implements Codec. Codes are assigned in first
// occurrence order, which has no relation to string ordering.
func (d *DictStrings) OrderPreserving() bool { return false }

// SummationPreserving implements Codec.
func (d *DictStrings) SummationPreserving() bool { return false }

// EncodedVec implements Codec.
func (d *DictStrings) EncodedVec() any { return d.codes.vec() }

// DecodeVec implements Codec. Null entries decode to the empty
// string (the same collision the byte-packed layout has).
func (d *DictStrings) DecodeVec(v any) (any, error) {
	card := int64(len(d.mapping))
	decode := func(code int64) (string, error) {
		if code < 0 || code >= card {
			return "", fmt.Errorf("dictionary code %d out of range [0, %d)", code, card)
		}
		return d.mapping[code].Str, nil
	}
	switch codes := v.(type) {
	case []uint8:
		return decodeCodes(codes, decode)
	case []uint16:
		return decodeCodes(codes, decode)
	case []uint32:
		return decodeCodes(codes, decode)
	case []int64:
		return decodeCodes(codes, decode)
	default:
		return nil, fmt.Errorf("cannot decode %T with a string dictionary", v)
	}
}

func decodeCodes[T uint8 | uint16 | uint32 | int64](codes []T, decode func(int64) (string, error)) ([]string, error) {
	out := make([]string, len(codes))
	for i := range codes {
		s, err := decode(int64(codes[i]))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// EncodeInt implements Codec.
func (d *DictStrings) EncodeInt(int64) (int64, error) {
	return 0, fmt.Errorf("string dictionary cannot encode an integer constant")
}

// EncodeStr implements Codec.
func (d *DictStrings) EncodeStr(s string) (int64, bool) {
	code, ok := d.reverse[s]
	if !ok {
		return -1, false
	}
	return code, true
}
