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

// intData is a plain int64 column. It carries its value range so
// the grouping-key compiler can bit-pack unencoded integer columns
// whose bounds are statically known.
type intData struct {
	vals     []int64
	min, max int64
}

func (c *intData) Len() int             { return len(c.vals) }
func (c *intData) BasicType() BasicType { return Integer }
func (c *intData) HeapSize() int        { return 8 * cap(c.vals) }

func (c *intData) Range() (int64, int64, bool) {
	return c.min, c.max, len(c.vals) > 0
}

func (c *intData) Iter() Iter { return &intIter{vals: c.vals} }

// Vals returns the raw stored values. Callers must treat the
// returned slice as read-only.
func (c *intData) Vals() []int64 { return c.vals }

type intIter struct {
	vals []int64
	i    int
}

func (it *intIter) Next() (value.Value, bool) {
	if it.i >= len(it.vals) {
		return value.Value{}, false
	}
	v := value.Int64(it.vals[it.i])
	it.i++
	return v, true
}

// offsetInts stores integers as (v - min) codes in the narrowest
// of u8/u16/u32 that fits the value range. The encoding preserves
// ordering; it preserves summation only when the offset is zero,
// since a nonzero offset shifts every term of a sum.
type offsetInts struct {
	codes    packed
	min, max int64
}

func newOffsetInts(vals []int64, min, max int64) *offsetInts {
	c := &offsetInts{min: min, max: max}
	c.codes = newPacked(packedWidth(max-min), len(vals))
	for _, v := range vals {
		c.codes.push(v - min)
	}
	return c
}

func (c *offsetInts) Len() int             { return c.codes.len() }
func (c *offsetInts) BasicType() BasicType { return Integer }
func (c *offsetInts) HeapSize() int        { return c.codes.heapSize() + 16 }

func (c *offsetInts) Range() (int64, int64, bool) { return c.min, c.max, true }

func (c *offsetInts) Iter() Iter { return &offsetIter{c: c} }

type offsetIter struct {
	c *offsetInts
	i int
}

func (it *offsetIter) Next() (value.Value, bool) {
	if it.i >= it.c.codes.len() {
		return value.Value{}, false
	}
	v := value.Int64(it.c.codes.at(it.i) + it.c.min)
	it.i++
	return v, true
}

// EncodingType implements Codec.
func (c *offsetInts) EncodingType() EncodingType { return c.codes.width }

// EncodingRange implements Codec: codes span [0, max-min].
func (c *offsetInts) EncodingRange() (int64, int64, bool) {
	return 0, c.max - c.min, true
}

// OrderPreserving implements Codec.
func (c *offsetInts) OrderPreserving() bool { return true }

// SummationPreserving implements Codec.
func (c *offsetInts) SummationPreserving() bool { return c.min == 0 }

// EncodedVec implements Codec.
func (c *offsetInts) EncodedVec() any { return c.codes.vec() }

// DecodeVec implements Codec.
func (c *offsetInts) DecodeVec(v any) (any, error) {
	add := func(code int64) int64 { return code + c.min }
	switch codes := v.(type) {
	case []uint8:
		return addOffset(codes, add), nil
	case []uint16:
		return addOffset(codes, add), nil
	case []uint32:
		return addOffset(codes, add), nil
	case []int64:
		return addOffset(codes, add), nil
	default:
		return nil, fmt.Errorf("cannot decode %T with an integer offset codec", v)
	}
}

func addOffset[T uint8 | uint16 | uint32 | int64](codes []T, add func(int64) int64) []int64 {
	out := make([]int64, len(codes))
	for i := range codes {
		out[i] = add(int64(codes[i]))
	}
	return out
}

// EncodeInt implements Codec. The result may fall outside
// [0, max-min] when v lies outside the stored value range; the
// comparison operators evaluate codes in 64-bit space, so such
// constants simply match no row (or every row).
func (c *offsetInts) EncodeInt(v int64) (int64, error) {
	return v - c.min, nil
}

// EncodeStr implements Codec.
func (c *offsetInts) EncodeStr(string) (int64, bool) { return -1, false }
