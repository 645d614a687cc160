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

package plan

import (
	"math"

	"github.com/dropbox/ruba/expr"
	"github.com/dropbox/ruba/ints"
	"github.com/dropbox/ruba/mem"
)

// UnknownCardinality is the assumed maximum grouping-key value
// when a column's encoding range is not statically known.
const UnknownCardinality = int64(math.MaxInt64)

// GroupingKey is the result of compiling GROUP BY expressions: one
// plan computing a single integer key per row (possibly bit-packed
// from two columns), the key's type, the key range the plan can
// produce, and one decode plan per grouping column that recovers
// the column's logical value from the materialized key (referenced
// through the group-by placeholder). MinKey can be negative for a
// single plain integer column; direct-indexed aggregation requires
// MinKey >= 0.
type GroupingKey struct {
	Plan        Op
	Type        Type
	MinKey      int64
	MaxKey      int64
	DecodePlans []Op
}

// CompileGroupingKey compiles one or two GROUP BY expressions into
// a grouping key. Two columns are bit-packed, rightmost expression
// in the lowest bits; columns with negative or statically unknown
// encoded ranges cannot be packed safely and fail with
// NotImplemented, as do keys wider than 64 bits and more than two
// grouping columns.
func CompileGroupingKey(exprs []expr.Node, columns map[string]*mem.Column) (*GroupingKey, error) {
	switch len(exprs) {
	case 1:
		op, t, err := Compile(exprs[0], columns)
		if err != nil {
			return nil, err
		}
		minKey, maxKey := int64(0), UnknownCardinality
		if min, max, ok := encodingRange(op); ok {
			minKey, maxKey = min, max
		}
		var decode Op = &GroupByPlaceholder{}
		if t.Codec != nil {
			decode = &DecodeWith{Inner: decode, Codec: t.Codec}
		}
		return &GroupingKey{Plan: op, Type: t, MinKey: minKey, MaxKey: maxKey, DecodePlans: []Op{decode}}, nil

	case 2:
		return compilePackedKey(exprs, columns)

	default:
		return nil, errNotImplementedf("can only group by one or two columns, got %d", len(exprs))
	}
}

func compilePackedKey(exprs []expr.Node, columns map[string]*mem.Column) (*GroupingKey, error) {
	var (
		packed      Op
		totalWidth  int
		largestKey  int64
		decodePlans []Op
	)
	// rightmost expression lands in the lowest bits
	for i := len(exprs) - 1; i >= 0; i-- {
		op, t, err := Compile(exprs[i], columns)
		if err != nil {
			return nil, err
		}
		min, max, ok := encodingRange(op)
		if !ok {
			return nil, errNotImplementedf("grouping column %s has no static range", exprs[i])
		}
		if min < 0 {
			return nil, errNotImplementedf("grouping column %s has negative values", exprs[i])
		}
		converted := &Conversion{Inner: op, From: t.EncodingType(), To: mem.I64}
		bits := ints.Width(max)
		if packed == nil {
			packed = converted
		} else {
			packed = &BitPack{Left: packed, Right: converted, Shift: totalWidth}
		}

		var decode Op = &BitUnpack{
			Inner: &GroupByPlaceholder{},
			Shift: uint8(totalWidth),
			Width: uint8(bits),
		}
		decode = &Conversion{Inner: decode, From: mem.I64, To: t.EncodingType()}
		if t.Codec != nil {
			decode = &DecodeWith{Inner: decode, Codec: t.Codec}
		}
		decodePlans = append(decodePlans, decode)

		largestKey += max << totalWidth
		totalWidth += bits
	}
	if totalWidth > 64 {
		return nil, errNotImplementedf("failed to pack group by columns into 64 bit value (%d bits)", totalWidth)
	}
	// unpack plans were built rightmost-first; restore column order
	for i, j := 0, len(decodePlans)-1; i < j; i, j = i+1, j-1 {
		decodePlans[i], decodePlans[j] = decodePlans[j], decodePlans[i]
	}
	return &GroupingKey{
		Plan:        packed,
		Type:        NewType(mem.Integer, nil),
		MaxKey:      largestKey,
		DecodePlans: decodePlans,
	}, nil
}

// encodingRange returns the static bounds of the values a plan
// node produces: the code range of an encoded read, or the stored
// value range of a plain column that knows its bounds.
func encodingRange(op Op) (min, max int64, ok bool) {
	switch p := op.(type) {
	case *ReadColumn:
		return p.Codec.EncodingRange()
	case *DecodeColumn:
		if r, ok := p.Data.(mem.Ranger); ok {
			return r.Range()
		}
	}
	return 0, 0, false
}
