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
	"fmt"

	"github.com/dropbox/ruba/vm"
)

// Lower recursively rewrites a compiled plan into physical vector
// operators appended to the executor's current stage, returning
// the buffer that will hold the plan's result.
//
// Lowering assumes the plan already type-checked during
// compilation: a malformed plan here is a programming error, not a
// user-facing one, and panics.
//
// Column-access nodes lower into one of three physical variants
// chosen by the stage's active filter; this repeated three-way
// dispatch is how filter pushdown is realized without ever
// materializing an intermediate filtered column.
func Lower(op Op, ex *vm.QueryExecutor) vm.BufferRef {
	switch p := op.(type) {
	case *DecodeColumn:
		out := ex.NewBuffer()
		switch f := ex.Filter(); f.Kind {
		case vm.FilterBitVec:
			ex.Push(&vm.FilterDecode{Col: p.Data, Bits: f.Bits, Out: out})
		case vm.FilterIndices:
			ex.Push(&vm.IndexDecode{Col: p.Data, Indices: f.Indices, Out: out})
		default:
			ex.Push(&vm.GetDecode{Col: p.Data, Out: out})
		}
		return out

	case *ReadColumn:
		out := ex.NewBuffer()
		switch f := ex.Filter(); f.Kind {
		case vm.FilterBitVec:
			ex.Push(&vm.FilterEncoded{Col: p.Codec, Bits: f.Bits, Out: out})
		case vm.FilterIndices:
			ex.Push(&vm.IndexEncoded{Col: p.Codec, Indices: f.Indices, Out: out})
		default:
			ex.Push(&vm.GetEncoded{Col: p.Codec, Out: out})
		}
		return out

	case *ReadBuffer:
		return p.Buf

	case *GroupByPlaceholder:
		ref, ok := ex.EncodedGroupBy()
		if !ok {
			panic("group-by placeholder lowered before SetEncodedGroupBy")
		}
		return ref

	case *Constant:
		out := ex.NewBuffer()
		ex.Push(&vm.Constant{Val: p.Val, Out: out})
		return out

	case *DecodeWith:
		in := Lower(p.Inner, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.DecodeWith{In: in, Out: out, Codec: p.Codec})
		return out

	case *Conversion:
		in := Lower(p.Inner, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.TypeConversion{In: in, Out: out, From: p.From, To: p.To})
		return out

	case *EncodeIntConst:
		in := Lower(p.Inner, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.EncodeIntConst{In: in, Out: out, Codec: p.Codec})
		return out

	case *EncodeStrConst:
		in := Lower(p.Inner, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.EncodeStrConst{In: in, Out: out, Codec: p.Codec})
		return out

	case *BitPack:
		lhs := Lower(p.Left, ex)
		rhs := Lower(p.Right, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.BitShiftLeftAdd{Lhs: lhs, Rhs: rhs, Out: out, Shift: p.Shift})
		return out

	case *BitUnpack:
		in := Lower(p.Inner, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.BitUnpack{In: in, Out: out, Shift: p.Shift, Width: p.Width})
		return out

	case *LessThanVS:
		lhs := Lower(p.Left, ex)
		rhs := Lower(p.Right, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.LessThanVS{In: lhs, Const: rhs, Out: out})
		return out

	case *EqualsVS:
		lhs := Lower(p.Left, ex)
		rhs := Lower(p.Right, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.EqualsVS{In: lhs, Const: rhs, Out: out})
		return out

	case *And:
		// combines into the left operand's buffer in place and
		// returns that same handle; see vm.Boolean
		lhs := Lower(p.Left, ex)
		rhs := Lower(p.Right, ex)
		ex.Push(&vm.Boolean{Lhs: lhs, Rhs: rhs})
		return lhs

	case *Or:
		lhs := Lower(p.Left, ex)
		rhs := Lower(p.Right, ex)
		ex.Push(&vm.Boolean{Lhs: lhs, Rhs: rhs, Or: true})
		return lhs

	case *SortIndices:
		in := Lower(p.Inner, ex)
		out := ex.NewBuffer()
		ex.Push(&vm.SortIndices{In: in, Out: out, Descending: p.Descending})
		return out

	default:
		panic(fmt.Sprintf("cannot lower plan node %T", op))
	}
}

// LowerUnique appends the dense distinct-key operator for a
// materialized grouping key whose values lie in [0, maxCard].
func LowerUnique(rawKey vm.BufferRef, maxCard int64, ex *vm.QueryExecutor) vm.BufferRef {
	out := ex.NewBuffer()
	ex.Push(&vm.Unique{In: rawKey, Out: out, MaxCard: maxCard})
	return out
}

// LowerHashGrouping appends the hash-map grouping operator for a
// materialized grouping key of unknown or large range. It returns
// the distinct-keys buffer, the per-row dense group-id buffer, and
// the scalar cardinality buffer.
func LowerHashGrouping(rawKey vm.BufferRef, ex *vm.QueryExecutor) (unique, groupIDs, card vm.BufferRef) {
	unique = ex.NewBuffer()
	groupIDs = ex.NewBuffer()
	card = ex.NewBuffer()
	ex.Push(&vm.HashGrouping{In: rawKey, UniqueOut: unique, IdxOut: groupIDs, CardOut: card})
	return unique, groupIDs, card
}

// LowerAggregation appends one aggregation over a materialized
// grouping buffer. Count ignores the value plan entirely. Sum
// forces a decode of the value plan when its representation does
// not preserve summation: summing raw codes of such an encoding
// would produce wrong totals, so this is a correctness
// requirement, not an optimization.
//
// The grouping buffer either holds raw keys bounded by maxIndex
// (card == vm.NoBuffer), or dense group ids sized by the scalar in
// card.
func LowerAggregation(valuePlan Op, valueType Type, agg Aggregator,
	grouping vm.BufferRef, maxIndex int64, card vm.BufferRef,
	ex *vm.QueryExecutor) vm.BufferRef {

	out := ex.NewBuffer()
	switch agg {
	case AggCount:
		ex.Push(&vm.Count{Grouping: grouping, Out: out, MaxIndex: maxIndex, Card: card})
	case AggSum:
		if !valueType.IsSummationPreserving() {
			valuePlan = &DecodeWith{Inner: valuePlan, Codec: valueType.Codec}
			valueType = valueType.Decoded()
		}
		values := Lower(valuePlan, ex)
		ex.Push(&vm.Sum{Values: values, Grouping: grouping, Out: out, MaxIndex: maxIndex, Card: card})
	default:
		panic(fmt.Sprintf("unknown aggregator %d", agg))
	}
	return out
}
