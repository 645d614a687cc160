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

// Package plan compiles expression ASTs into typed query plans and
// lowers those plans into staged vector operators.
//
// A plan is an immutable tree describing what to compute, never
// how: leaves reference columns and constants, interior nodes
// describe conversions, encode/decode steps, key packing,
// comparisons and boolean combination. Plans carry no execution
// state; lowering turns them into vm operators addressing typed
// buffers.
package plan

import (
	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
	"github.com/dropbox/ruba/vm"
)

// Op is one node of a query plan tree. The set of node shapes is
// closed; lowering dispatches exhaustively over it.
type Op interface {
	isOp()
}

// ReadColumn reads the raw codes of an encoded column, keeping the
// data in encoded space.
type ReadColumn struct {
	Codec mem.Codec
}

// DecodeColumn materializes the decoded logical values of a
// directly interpretable column.
type DecodeColumn struct {
	Data mem.ColumnData
}

// ReadBuffer references a buffer materialized by an earlier stage.
type ReadBuffer struct {
	Buf vm.BufferRef
}

// DecodeWith decodes its child's codes through a codec.
type DecodeWith struct {
	Inner Op
	Codec mem.Codec
}

// Conversion converts its child between physical integer encodings.
type Conversion struct {
	Inner    Op
	From, To mem.EncodingType
}

// EncodeStrConst maps a scalar string constant into a codec's code
// space so a comparison can run entirely on encoded data.
type EncodeStrConst struct {
	Inner Op
	Codec mem.Codec
}

// EncodeIntConst maps a scalar integer constant into a codec's
// code space.
type EncodeIntConst struct {
	Inner Op
	Codec mem.Codec
}

// BitPack packs Right on top of the already packed Left at bit
// offset Shift.
type BitPack struct {
	Left, Right Op
	Shift       int
}

// BitUnpack extracts the Width-bit field at offset Shift from a
// packed grouping key.
type BitUnpack struct {
	Inner Op
	Shift uint8
	Width uint8
}

// LessThanVS compares a vector against a scalar constant.
type LessThanVS struct {
	EncType     mem.EncodingType
	Left, Right Op
}

// EqualsVS tests a vector for equality against a scalar constant.
type EqualsVS struct {
	EncType     mem.EncodingType
	Left, Right Op
}

// And is boolean conjunction of two boolean vectors.
type And struct {
	Left, Right Op
}

// Or is boolean disjunction of two boolean vectors.
type Or struct {
	Left, Right Op
}

// SortIndices computes the permutation ordering its child.
type SortIndices struct {
	Inner      Op
	Descending bool
}

// GroupByPlaceholder stands for the current stage's materialized
// group-key buffer. It resolves during lowering to the buffer
// registered via QueryExecutor.SetEncodedGroupBy.
type GroupByPlaceholder struct{}

// Constant wraps a literal value.
type Constant struct {
	Val value.Value
}

func (*ReadColumn) isOp()         {}
func (*DecodeColumn) isOp()       {}
func (*ReadBuffer) isOp()         {}
func (*DecodeWith) isOp()         {}
func (*Conversion) isOp()         {}
func (*EncodeStrConst) isOp()     {}
func (*EncodeIntConst) isOp()     {}
func (*BitPack) isOp()            {}
func (*BitUnpack) isOp()          {}
func (*LessThanVS) isOp()         {}
func (*EqualsVS) isOp()           {}
func (*And) isOp()                {}
func (*Or) isOp()                 {}
func (*SortIndices) isOp()        {}
func (*GroupByPlaceholder) isOp() {}
func (*Constant) isOp()           {}

// Aggregator selects an aggregation operation.
type Aggregator uint8

const (
	AggCount Aggregator = iota
	AggSum
)

func (a Aggregator) String() string {
	switch a {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	default:
		return "Aggregator(?)"
	}
}
