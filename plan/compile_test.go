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
	"errors"
	"testing"

	"github.com/dropbox/ruba/expr"
	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
)

// testColumns builds a small table: age is offset-encoded, id is
// plain int64 (its spread defeats narrowing), name is
// dictionary-encoded.
func testColumns(t *testing.T) map[string]*mem.Column {
	t.Helper()
	cols := make(map[string]*mem.Column)
	add := func(name string, vals []value.Value) {
		c, err := mem.BuildColumn(name, vals, 0)
		if err != nil {
			t.Fatal(err)
		}
		cols[name] = c
	}
	add("age", []value.Value{
		value.Int64(10), value.Int64(20), value.Int64(10), value.Int64(30), value.Int64(20),
	})
	add("id", []value.Value{
		value.Int64(0), value.Int64(1 << 40), value.Int64(1), value.Int64(2), value.Int64(3),
	})
	add("name", []value.Value{
		value.String("a"), value.String("b"), value.String("a"), value.String("c"), value.String("b"),
	})
	return cols
}

func TestCompileColumnRefs(t *testing.T) {
	cols := testColumns(t)

	op, typ, err := Compile(expr.Column("age"), cols)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := op.(*ReadColumn); !ok {
		t.Errorf("encoded column compiled to %T, want ReadColumn", op)
	}
	if !typ.IsEncoded() || typ.Basic != mem.Integer {
		t.Errorf("encoded int column has type %s", typ)
	}

	op, typ, err = Compile(expr.Column("id"), cols)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := op.(*DecodeColumn); !ok {
		t.Errorf("plain column compiled to %T, want DecodeColumn", op)
	}
	if typ.IsEncoded() {
		t.Errorf("plain column has encoded type %s", typ)
	}
}

func TestCompileMissingColumn(t *testing.T) {
	_, _, err := Compile(expr.Column("nope"), testColumns(t))
	var nie *NotImplementedError
	if !errors.As(err, &nie) {
		t.Fatalf("got %v, want NotImplementedError", err)
	}
}

func TestCompileTypeRejection(t *testing.T) {
	cols := testColumns(t)
	bad := []expr.Node{
		expr.Less(expr.Column("age"), expr.Str("abc")),
		expr.Less(expr.Column("name"), expr.Int(3)),
		expr.Equals(expr.Column("name"), expr.Int(3)),
		expr.Equals(expr.Column("age"), expr.Str("a")),
		expr.And(expr.Column("age"), expr.Less(expr.Column("age"), expr.Int(5))),
	}
	for _, node := range bad {
		_, _, err := Compile(node, cols)
		var te *TypeError
		if !errors.As(err, &te) {
			t.Errorf("%s: got %v, want TypeError", node, err)
		}
	}
}

// Comparisons are implemented for column-vs-constant only: a
// vector right operand and a scalar left operand must both be
// rejected at compile time.
func TestCompileComparisonShape(t *testing.T) {
	cols := testColumns(t)
	bad := []expr.Node{
		expr.Less(expr.Column("age"), expr.Column("age")),
		expr.Less(expr.Int(5), expr.Int(10)),
		expr.Less(expr.Int(5), expr.Column("age")),
		expr.Equals(expr.Str("a"), expr.Str("a")),
		expr.Equals(expr.Str("a"), expr.Column("name")),
	}
	for _, node := range bad {
		_, _, err := Compile(node, cols)
		var nie *NotImplementedError
		if !errors.As(err, &nie) {
			t.Errorf("%s: got %v, want NotImplementedError", node, err)
		}
	}
}

func TestCompileNullConstant(t *testing.T) {
	_, _, err := Compile(&expr.Constant{Value: value.Null()}, testColumns(t))
	var nie *NotImplementedError
	if !errors.As(err, &nie) {
		t.Fatalf("got %v, want NotImplementedError", err)
	}
}

func TestCompileEncodesConstants(t *testing.T) {
	cols := testColumns(t)

	op, typ, err := Compile(expr.Equals(expr.Column("name"), expr.Str("b")), cols)
	if err != nil {
		t.Fatal(err)
	}
	if typ.Basic != mem.Boolean || !typ.Mutable {
		t.Errorf("comparison has type %s, want a mutable boolean vector", typ)
	}
	eq, ok := op.(*EqualsVS)
	if !ok {
		t.Fatalf("compiled to %T, want EqualsVS", op)
	}
	if _, ok := eq.Right.(*EncodeStrConst); !ok {
		t.Errorf("string constant not encoded into dictionary space: %T", eq.Right)
	}

	op, _, err = Compile(expr.Less(expr.Column("age"), expr.Int(25)), cols)
	if err != nil {
		t.Fatal(err)
	}
	lt, ok := op.(*LessThanVS)
	if !ok {
		t.Fatalf("compiled to %T, want LessThanVS", op)
	}
	if _, ok := lt.Right.(*EncodeIntConst); !ok {
		t.Errorf("int constant not encoded into offset space: %T", lt.Right)
	}

	// a plain column needs no constant encoding
	op, _, err = Compile(expr.Less(expr.Column("id"), expr.Int(25)), cols)
	if err != nil {
		t.Fatal(err)
	}
	lt = op.(*LessThanVS)
	if _, ok := lt.Right.(*Constant); !ok {
		t.Errorf("plain comparison wrapped its constant: %T", lt.Right)
	}
}

func TestOrderPreservingRewrite(t *testing.T) {
	cols := testColumns(t)

	// dictionary codes do not order like their strings
	op, typ, err := Compile(expr.Column("name"), cols)
	if err != nil {
		t.Fatal(err)
	}
	wrapped, wrappedType := OrderPreserving(op, typ)
	if _, ok := wrapped.(*DecodeWith); !ok {
		t.Errorf("dictionary column not wrapped in a decode: %T", wrapped)
	}
	if wrappedType.IsEncoded() {
		t.Errorf("wrapped type still encoded: %s", wrappedType)
	}

	// offset codes order exactly like their values
	op, typ, err = Compile(expr.Column("age"), cols)
	if err != nil {
		t.Fatal(err)
	}
	same, sameType := OrderPreserving(op, typ)
	if same != op || sameType != typ {
		t.Error("order-preserving codec must pass through unchanged")
	}
}
