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
	"github.com/dropbox/ruba/expr"
	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
)

// Compile translates an expression AST plus a name-to-column
// mapping into a typed query plan. Failures short-circuit
// immediately; no partial plan is ever returned.
func Compile(node expr.Node, columns map[string]*mem.Column) (Op, Type, error) {
	switch n := node.(type) {
	case *expr.Ident:
		c, ok := columns[n.Name]
		if !ok {
			return nil, Type{}, errNotImplementedf("referencing missing column %q", n.Name)
		}
		// whether the column stays encoded is a structural fact of
		// the column, not a policy choice
		if codec := c.Codec(); codec != nil {
			return &ReadColumn{Codec: codec}, NewType(codec.BasicType(), codec), nil
		}
		return &DecodeColumn{Data: c.Data()}, NewType(c.Data().BasicType(), nil), nil

	case *expr.Constant:
		switch n.Value.Kind {
		case value.KindInt:
			return &Constant{Val: n.Value}, ScalarType(mem.Integer), nil
		case value.KindStr:
			return &Constant{Val: n.Value}, ScalarType(mem.String), nil
		default:
			return nil, Type{}, errNotImplementedf("null constant %s", n)
		}

	case *expr.Binop:
		return compileBinop(n, columns)

	default:
		return nil, Type{}, errNotImplementedf("expression %s", node)
	}
}

func compileBinop(n *expr.Binop, columns map[string]*mem.Column) (Op, Type, error) {
	lhs, lhsType, err := Compile(n.Left, columns)
	if err != nil {
		return nil, Type{}, err
	}
	rhs, rhsType, err := Compile(n.Right, columns)
	if err != nil {
		return nil, Type{}, err
	}

	switch n.Op {
	case expr.OpLess:
		if lhsType.Basic != mem.Integer || rhsType.Basic != mem.Integer {
			return nil, Type{}, errTypef("%s < %s", lhsType, rhsType)
		}
		return compileComparison(n, lhs, lhsType, rhs, rhsType, false)

	case expr.OpEquals:
		ok := (lhsType.Basic == mem.Integer && rhsType.Basic == mem.Integer) ||
			(lhsType.Basic == mem.String && rhsType.Basic == mem.String)
		if !ok {
			return nil, Type{}, errTypef("%s = %s", lhsType, rhsType)
		}
		return compileComparison(n, lhs, lhsType, rhs, rhsType, true)

	case expr.OpAnd, expr.OpOr:
		if lhsType.Basic != mem.Boolean || rhsType.Basic != mem.Boolean {
			return nil, Type{}, errTypef("found %s %s %s, expected bool %s bool",
				lhsType, n.Op, rhsType, n.Op)
		}
		if n.Op == expr.OpAnd {
			return &And{Left: lhs, Right: rhs}, BitVecType(), nil
		}
		return &Or{Left: lhs, Right: rhs}, BitVecType(), nil

	default:
		return nil, Type{}, errNotImplementedf("operator %s", n.Op)
	}
}

// compileComparison builds a vector-vs-scalar comparison. When the
// left operand is encoded, the scalar constant is encoded into the
// left operand's code space so the comparison runs entirely on
// encoded data, avoiding a bulk decode of the column.
func compileComparison(n *expr.Binop, lhs Op, lhsType Type, rhs Op, rhsType Type, equals bool) (Op, Type, error) {
	if lhsType.IsScalar() || !rhsType.IsScalar() {
		return nil, Type{}, errNotImplementedf("%s operator only implemented for column %s constant", n.Op, n.Op)
	}
	if lhsType.IsEncoded() {
		if lhsType.Basic == mem.String {
			rhs = &EncodeStrConst{Inner: rhs, Codec: lhsType.Codec}
		} else {
			rhs = &EncodeIntConst{Inner: rhs, Codec: lhsType.Codec}
		}
	}
	if equals {
		return &EqualsVS{EncType: lhsType.EncodingType(), Left: lhs, Right: rhs}, BitVecType(), nil
	}
	return &LessThanVS{EncType: lhsType.EncodingType(), Left: lhs, Right: rhs}, BitVecType(), nil
}

// OrderPreserving guarantees that sorting the compiled plan's
// output orders by logical value: a plan whose codec does not
// preserve ordering is wrapped in an explicit decode, everything
// else passes through unchanged. This is the single enforcement
// point for sort correctness under encoding.
func OrderPreserving(op Op, t Type) (Op, Type) {
	if t.IsOrderPreserving() {
		return op, t
	}
	return &DecodeWith{Inner: op, Codec: t.Codec}, t.Decoded()
}
