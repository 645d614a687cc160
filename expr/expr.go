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

// Package expr defines the expression AST consumed by the query
// compiler. The AST is produced by an external parser (or built
// directly by embedding callers); this package only describes it.
package expr

import (
	"fmt"

	"github.com/dropbox/ruba/value"
)

// Node is one node in an expression tree.
type Node interface {
	fmt.Stringer
	isNode()
}

// Ident is a reference to a column by name.
type Ident struct {
	Name string
}

// Constant is a literal value.
type Constant struct {
	Value value.Value
}

// BinopKind selects the operation of a Binop.
type BinopKind uint8

const (
	// OpLess is the < comparison.
	OpLess BinopKind = iota
	// OpEquals is the = comparison.
	OpEquals
	// OpAnd is boolean conjunction.
	OpAnd
	// OpOr is boolean disjunction.
	OpOr
)

// Binop is a binary operation applied to two sub-expressions.
type Binop struct {
	Op          BinopKind
	Left, Right Node
}

func (*Ident) isNode()    {}
func (*Constant) isNode() {}
func (*Binop) isNode()    {}

func (i *Ident) String() string { return i.Name }

func (c *Constant) String() string { return c.Value.Format() }

func (k BinopKind) String() string {
	switch k {
	case OpLess:
		return "<"
	case OpEquals:
		return "="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return fmt.Sprintf("BinopKind(%d)", int(k))
	}
}

func (b *Binop) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Column is shorthand for &Ident{Name: name}.
func Column(name string) *Ident { return &Ident{Name: name} }

// Int is shorthand for an integer Constant.
func Int(v int64) *Constant { return &Constant{Value: value.Int64(v)} }

// Str is shorthand for a string Constant.
func Str(s string) *Constant { return &Constant{Value: value.String(s)} }

// Less builds lhs < rhs.
func Less(lhs, rhs Node) *Binop { return &Binop{Op: OpLess, Left: lhs, Right: rhs} }

// Equals builds lhs = rhs.
func Equals(lhs, rhs Node) *Binop { return &Binop{Op: OpEquals, Left: lhs, Right: rhs} }

// And builds lhs AND rhs.
func And(lhs, rhs Node) *Binop { return &Binop{Op: OpAnd, Left: lhs, Right: rhs} }

// Or builds lhs OR rhs.
func Or(lhs, rhs Node) *Binop { return &Binop{Op: OpOr, Left: lhs, Right: rhs} }
