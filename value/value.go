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

// Package value defines the tagged literal value type shared by
// the expression AST, the columnar storage layer, and query results.
package value

import (
	"fmt"
	"strconv"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// KindNull is the zero Kind, so the zero Value is null.
	KindNull Kind = iota
	KindInt
	KindStr
)

// Value is a tagged literal: null, a 64-bit integer, or a string.
// Values are comparable with ==.
type Value struct {
	Kind Kind
	Int  int64
	Str  string
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int64 returns an integer Value.
func Int64(v int64) Value { return Value{Kind: KindInt, Int: v} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindStr, Str: s} }

// IsNull returns whether v is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Format renders v the way it would appear in query output.
func (v Value) Format() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindStr:
		return strconv.Quote(v.Str)
	default:
		return "null"
	}
}

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindStr:
		return "string"
	default:
		return "null"
	}
}

// GoString implements fmt.GoStringer for test output.
func (v Value) GoString() string {
	return fmt.Sprintf("value.Value(%s)", v.Format())
}
