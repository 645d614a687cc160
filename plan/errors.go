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

import "fmt"

// TypeError is returned when operand logical types do not match an
// operator's required signature. It is raised at compile time,
// before any execution.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string {
	return "type error: " + e.Msg
}

// NotImplementedError is returned for syntactically valid but
// currently unsupported constructs: non-scalar right-hand
// comparison operands, more than two grouping columns, grouping
// keys that do not fit 64 bits, and unrecognized expression shapes.
type NotImplementedError struct {
	Msg string
}

func (e *NotImplementedError) Error() string {
	return "not implemented: " + e.Msg
}

// ParseError wraps a failure from the external parser collaborator.
// The compiler never generates one; the facade only forwards it.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Msg
}

func errTypef(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

func errNotImplementedf(format string, args ...any) error {
	return &NotImplementedError{Msg: fmt.Sprintf(format, args...)}
}
