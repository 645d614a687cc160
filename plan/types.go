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

	"github.com/dropbox/ruba/mem"
)

// Type describes the value produced by a compiled plan: its
// logical basic type, the codec of its representation (nil when
// the representation is the decoded form), whether it is a scalar
// constant rather than a vector, and whether downstream operators
// may mutate its buffer. The compiler consults Type, never the
// storage layer directly, when deciding where to insert encode and
// decode steps.
type Type struct {
	Basic   mem.BasicType
	Codec   mem.Codec
	Scalar  bool
	Mutable bool
}

// NewType pairs a basic type with the codec of its current
// representation (nil for the decoded form).
func NewType(basic mem.BasicType, codec mem.Codec) Type {
	return Type{Basic: basic, Codec: codec}
}

// ScalarType is the type of a constant of basic type b.
func ScalarType(basic mem.BasicType) Type {
	return Type{Basic: basic, Scalar: true}
}

// BitVecType is the type of a freshly computed boolean vector,
// which is always mutable (the and/or operators combine into it
// in place).
func BitVecType() Type {
	return Type{Basic: mem.Boolean, Mutable: true}
}

// EncodingType is the physical encoding of the current, possibly
// encoded, form.
func (t Type) EncodingType() mem.EncodingType {
	if t.Codec != nil {
		return t.Codec.EncodingType()
	}
	return t.Basic.EncodingType()
}

// Decoded strips the codec, yielding the logical type's natural
// representation.
func (t Type) Decoded() Type {
	t.Codec = nil
	return t
}

// IsEncoded reports whether the representation is encoded.
func (t Type) IsEncoded() bool { return t.Codec != nil }

// IsScalar reports whether the value is a constant.
func (t Type) IsScalar() bool { return t.Scalar }

// IsOrderPreserving reports whether comparing the representation
// orders the same way as comparing decoded values.
func (t Type) IsOrderPreserving() bool {
	return t.Codec == nil || t.Codec.OrderPreserving()
}

// IsSummationPreserving reports whether summing the representation
// is consistent with summing decoded values.
func (t Type) IsSummationPreserving() bool {
	return t.Codec == nil || t.Codec.SummationPreserving()
}

func (t Type) String() string {
	s := t.Basic.String()
	if t.Codec != nil {
		s = fmt.Sprintf("%s[encoded %s]", s, t.Codec.EncodingType())
	}
	if t.Scalar {
		s += "(scalar)"
	}
	return s
}
