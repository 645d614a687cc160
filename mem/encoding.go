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

// BasicType is the logical type of a column or expression,
// independent of how it is physically encoded.
type BasicType uint8

const (
	Integer BasicType = iota
	String
	Boolean
)

func (b BasicType) String() string {
	switch b {
	case Integer:
		return "Integer"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	default:
		return "BasicType(?)"
	}
}

// EncodingType identifies the physical representation a buffer
// or column holds. It is distinct from the logical BasicType:
// a dictionary-encoded string column holds U16 codes.
type EncodingType uint8

const (
	U8 EncodingType = iota
	U16
	U32
	I64
	Str
	BitVec
)

func (e EncodingType) String() string {
	switch e {
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	case I64:
		return "I64"
	case Str:
		return "Str"
	case BitVec:
		return "BitVec"
	default:
		return "EncodingType(?)"
	}
}

// EncodingType returns the natural physical encoding of
// decoded values of type b.
func (b BasicType) EncodingType() EncodingType {
	switch b {
	case Integer:
		return I64
	case String:
		return Str
	default:
		return BitVec
	}
}
