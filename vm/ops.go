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

package vm

import (
	"fmt"

	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
)

// Constant writes a scalar literal into its output buffer.
type Constant struct {
	Val value.Value
	Out BufferRef
}

func (op *Constant) Exec(s *Scratchpad) error {
	s.Set(op.Out, op.Val)
	return nil
}

func (op *Constant) String() string {
	return fmt.Sprintf("%d <- constant %s", op.Out, op.Val.Format())
}

// DecodeWith decodes a vector of codes through a column codec.
type DecodeWith struct {
	In    BufferRef
	Out   BufferRef
	Codec mem.Codec
}

func (op *DecodeWith) Exec(s *Scratchpad) error {
	out, err := op.Codec.DecodeVec(s.Get(op.In))
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *DecodeWith) String() string {
	return fmt.Sprintf("%d <- decode %d", op.Out, op.In)
}

// TypeConversion converts an integer vector between physical
// encodings (widening to I64 or narrowing to a code width).
type TypeConversion struct {
	In, Out  BufferRef
	From, To mem.EncodingType
}

func (op *TypeConversion) Exec(s *Scratchpad) error {
	in := s.Get(op.In)
	switch op.To {
	case mem.I64:
		out, err := asI64(in)
		if err != nil {
			return err
		}
		s.Set(op.Out, out)
		return nil
	case mem.U8:
		return narrow[uint8](s, in, op.Out)
	case mem.U16:
		return narrow[uint16](s, in, op.Out)
	case mem.U32:
		return narrow[uint32](s, in, op.Out)
	default:
		return fmt.Errorf("unsupported conversion %s -> %s", op.From, op.To)
	}
}

func narrow[T uint8 | uint16 | uint32](s *Scratchpad, in any, out BufferRef) error {
	v := make([]T, vecLen(in))
	err := eachInt(in, func(i int, k int64) error {
		v[i] = T(k)
		return nil
	})
	if err != nil {
		return err
	}
	s.Set(out, v)
	return nil
}

func (op *TypeConversion) String() string {
	return fmt.Sprintf("%d <- convert %d (%s -> %s)", op.Out, op.In, op.From, op.To)
}

// EncodeIntConst maps a scalar integer constant into a codec's
// code space so the comparison it feeds can run on encoded data.
type EncodeIntConst struct {
	In    BufferRef
	Out   BufferRef
	Codec mem.Codec
}

func (op *EncodeIntConst) Exec(s *Scratchpad) error {
	c := s.Scalar(op.In)
	code, err := op.Codec.EncodeInt(c.Int)
	if err != nil {
		return err
	}
	s.Set(op.Out, value.Int64(code))
	return nil
}

func (op *EncodeIntConst) String() string {
	return fmt.Sprintf("%d <- encode_int_const %d", op.Out, op.In)
}

// EncodeStrConst maps a scalar string constant into a dictionary's
// code space. A constant absent from the dictionary becomes the
// code -1, which matches no stored row.
type EncodeStrConst struct {
	In    BufferRef
	Out   BufferRef
	Codec mem.Codec
}

func (op *EncodeStrConst) Exec(s *Scratchpad) error {
	c := s.Scalar(op.In)
	code, _ := op.Codec.EncodeStr(c.Str)
	s.Set(op.Out, value.Int64(code))
	return nil
}

func (op *EncodeStrConst) String() string {
	return fmt.Sprintf("%d <- encode_str_const %d", op.Out, op.In)
}

// LessThanVS compares an integer vector against a scalar constant.
// Codes are compared in 64-bit space, so encoded constants that
// fall outside the code range still compare correctly.
type LessThanVS struct {
	In    BufferRef
	Const BufferRef
	Out   BufferRef
}

func (op *LessThanVS) Exec(s *Scratchpad) error {
	c := s.Scalar(op.Const)
	if c.Kind != value.KindInt {
		return fmt.Errorf("less-than constant is %s, expected int", c.Kind)
	}
	in := s.Get(op.In)
	out := make([]bool, vecLen(in))
	err := eachInt(in, func(i int, k int64) error {
		out[i] = k < c.Int
		return nil
	})
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *LessThanVS) String() string {
	return fmt.Sprintf("%d <- less_than_vs %d %d", op.Out, op.In, op.Const)
}

// EqualsVS compares a vector against a scalar constant. Integer
// vectors (including encoded code vectors) compare against integer
// constants; string vectors compare against string constants.
type EqualsVS struct {
	In    BufferRef
	Const BufferRef
	Out   BufferRef
}

func (op *EqualsVS) Exec(s *Scratchpad) error {
	c := s.Scalar(op.Const)
	in := s.Get(op.In)
	if strs, ok := in.([]string); ok {
		if c.Kind != value.KindStr {
			return fmt.Errorf("equals constant is %s, expected string", c.Kind)
		}
		out := make([]bool, len(strs))
		for i := range strs {
			out[i] = strs[i] == c.Str
		}
		s.Set(op.Out, out)
		return nil
	}
	if c.Kind != value.KindInt {
		return fmt.Errorf("equals constant is %s, expected int", c.Kind)
	}
	out := make([]bool, vecLen(in))
	err := eachInt(in, func(i int, k int64) error {
		out[i] = k == c.Int
		return nil
	})
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *EqualsVS) String() string {
	return fmt.Sprintf("%d <- equals_vs %d %d", op.Out, op.In, op.Const)
}

// Boolean combines two boolean vectors. It mutates the left
// operand's buffer in place and leaves the result there: this is
// the single sanctioned exception to the write-a-fresh-buffer
// rule, and it holds for exactly these two operators.
type Boolean struct {
	Lhs, Rhs BufferRef
	Or       bool
}

func (op *Boolean) Exec(s *Scratchpad) error {
	l := s.Bools(op.Lhs)
	r := s.Bools(op.Rhs)
	if len(l) != len(r) {
		return fmt.Errorf("boolean operand lengths differ: %d vs %d", len(l), len(r))
	}
	if op.Or {
		for i := range l {
			l[i] = l[i] || r[i]
		}
	} else {
		for i := range l {
			l[i] = l[i] && r[i]
		}
	}
	return nil
}

func (op *Boolean) String() string {
	if op.Or {
		return fmt.Sprintf("%d <- or %d %d (in place)", op.Lhs, op.Lhs, op.Rhs)
	}
	return fmt.Sprintf("%d <- and %d %d (in place)", op.Lhs, op.Lhs, op.Rhs)
}

// BitShiftLeftAdd packs a second grouping column on top of an
// already-packed key: out = lhs + (rhs << shift).
type BitShiftLeftAdd struct {
	Lhs, Rhs BufferRef
	Out      BufferRef
	Shift    int
}

func (op *BitShiftLeftAdd) Exec(s *Scratchpad) error {
	l, err := asI64(s.Get(op.Lhs))
	if err != nil {
		return err
	}
	r, err := asI64(s.Get(op.Rhs))
	if err != nil {
		return err
	}
	if len(l) != len(r) {
		return fmt.Errorf("bit-pack operand lengths differ: %d vs %d", len(l), len(r))
	}
	out := make([]int64, len(l))
	for i := range l {
		out[i] = l[i] + (r[i] << op.Shift)
	}
	s.Set(op.Out, out)
	return nil
}

func (op *BitShiftLeftAdd) String() string {
	return fmt.Sprintf("%d <- bit_shift_left_add %d %d shift=%d", op.Out, op.Lhs, op.Rhs, op.Shift)
}

// BitUnpack extracts one column's field from a packed grouping
// key: out = (in >> shift) & mask(width).
type BitUnpack struct {
	In, Out BufferRef
	Shift   uint8
	Width   uint8
}

func (op *BitUnpack) Exec(s *Scratchpad) error {
	in, err := asI64(s.Get(op.In))
	if err != nil {
		return err
	}
	mask := int64(1)<<op.Width - 1
	out := make([]int64, len(in))
	for i := range in {
		out[i] = (in[i] >> op.Shift) & mask
	}
	s.Set(op.Out, out)
	return nil
}

func (op *BitUnpack) String() string {
	return fmt.Sprintf("%d <- bit_unpack %d shift=%d width=%d", op.Out, op.In, op.Shift, op.Width)
}
