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

// Package vm implements the vectorized interpreter: typed buffers
// addressed by stable handles, row-selection filters, and the
// staged executor that runs vector operators in order.
//
// Buffers hold one of a closed set of vector shapes, dispatched at
// runtime: []int64, []uint8, []uint16, []uint32 (encoded codes and
// indices), []string, []bool, or a single scalar value.Value.
package vm

import (
	"fmt"

	"github.com/dropbox/ruba/value"
)

// BufferRef is a stable handle to one buffer slot in a Scratchpad.
// Handles are allocated monotonically during plan lowering. Once an
// operator has written a slot, the slot's logical value never
// changes for the rest of the execution, with one exception: the
// boolean and/or operators mutate their left operand's buffer in
// place and return its handle (see Boolean).
type BufferRef int

// NoBuffer is the absent-buffer sentinel for optional operands.
const NoBuffer BufferRef = -1

// Scratchpad is one execution's flat array of buffer slots, sized
// to the number of BufferRefs allocated during lowering. It is
// owned exclusively by one QueryExecutor.Run invocation.
type Scratchpad struct {
	slots []any
}

func newScratchpad(n int) *Scratchpad {
	return &Scratchpad{slots: make([]any, n)}
}

// Set stores v in the slot addressed by ref.
func (s *Scratchpad) Set(ref BufferRef, v any) {
	s.slots[ref] = v
}

// Get returns the raw slot contents.
func (s *Scratchpad) Get(ref BufferRef) any {
	return s.slots[ref]
}

// Bools returns the slot as a boolean vector. A shape mismatch is
// a lowering bug, not a user error, and panics accordingly.
func (s *Scratchpad) Bools(ref BufferRef) []bool {
	v, ok := s.slots[ref].([]bool)
	if !ok {
		panic(fmt.Sprintf("buffer %d holds %T, expected []bool", ref, s.slots[ref]))
	}
	return v
}

// I64 returns the slot as an int64 vector.
func (s *Scratchpad) I64(ref BufferRef) []int64 {
	v, ok := s.slots[ref].([]int64)
	if !ok {
		panic(fmt.Sprintf("buffer %d holds %T, expected []int64", ref, s.slots[ref]))
	}
	return v
}

// U32 returns the slot as an index vector.
func (s *Scratchpad) U32(ref BufferRef) []uint32 {
	v, ok := s.slots[ref].([]uint32)
	if !ok {
		panic(fmt.Sprintf("buffer %d holds %T, expected []uint32", ref, s.slots[ref]))
	}
	return v
}

// Strs returns the slot as a string vector.
func (s *Scratchpad) Strs(ref BufferRef) []string {
	v, ok := s.slots[ref].([]string)
	if !ok {
		panic(fmt.Sprintf("buffer %d holds %T, expected []string", ref, s.slots[ref]))
	}
	return v
}

// Scalar returns the slot as a single constant.
func (s *Scratchpad) Scalar(ref BufferRef) value.Value {
	v, ok := s.slots[ref].(value.Value)
	if !ok {
		panic(fmt.Sprintf("buffer %d holds %T, expected a scalar", ref, s.slots[ref]))
	}
	return v
}

// vecLen returns the row count of any vector shape.
func vecLen(v any) int {
	switch v := v.(type) {
	case []int64:
		return len(v)
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []string:
		return len(v)
	case []bool:
		return len(v)
	default:
		panic(fmt.Sprintf("not a vector: %T", v))
	}
}

// eachInt visits every element of an integer-shaped vector as int64.
func eachInt(v any, fn func(i int, k int64) error) error {
	switch v := v.(type) {
	case []int64:
		for i := range v {
			if err := fn(i, v[i]); err != nil {
				return err
			}
		}
	case []uint8:
		for i := range v {
			if err := fn(i, int64(v[i])); err != nil {
				return err
			}
		}
	case []uint16:
		for i := range v {
			if err := fn(i, int64(v[i])); err != nil {
				return err
			}
		}
	case []uint32:
		for i := range v {
			if err := fn(i, int64(v[i])); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("not an integer vector: %T", v)
	}
	return nil
}

// asI64 widens any integer-shaped vector to []int64.
// []int64 input is returned as-is (buffers are read-only).
func asI64(v any) ([]int64, error) {
	if out, ok := v.([]int64); ok {
		return out, nil
	}
	out := make([]int64, vecLen(v))
	err := eachInt(v, func(i int, k int64) error {
		out[i] = k
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// gather picks the idx-selected elements of v, preserving the
// element type of v. idx may be any integer-shaped vector.
func gather(v any, idx any) (any, error) {
	switch v := v.(type) {
	case []int64:
		return gatherInto(v, idx)
	case []uint8:
		return gatherInto(v, idx)
	case []uint16:
		return gatherInto(v, idx)
	case []uint32:
		return gatherInto(v, idx)
	case []string:
		return gatherInto(v, idx)
	case []bool:
		return gatherInto(v, idx)
	default:
		return nil, fmt.Errorf("cannot gather from %T", v)
	}
}

func gatherInto[T any](src []T, idx any) ([]T, error) {
	out := make([]T, 0, vecLen(idx))
	err := eachInt(idx, func(_ int, k int64) error {
		if k < 0 || k >= int64(len(src)) {
			return fmt.Errorf("gather index %d out of range [0, %d)", k, len(src))
		}
		out = append(out, src[k])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
