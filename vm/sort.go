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

	"golang.org/x/exp/slices"
)

// SortIndices computes the permutation that orders its input
// vector. The input must hold decoded values of an order-preserving
// representation; the compiler's order-preserving rewrite
// guarantees this for encoded columns.
type SortIndices struct {
	In, Out    BufferRef
	Descending bool
}

func (op *SortIndices) Exec(s *Scratchpad) error {
	in := s.Get(op.In)
	idx := make([]uint32, vecLen(in))
	for i := range idx {
		idx[i] = uint32(i)
	}
	switch v := in.(type) {
	case []int64:
		sortBy(idx, v, op.Descending)
	case []string:
		sortBy(idx, v, op.Descending)
	case []uint8:
		sortBy(idx, v, op.Descending)
	case []uint16:
		sortBy(idx, v, op.Descending)
	case []uint32:
		sortBy(idx, v, op.Descending)
	default:
		return fmt.Errorf("cannot sort %T", in)
	}
	s.Set(op.Out, idx)
	return nil
}

func sortBy[T int64 | uint8 | uint16 | uint32 | string](idx []uint32, vals []T, desc bool) {
	slices.SortStableFunc(idx, func(a, b uint32) bool {
		if desc {
			return vals[b] < vals[a]
		}
		return vals[a] < vals[b]
	})
}

func (op *SortIndices) String() string {
	return fmt.Sprintf("%d <- sort_indices %d desc=%v", op.Out, op.In, op.Descending)
}

// Gather reorders (or selects from) a vector by an index vector,
// preserving the element type. It applies a sort permutation to
// the remaining output columns, and compacts dense aggregate
// arrays down to the present grouping keys.
type Gather struct {
	In      BufferRef
	Indices BufferRef
	Out     BufferRef
}

func (op *Gather) Exec(s *Scratchpad) error {
	out, err := gather(s.Get(op.In), s.Get(op.Indices))
	if err != nil {
		return err
	}
	s.Set(op.Out, out)
	return nil
}

func (op *Gather) String() string {
	return fmt.Sprintf("%d <- gather %d by %d", op.Out, op.In, op.Indices)
}
