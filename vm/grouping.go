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
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"

	"github.com/dropbox/ruba/value"
)

// Unique collects, in ascending order, the distinct grouping keys
// present in its input. It is the dense-grouping variant, valid
// only when the key range [0, MaxCard] is small enough for a
// presence table.
type Unique struct {
	In, Out BufferRef
	MaxCard int64
}

func (op *Unique) Exec(s *Scratchpad) error {
	seen := make([]bool, op.MaxCard+1)
	err := eachInt(s.Get(op.In), func(_ int, k int64) error {
		if k < 0 || k > op.MaxCard {
			return fmt.Errorf("grouping key %d outside [0, %d]", k, op.MaxCard)
		}
		seen[k] = true
		return nil
	})
	if err != nil {
		return err
	}
	out := []int64{}
	for k := range seen {
		if seen[k] {
			out = append(out, int64(k))
		}
	}
	s.Set(op.Out, out)
	return nil
}

func (op *Unique) String() string {
	return fmt.Sprintf("%d <- unique %d max=%d", op.Out, op.In, op.MaxCard)
}

// grouping table hash keys; fixed arbitrary constants
const (
	sipK0 = 0x7f9d0a7303a67e93
	sipK1 = 0x95b94f79f9f92b4d
)

// groupTable is a siphash-keyed open-addressing table mapping
// sparse 64-bit grouping keys to dense group ids.
type groupTable struct {
	keys []int64
	ids  []int32
	mask uint64
}

func newGroupTable(n int) *groupTable {
	size := 16
	for size < n*2 {
		size *= 2
	}
	t := &groupTable{
		keys: make([]int64, size),
		ids:  make([]int32, size),
		mask: uint64(size - 1),
	}
	for i := range t.ids {
		t.ids[i] = -1
	}
	return t
}

// lookup returns the dense id for key, inserting nextID if the key
// is new. The second return reports whether the key was inserted.
func (t *groupTable) lookup(key int64, nextID int32) (int32, bool) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	slot := siphash.Hash(sipK0, sipK1, b[:]) & t.mask
	for {
		if t.ids[slot] < 0 {
			t.keys[slot] = key
			t.ids[slot] = nextID
			return nextID, true
		}
		if t.keys[slot] == key {
			return t.ids[slot], false
		}
		slot = (slot + 1) & t.mask
	}
}

// HashGrouping maps arbitrary 64-bit grouping keys to dense group
// ids. It is the variant used when the key range is unknown or too
// large for a presence table. It writes three buffers: the distinct
// keys in first-seen order, a per-row dense group id vector, and
// the scalar cardinality.
type HashGrouping struct {
	In        BufferRef
	UniqueOut BufferRef
	IdxOut    BufferRef
	CardOut   BufferRef
}

func (op *HashGrouping) Exec(s *Scratchpad) error {
	in := s.Get(op.In)
	n := vecLen(in)
	tbl := newGroupTable(n)
	gidx := make([]uint32, 0, n)
	unique := []int64{}
	err := eachInt(in, func(_ int, k int64) error {
		id, inserted := tbl.lookup(k, int32(len(unique)))
		if inserted {
			unique = append(unique, k)
		}
		gidx = append(gidx, uint32(id))
		return nil
	})
	if err != nil {
		return err
	}
	s.Set(op.UniqueOut, unique)
	s.Set(op.IdxOut, gidx)
	s.Set(op.CardOut, value.Int64(int64(len(unique))))
	return nil
}

func (op *HashGrouping) String() string {
	return fmt.Sprintf("%d,%d,%d <- hash_grouping %d", op.UniqueOut, op.IdxOut, op.CardOut, op.In)
}

// Count counts rows per grouping key. With a Card buffer the
// grouping input holds dense group ids sized by the materialized
// cardinality; without one it holds raw keys bounded by MaxIndex.
type Count struct {
	Grouping BufferRef
	Out      BufferRef
	MaxIndex int64
	Card     BufferRef
}

func (op *Count) Exec(s *Scratchpad) error {
	size := op.MaxIndex + 1
	if op.Card != NoBuffer {
		size = s.Scalar(op.Card).Int
	}
	counts := make([]int64, size)
	err := eachInt(s.Get(op.Grouping), func(_ int, k int64) error {
		if k < 0 || k >= size {
			return fmt.Errorf("grouping key %d outside [0, %d)", k, size)
		}
		counts[k]++
		return nil
	})
	if err != nil {
		return err
	}
	s.Set(op.Out, counts)
	return nil
}

func (op *Count) String() string {
	return fmt.Sprintf("%d <- count %d", op.Out, op.Grouping)
}

// Sum sums an integer vector per grouping key. The value vector
// must hold decoded values or codes of a summation-preserving
// encoding; aggregation lowering guarantees this.
type Sum struct {
	Values   BufferRef
	Grouping BufferRef
	Out      BufferRef
	MaxIndex int64
	Card     BufferRef
}

func (op *Sum) Exec(s *Scratchpad) error {
	size := op.MaxIndex + 1
	if op.Card != NoBuffer {
		size = s.Scalar(op.Card).Int
	}
	vals, err := asI64(s.Get(op.Values))
	if err != nil {
		return err
	}
	grouping := s.Get(op.Grouping)
	if n := vecLen(grouping); n != len(vals) {
		return fmt.Errorf("sum value length %d does not match grouping length %d", len(vals), n)
	}
	sums := make([]int64, size)
	err = eachInt(grouping, func(i int, k int64) error {
		if k < 0 || k >= size {
			return fmt.Errorf("grouping key %d outside [0, %d)", k, size)
		}
		sums[k] += vals[i]
		return nil
	})
	if err != nil {
		return err
	}
	s.Set(op.Out, sums)
	return nil
}

func (op *Sum) String() string {
	return fmt.Sprintf("%d <- sum %d by %d", op.Out, op.Values, op.Grouping)
}
