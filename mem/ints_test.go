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

import (
	"testing"

	"golang.org/x/exp/slices"

	"github.com/dropbox/ruba/value"
)

func iterInts(t *testing.T, data ColumnData) []int64 {
	t.Helper()
	var out []int64
	it := data.Iter()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if v.Kind != value.KindInt {
			t.Fatalf("iterator produced %s, expected an int", v.Kind)
		}
		out = append(out, v.Int)
	}
	return out
}

func TestBuildIntsNarrows(t *testing.T) {
	in := []int64{1000, 1003, 1001, 1255}
	data := BuildInts(in)
	c, ok := data.(*offsetInts)
	if !ok {
		t.Fatalf("got %T, want an offset encoding", data)
	}
	if c.EncodingType() != U8 {
		t.Errorf("spread 255: EncodingType() = %s, want %s", c.EncodingType(), U8)
	}
	if got := iterInts(t, c); !slices.Equal(got, in) {
		t.Errorf("iterated %v, want %v", got, in)
	}
	min, max, ok := c.Range()
	if !ok || min != 1000 || max != 1255 {
		t.Errorf("Range() = (%d, %d, %v), want (1000, 1255, true)", min, max, ok)
	}
}

func TestBuildIntsKeepsWideValues(t *testing.T) {
	in := []int64{0, 1 << 40}
	data := BuildInts(in)
	c, ok := data.(*intData)
	if !ok {
		t.Fatalf("got %T, want plain int64 storage", data)
	}
	if got := iterInts(t, c); !slices.Equal(got, in) {
		t.Errorf("iterated %v, want %v", got, in)
	}
}

func TestOffsetIntsCodec(t *testing.T) {
	c := newOffsetInts([]int64{100, 105, 103}, 100, 105)
	if !c.OrderPreserving() {
		t.Error("offset codes must be order-preserving")
	}
	if c.SummationPreserving() {
		t.Error("a nonzero offset must not be summation-preserving")
	}
	min, max, ok := c.EncodingRange()
	if !ok || min != 0 || max != 5 {
		t.Errorf("EncodingRange() = (%d, %d, %v), want (0, 5, true)", min, max, ok)
	}

	code, err := c.EncodeInt(103)
	if err != nil || code != 3 {
		t.Errorf("EncodeInt(103) = (%d, %v), want (3, nil)", code, err)
	}
	// constants outside the stored range encode to codes outside
	// the code range; comparisons run in 64-bit space so they
	// still select the right rows
	code, err = c.EncodeInt(7)
	if err != nil || code != -93 {
		t.Errorf("EncodeInt(7) = (%d, %v), want (-93, nil)", code, err)
	}

	dec, err := c.DecodeVec(c.EncodedVec())
	if err != nil {
		t.Fatal(err)
	}
	if got := dec.([]int64); !slices.Equal(got, []int64{100, 105, 103}) {
		t.Errorf("DecodeVec = %v", got)
	}
}

func TestZeroOffsetPreservesSummation(t *testing.T) {
	c := newOffsetInts([]int64{0, 3, 1}, 0, 3)
	if !c.SummationPreserving() {
		t.Error("a zero offset stores values verbatim and must preserve summation")
	}
}

func TestBuildColumnInference(t *testing.T) {
	ints, err := BuildColumn("n", []value.Value{value.Int64(1), value.Int64(2)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ints.Data().BasicType() != Integer {
		t.Errorf("all-int input built a %s column", ints.Data().BasicType())
	}
	strs, err := BuildColumn("s", []value.Value{value.String("x"), value.Null()}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if strs.Data().BasicType() != String {
		t.Errorf("string input built a %s column", strs.Data().BasicType())
	}
}
