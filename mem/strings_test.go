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

	"github.com/dropbox/ruba/value"
)

func iterStrings(t *testing.T, data ColumnData) []string {
	t.Helper()
	var out []string
	it := data.Iter()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if v.Kind != value.KindStr {
			t.Fatalf("iterator produced %s, expected a string", v.Kind)
		}
		out = append(out, v.Str)
	}
	return out
}

func TestStringPackerRoundTrip(t *testing.T) {
	in := []string{"hello", "", "world", "a", "longer string with spaces", "a"}
	sp := &StringPacker{}
	for _, s := range in {
		if err := sp.Push(s); err != nil {
			t.Fatalf("push %q: %s", s, err)
		}
	}
	if sp.Len() != len(in) {
		t.Errorf("Len() = %d, want %d", sp.Len(), len(in))
	}
	got := iterStrings(t, sp)
	if len(got) != len(in) {
		t.Fatalf("iterated %d values, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("row %d: got %q, want %q", i, got[i], in[i])
		}
	}

	// a fresh iterator starts over at the first value
	again := iterStrings(t, sp)
	for i := range in {
		if again[i] != in[i] {
			t.Errorf("second pass row %d: got %q, want %q", i, again[i], in[i])
		}
	}
}

func TestStringPackerRejectsZeroByte(t *testing.T) {
	sp := &StringPacker{}
	if err := sp.Push("a\x00b"); err == nil {
		t.Fatal("expected an error for an embedded zero byte")
	}
	if sp.Len() != 0 {
		t.Errorf("rejected push still counted: Len() = %d", sp.Len())
	}
}

func TestPackStringsNullsBecomeEmpty(t *testing.T) {
	sp, err := PackStrings([]value.Value{
		value.String("x"),
		value.Null(),
		value.String("y"),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := iterStrings(t, sp)
	want := []string{"x", "", "y"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPackStringsRejectsInts(t *testing.T) {
	_, err := PackStrings([]value.Value{value.Int64(1)})
	if err == nil {
		t.Fatal("expected an error packing an integer value")
	}
}
