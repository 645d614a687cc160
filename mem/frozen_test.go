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

	"github.com/dropbox/ruba/compr"
	"github.com/dropbox/ruba/value"
)

func iterAll(data ColumnData) []value.Value {
	var out []value.Value
	it := data.Iter()
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestFreezeThawRoundTrip(t *testing.T) {
	packer, err := PackStrings([]value.Value{
		value.String("alpha"), value.Null(), value.String("beta"),
	})
	if err != nil {
		t.Fatal(err)
	}
	dict, err := NewDictStrings([]value.Value{
		value.String("x"), value.Null(), value.String("y"), value.String("x"),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	columns := []*Column{
		NewColumn("packed", packer),
		NewColumn("dict", dict),
		NewColumn("plain", BuildInts([]int64{0, 1 << 40, 7})),
		NewColumn("offset", BuildInts([]int64{100, 107, 103})),
	}

	for _, algo := range []string{"lz4", "snappy", "s2", "zstd", "zstd-better"} {
		comp := compr.Compression(algo)
		if comp == nil {
			t.Fatalf("unknown algorithm %q", algo)
		}
		for _, col := range columns {
			f, err := Freeze(col, comp)
			if err != nil {
				t.Fatalf("%s/%s: freeze: %s", algo, col.Name(), err)
			}
			thawed, err := Thaw(f)
			if err != nil {
				t.Fatalf("%s/%s: thaw: %s", algo, col.Name(), err)
			}
			if thawed.Name() != col.Name() {
				t.Errorf("%s/%s: thawed name %q", algo, col.Name(), thawed.Name())
			}
			want := iterAll(col.Data())
			got := iterAll(thawed.Data())
			if len(got) != len(want) {
				t.Fatalf("%s/%s: thawed %d rows, want %d", algo, col.Name(), len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("%s/%s: row %d: got %#v, want %#v", algo, col.Name(), i, got[i], want[i])
				}
			}
		}
	}
}

func TestThawPreservesCodec(t *testing.T) {
	dict, err := NewDictStrings([]value.Value{
		value.String("a"), value.String("b"),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	f, err := Freeze(NewColumn("c", dict), compr.Compression("lz4"))
	if err != nil {
		t.Fatal(err)
	}
	thawed, err := Thaw(f)
	if err != nil {
		t.Fatal(err)
	}
	codec := thawed.Codec()
	if codec == nil {
		t.Fatal("thawed dictionary column lost its codec")
	}
	code, ok := codec.EncodeStr("b")
	if !ok || code != 1 {
		t.Errorf(`thawed EncodeStr("b") = (%d, %v), want (1, true)`, code, ok)
	}
}

func TestThawRejectsUnknownAlgo(t *testing.T) {
	_, err := Thaw(&FrozenColumn{Name: "c", Algo: "bogus"})
	if err == nil {
		t.Fatal("expected an error for an unknown compression name")
	}
}
