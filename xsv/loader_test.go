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

package xsv

import (
	"strings"
	"testing"

	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
)

func TestLoadCSV(t *testing.T) {
	src := strings.NewReader("age,name\n10,a\n20,b\n10,a\n30,c\n20,b\n")
	l := &Loader{HasHeader: true}
	cols, err := l.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 {
		t.Fatalf("got %d columns", len(cols))
	}
	age, name := cols[0], cols[1]
	if age.Name() != "age" || name.Name() != "name" {
		t.Errorf("column names %q, %q", age.Name(), name.Name())
	}
	if age.Data().BasicType() != mem.Integer {
		t.Errorf("age inferred as %s", age.Data().BasicType())
	}
	if name.Data().BasicType() != mem.String {
		t.Errorf("name inferred as %s", name.Data().BasicType())
	}
	if age.Data().Len() != 5 {
		t.Errorf("age has %d rows", age.Data().Len())
	}

	it := age.Data().Iter()
	want := []int64{10, 20, 10, 30, 20}
	for i := range want {
		v, ok := it.Next()
		if !ok || v.Int != want[i] {
			t.Fatalf("age row %d: got %#v, want %d", i, v, want[i])
		}
	}
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	cols, err := (&Loader{}).Load(strings.NewReader("1,x\n2,y\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cols[0].Name() != "0" || cols[1].Name() != "1" {
		t.Errorf("positional names %q, %q", cols[0].Name(), cols[1].Name())
	}
}

func TestLoadMixedColumnDegradesToStrings(t *testing.T) {
	cols, err := (&Loader{}).Load(strings.NewReader("1\nhello\n3\n"))
	if err != nil {
		t.Fatal(err)
	}
	data := cols[0].Data()
	if data.BasicType() != mem.String {
		t.Fatalf("mixed column inferred as %s", data.BasicType())
	}
	it := data.Iter()
	want := []string{"1", "hello", "3"}
	for i := range want {
		v, ok := it.Next()
		if !ok || v.Str != want[i] {
			t.Fatalf("row %d: got %#v, want %q", i, v, want[i])
		}
	}
}

func TestLoadEmptyFieldsAreNull(t *testing.T) {
	cols, err := (&Loader{}).Load(strings.NewReader("a,1\n,2\nb,3\n"))
	if err != nil {
		t.Fatal(err)
	}
	it := cols[0].Data().Iter()
	want := []value.Value{value.String("a"), value.Null(), value.String("b")}
	for i := range want {
		v, ok := it.Next()
		if !ok || v != want[i] {
			t.Fatalf("row %d: got %#v, want %#v", i, v, want[i])
		}
	}
}

func TestLoadRaggedRecords(t *testing.T) {
	if _, err := (&Loader{}).Load(strings.NewReader("1,2\n3\n")); err == nil {
		t.Fatal("ragged records must fail")
	}
}

func TestLoadTSVEscapes(t *testing.T) {
	src := strings.NewReader("k\tv\nwith\\ttab\tline\\nbreak\n")
	l := &Loader{Chopper: &TsvChopper{}, HasHeader: true}
	cols, err := l.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	it := cols[0].Data().Iter()
	v, ok := it.Next()
	if !ok || v.Str != "with\ttab" {
		t.Errorf("got %#v, want the unescaped tab", v)
	}
	it = cols[1].Data().Iter()
	v, ok = it.Next()
	if !ok || v.Str != "line\nbreak" {
		t.Errorf("got %#v, want the unescaped newline", v)
	}
}

func TestLoadEmptyInput(t *testing.T) {
	if _, err := (&Loader{}).Load(strings.NewReader("")); err == nil {
		t.Fatal("empty input must fail")
	}
}
