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
	"fmt"
	"testing"

	"github.com/dropbox/ruba/value"
)

func TestDictStringsRoundTrip(t *testing.T) {
	in := []value.Value{
		value.String("red"),
		value.Null(),
		value.String("green"),
		value.String("red"),
		value.Null(),
		value.String("blue"),
	}
	d, err := NewDictStrings(in, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Cardinality() != 4 { // red, null, green, blue
		t.Errorf("Cardinality() = %d, want 4", d.Cardinality())
	}
	if d.Len() != len(in) {
		t.Errorf("Len() = %d, want %d", d.Len(), len(in))
	}
	it := d.Iter()
	for i := range in {
		v, ok := it.Next()
		if !ok {
			t.Fatalf("iterator stopped at row %d", i)
		}
		if v != in[i] {
			t.Errorf("row %d: got %#v, want %#v", i, v, in[i])
		}
	}
	if _, ok := it.Next(); ok {
		t.Error("iterator produced extra values")
	}
}

func TestDictStringsCodecProperties(t *testing.T) {
	d, err := NewDictStrings([]value.Value{
		value.String("b"), value.String("a"), value.String("b"),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.OrderPreserving() {
		t.Error("first-occurrence codes must not be order-preserving")
	}
	if d.SummationPreserving() {
		t.Error("string codes must not be summation-preserving")
	}
	min, max, ok := d.EncodingRange()
	if !ok || min != 0 || max != 1 {
		t.Errorf("EncodingRange() = (%d, %d, %v), want (0, 1, true)", min, max, ok)
	}
	if d.EncodingType() != U8 {
		t.Errorf("EncodingType() = %s, want %s", d.EncodingType(), U8)
	}

	code, ok := d.EncodeStr("a")
	if !ok || code != 1 {
		t.Errorf(`EncodeStr("a") = (%d, %v), want (1, true)`, code, ok)
	}
	code, ok = d.EncodeStr("missing")
	if ok || code != -1 {
		t.Errorf(`EncodeStr("missing") = (%d, %v), want (-1, false)`, code, ok)
	}
	if _, err := d.EncodeInt(7); err == nil {
		t.Error("EncodeInt on a string dictionary must fail")
	}
}

func TestDictStringsWidens(t *testing.T) {
	vals := make([]value.Value, 300)
	for i := range vals {
		vals[i] = value.String(fmt.Sprintf("v%03d", i))
	}
	d, err := NewDictStrings(vals, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if d.EncodingType() != U16 {
		t.Errorf("300 distinct values: EncodingType() = %s, want %s", d.EncodingType(), U16)
	}
	dec, err := d.DecodeVec(d.EncodedVec())
	if err != nil {
		t.Fatal(err)
	}
	strs, ok := dec.([]string)
	if !ok {
		t.Fatalf("DecodeVec returned %T, want []string", dec)
	}
	for i := range vals {
		if strs[i] != vals[i].Str {
			t.Errorf("row %d: got %q, want %q", i, strs[i], vals[i].Str)
		}
	}
}

func TestDictStringsCeiling(t *testing.T) {
	vals := []value.Value{
		value.String("a"), value.String("b"), value.String("c"),
	}
	if _, err := NewDictStrings(vals, 2); err == nil {
		t.Fatal("expected an error above the cardinality ceiling")
	}
	if _, err := NewDictStrings(vals, 3); err != nil {
		t.Fatalf("cardinality exactly at the ceiling must succeed: %s", err)
	}
}

func TestDictStringsDecodeRejectsBadCode(t *testing.T) {
	d, err := NewDictStrings([]value.Value{value.String("only")}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.DecodeVec([]int64{5}); err == nil {
		t.Fatal("expected an error decoding an out-of-range code")
	}
}

func TestBuildStringsFallsBackToPacking(t *testing.T) {
	vals := []value.Value{
		value.String("a"), value.String("b"), value.String("c"), value.String("d"),
	}
	data, err := BuildStrings(vals, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := data.(*StringPacker); !ok {
		t.Fatalf("got %T, want a byte-packed fallback", data)
	}
	data, err = BuildStrings(vals, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := data.(*DictStrings); !ok {
		t.Fatalf("got %T, want a dictionary", data)
	}
}
