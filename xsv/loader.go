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
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/value"
)

// Loader turns chopped records into columns.
type Loader struct {
	// Chopper splits the input into records. Defaults to a
	// CsvChopper when nil.
	Chopper Chopper
	// HasHeader takes column names from the first record.
	// Otherwise columns are named by position ("0", "1", ...).
	HasHeader bool
	// Ceiling bounds the dictionary size of string columns
	// (0 means the storage layer default).
	Ceiling int
}

// Load reads the whole stream and builds one column per field. An
// empty field becomes a null; a field parsing as a signed 64-bit
// decimal integer becomes an integer. A column holding both
// integers and other text falls back to string storage, with the
// integers kept as their original text.
func (l *Loader) Load(r io.Reader) ([]*mem.Column, error) {
	ch := l.Chopper
	if ch == nil {
		ch = &CsvChopper{}
	}

	var (
		names []string
		cols  [][]value.Value
		rows  int
	)
	for {
		fields, err := ch.GetNext(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if names == nil {
			names = columnNames(fields, l.HasHeader)
			cols = make([][]value.Value, len(names))
			if l.HasHeader {
				continue
			}
		}
		if len(fields) != len(names) {
			return nil, fmt.Errorf("record %d has %d fields, expected %d", rows+1, len(fields), len(names))
		}
		for i, f := range fields {
			cols[i] = append(cols[i], parseField(f))
		}
		rows++
	}
	if names == nil {
		return nil, errors.New("empty input")
	}

	out := make([]*mem.Column, len(names))
	for i := range names {
		// mixed integer/text columns degrade to strings
		vals := cols[i]
		if !allInts(vals) {
			for j := range vals {
				if vals[j].Kind == value.KindInt {
					vals[j] = value.String(strconv.FormatInt(vals[j].Int, 10))
				}
			}
		}
		c, err := mem.BuildColumn(names[i], vals, l.Ceiling)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func columnNames(first []string, hasHeader bool) []string {
	names := make([]string, len(first))
	for i := range first {
		if hasHeader {
			names[i] = first[i]
		} else {
			names[i] = strconv.Itoa(i)
		}
	}
	return names
}

func parseField(f string) value.Value {
	if f == "" {
		return value.Null()
	}
	if v, err := strconv.ParseInt(f, 10, 64); err == nil {
		return value.Int64(v)
	}
	return value.String(f)
}

// allInts reports whether the column can use integer storage,
// which holds neither nulls nor text.
func allInts(vals []value.Value) bool {
	for i := range vals {
		if vals[i].Kind != value.KindInt {
			return false
		}
	}
	return len(vals) > 0
}
