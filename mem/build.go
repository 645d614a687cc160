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

	"github.com/dropbox/ruba/value"
)

// BuildInts builds an integer column, narrowing to an offset
// encoding when the value range fits in 32 bits or less.
func BuildInts(vals []int64) ColumnData {
	if len(vals) == 0 {
		return &intData{}
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	// offset encoding only pays when it narrows the representation
	if spread := uint64(max) - uint64(min); spread < 1<<32 {
		return newOffsetInts(vals, min, max)
	}
	cp := make([]int64, len(vals))
	copy(cp, vals)
	return &intData{vals: cp, min: min, max: max}
}

// BuildStrings builds a string column: dictionary-encoded when the
// distinct-value count (null included) stays within ceiling,
// byte-packed otherwise. The density/decode-speed trade is governed
// purely by cardinality relative to row count.
func BuildStrings(vals []value.Value, ceiling int) (ColumnData, error) {
	if ceiling <= 0 {
		ceiling = MaxUniqueStrings
	}
	distinct := make(map[value.Value]struct{}, 64)
	for i := range vals {
		distinct[vals[i]] = struct{}{}
		if len(distinct) > ceiling {
			return PackStrings(vals)
		}
	}
	return NewDictStrings(vals, ceiling)
}

// BuildColumn infers the column representation from the values:
// all-integer input becomes an integer column, otherwise the input
// must be strings and nulls.
func BuildColumn(name string, vals []value.Value, ceiling int) (*Column, error) {
	ints := true
	for i := range vals {
		if vals[i].Kind != value.KindInt {
			ints = false
			break
		}
	}
	var (
		data ColumnData
		err  error
	)
	if ints && len(vals) > 0 {
		raw := make([]int64, len(vals))
		for i := range vals {
			raw[i] = vals[i].Int
		}
		data = BuildInts(raw)
	} else {
		data, err = BuildStrings(vals, ceiling)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
	}
	return NewColumn(name, data), nil
}
