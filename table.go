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

package ruba

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dropbox/ruba/compr"
	"github.com/dropbox/ruba/mem"
)

// Table is an immutable snapshot of named columns with equal row
// counts. Queries borrow its columns read-only, so concurrent
// queries against the same table need no locking.
type Table struct {
	name    string
	columns map[string]*mem.Column
	rows    int
}

// NewTable builds a table from columns, rejecting duplicate names
// and mismatched row counts.
func NewTable(name string, cols []*mem.Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s: no columns", name)
	}
	t := &Table{
		name:    name,
		columns: make(map[string]*mem.Column, len(cols)),
		rows:    cols[0].Data().Len(),
	}
	for _, c := range cols {
		if _, dup := t.columns[c.Name()]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, c.Name())
		}
		if n := c.Data().Len(); n != t.rows {
			return nil, fmt.Errorf("table %s: column %q has %d rows, expected %d", name, c.Name(), n, t.rows)
		}
		t.columns[c.Name()] = c
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Columns returns the name-to-column mapping consumed by the plan
// compiler. Callers must not modify the returned map.
func (t *Table) Columns() map[string]*mem.Column { return t.columns }

// TableStats summarizes a table's size.
type TableStats struct {
	Name     string   `json:"name"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns"`
	HeapSize int      `json:"heapSize"`
}

// Stats computes the table's row count and heap footprint.
func (t *Table) Stats() TableStats {
	names := maps.Keys(t.columns)
	slices.Sort(names)
	heap := 0
	for _, c := range t.columns {
		heap += c.Data().HeapSize()
	}
	return TableStats{
		Name:     t.name,
		Rows:     t.rows,
		Columns:  names,
		HeapSize: heap,
	}
}

// Freeze serializes and compresses every column of the table for a
// persistent-storage backend.
func (t *Table) Freeze(comp compr.Compressor) ([]*mem.FrozenColumn, error) {
	names := maps.Keys(t.columns)
	slices.Sort(names)
	frozen := make([]*mem.FrozenColumn, 0, len(names))
	for _, name := range names {
		f, err := mem.Freeze(t.columns[name], comp)
		if err != nil {
			return nil, err
		}
		frozen = append(frozen, f)
	}
	return frozen, nil
}

// ThawTable rebuilds a table from frozen columns.
func ThawTable(name string, frozen []*mem.FrozenColumn) (*Table, error) {
	cols := make([]*mem.Column, 0, len(frozen))
	for _, f := range frozen {
		c, err := mem.Thaw(f)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return NewTable(name, cols)
}
