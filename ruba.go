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

// Package ruba is an in-process analytical query engine over
// column-oriented, possibly-encoded in-memory data. The engine
// holds immutable table snapshots and runs queries through a
// compile, lower, execute pipeline (see the plan and vm packages).
package ruba

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/dropbox/ruba/compr"
	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/xsv"
)

// Ruba is an engine instance: a set of named table snapshots plus
// configuration. Tables may be added and queried concurrently; a
// query only ever reads the snapshot it resolved at start.
type Ruba struct {
	opts *Options
	log  *log.Logger

	lock   sync.RWMutex
	tables map[string]*Table
}

// New returns an engine with the given options (nil means
// defaults). Log output is discarded unless lg is set.
func New(opts *Options, lg *log.Logger) *Ruba {
	if opts == nil {
		opts = DefaultOptions()
	}
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	return &Ruba{
		opts:   opts,
		log:    lg,
		tables: make(map[string]*Table),
	}
}

// AddTable registers a table snapshot, replacing any previous
// snapshot under the same name.
func (r *Ruba) AddTable(t *Table) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tables[t.Name()] = t
}

// Table resolves a table snapshot by name.
func (r *Ruba) Table(name string) (*Table, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// LoadCSV ingests a CSV/TSV stream as a new table. A nil loader
// means headered CSV with the engine's dictionary ceiling.
func (r *Ruba) LoadCSV(name string, src io.Reader, l *xsv.Loader) error {
	if l == nil {
		l = &xsv.Loader{HasHeader: true}
	}
	if l.Ceiling == 0 {
		l.Ceiling = r.opts.DictCeiling
	}
	cols, err := l.Load(src)
	if err != nil {
		return fmt.Errorf("loading table %s: %w", name, err)
	}
	t, err := NewTable(name, cols)
	if err != nil {
		return err
	}
	r.AddTable(t)
	r.log.Printf("loaded table %s: %d rows, %d columns", name, t.Rows(), len(cols))
	return nil
}

// Stats returns per-table statistics for every registered table.
func (r *Ruba) Stats() []TableStats {
	r.lock.RLock()
	defer r.lock.RUnlock()
	stats := make([]TableStats, 0, len(r.tables))
	for _, t := range r.tables {
		stats = append(stats, t.Stats())
	}
	return stats
}

// FreezeTable snapshots a table into compressed frozen columns
// using the configured compression algorithm.
func (r *Ruba) FreezeTable(name string) ([]*mem.FrozenColumn, error) {
	t, err := r.Table(name)
	if err != nil {
		return nil, err
	}
	return t.Freeze(compr.Compression(r.opts.Compression))
}

// RestoreTable registers a table rebuilt from frozen columns.
func (r *Ruba) RestoreTable(name string, frozen []*mem.FrozenColumn) error {
	t, err := ThawTable(name, frozen)
	if err != nil {
		return err
	}
	r.AddTable(t)
	return nil
}
