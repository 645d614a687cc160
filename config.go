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

	"sigs.k8s.io/yaml"

	"github.com/dropbox/ruba/compr"
	"github.com/dropbox/ruba/mem"
)

// Options configures an engine instance.
type Options struct {
	// DictCeiling bounds the distinct-value count above which
	// string columns fall back to byte-packed storage.
	DictCeiling int `json:"dictCeiling"`
	// Compression names the algorithm used to freeze columns
	// (lz4, snappy, s2, zstd, zstd-better).
	Compression string `json:"compression"`
	// DenseGroupingLimit is the largest statically-known grouping
	// key for which aggregation uses a direct-indexed table
	// instead of a hash table.
	DenseGroupingLimit int64 `json:"denseGroupingLimit"`
}

// DefaultOptions returns the built-in configuration.
func DefaultOptions() *Options {
	return &Options{
		DictCeiling:        mem.MaxUniqueStrings,
		Compression:        "lz4",
		DenseGroupingLimit: 1 << 16,
	}
}

// LoadOptions parses a YAML configuration, filling unset fields
// with defaults.
func LoadOptions(buf []byte) (*Options, error) {
	opts := &Options{}
	if err := yaml.Unmarshal(buf, opts); err != nil {
		return nil, fmt.Errorf("parsing options: %w", err)
	}
	def := DefaultOptions()
	if opts.DictCeiling == 0 {
		opts.DictCeiling = def.DictCeiling
	}
	if opts.Compression == "" {
		opts.Compression = def.Compression
	}
	if opts.DenseGroupingLimit == 0 {
		opts.DenseGroupingLimit = def.DenseGroupingLimit
	}
	if compr.Compression(opts.Compression) == nil {
		return nil, fmt.Errorf("unknown compression %q", opts.Compression)
	}
	return opts, nil
}
