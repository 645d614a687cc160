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

// Package xsv ingests CSV and TSV files into in-memory columns.
package xsv

import (
	"encoding/csv"
	"io"
)

// Chopper splits an input stream into records of raw text fields.
type Chopper interface {
	// GetNext returns the fields of the next record, or io.EOF
	// when the input is exhausted. The returned slice may be
	// reused by the next call.
	GetNext(r io.Reader) ([]string, error)
}

// CsvChopper reads an RFC 4180 CSV stream record by record. Due to
// quoting a single record may span multiple lines of text.
type CsvChopper struct {
	// SkipRecords skips the first N records of the stream.
	SkipRecords int
	// Separator overrides the field separator (defaults to comma).
	Separator rune

	r      io.Reader
	cr     *csv.Reader
	recNr  int
}

func (c *CsvChopper) GetNext(r io.Reader) ([]string, error) {
	c.init(r)
	for {
		fields, err := c.cr.Read()
		if err != nil {
			return nil, err
		}
		c.recNr++
		if c.recNr > c.SkipRecords {
			return fields, nil
		}
	}
}

func (c *CsvChopper) init(r io.Reader) {
	if c.r != r {
		c.r = r
		c.recNr = 0
		c.cr = csv.NewReader(c.r)
		c.cr.FieldsPerRecord = -1
		c.cr.ReuseRecord = true
		c.cr.LazyQuotes = true
		if c.Separator != 0 {
			c.cr.Comma = c.Separator
		}
	}
}
