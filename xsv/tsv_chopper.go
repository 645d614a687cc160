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
	"bufio"
	"io"
	"strings"
)

// TsvChopper reads a TSV stream line by line. TSV has no quoting;
// tabs, newlines and backslashes inside a field are escaped with
// backslash sequences instead, so one record is always one line.
type TsvChopper struct {
	// SkipRecords skips the first N records of the stream.
	SkipRecords int

	r      io.Reader
	s      *bufio.Scanner
	recNr  int
	fields []string
}

func (c *TsvChopper) GetNext(r io.Reader) ([]string, error) {
	c.init(r)
	for {
		if !c.s.Scan() {
			if err := c.s.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		c.recNr++
		if c.recNr > c.SkipRecords {
			break
		}
	}
	line := c.s.Text()
	c.fields = c.fields[:0]
	for _, f := range strings.Split(line, "\t") {
		if strings.IndexByte(f, '\\') >= 0 {
			f = unescapeTsv(f)
		}
		c.fields = append(c.fields, f)
	}
	return c.fields, nil
}

func (c *TsvChopper) init(r io.Reader) {
	if c.r != r {
		c.r = r
		c.recNr = 0
		c.s = bufio.NewScanner(c.r)
	}
}

func unescapeTsv(f string) string {
	var sb strings.Builder
	sb.Grow(len(f))
	for i := 0; i < len(f); i++ {
		if f[i] != '\\' || i+1 == len(f) {
			sb.WriteByte(f[i])
			continue
		}
		switch f[i+1] {
		case '\\':
			sb.WriteByte('\\')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(f[i])
			continue
		}
		i++
	}
	return sb.String()
}
