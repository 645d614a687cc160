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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dropbox/ruba/compr"
	"github.com/dropbox/ruba/value"
)

// FrozenColumn is a column serialized to a compact binary payload
// and compressed with one of the compr algorithms. It is the unit
// handed to (and received from) a persistent-storage backend.
type FrozenColumn struct {
	Name string `json:"name"`
	Algo string `json:"algo"`
	Size int    `json:"size"` // uncompressed payload size
	Data []byte `json:"data"`
}

const (
	frozenPacker = uint8(iota + 1)
	frozenDict
	frozenInts
	frozenOffset
)

// Freeze serializes and compresses c.
func Freeze(c *Column, comp compr.Compressor) (*FrozenColumn, error) {
	var buf bytes.Buffer
	switch d := c.Data().(type) {
	case *StringPacker:
		buf.WriteByte(frozenPacker)
		putU32(&buf, uint32(d.n))
		putBytes(&buf, d.data)
	case *DictStrings:
		buf.WriteByte(frozenDict)
		putU32(&buf, uint32(len(d.mapping)))
		for i := range d.mapping {
			if d.mapping[i].IsNull() {
				buf.WriteByte(0)
				continue
			}
			buf.WriteByte(1)
			putBytes(&buf, []byte(d.mapping[i].Str))
		}
		putPacked(&buf, &d.codes)
	case *intData:
		buf.WriteByte(frozenInts)
		putU32(&buf, uint32(len(d.vals)))
		binary.Write(&buf, binary.LittleEndian, d.vals)
	case *offsetInts:
		buf.WriteByte(frozenOffset)
		binary.Write(&buf, binary.LittleEndian, d.min)
		binary.Write(&buf, binary.LittleEndian, d.max)
		putPacked(&buf, &d.codes)
	default:
		return nil, fmt.Errorf("column %s: cannot freeze %T", c.Name(), d)
	}
	payload := buf.Bytes()
	return &FrozenColumn{
		Name: c.Name(),
		Algo: comp.Name(),
		Size: len(payload),
		Data: comp.Compress(payload, nil),
	}, nil
}

// Thaw decompresses and deserializes f back into a column
// equivalent to the one that was frozen.
func Thaw(f *FrozenColumn) (*Column, error) {
	dec := compr.Decompression(f.Algo)
	if dec == nil {
		return nil, fmt.Errorf("column %s: unknown compression %q", f.Name, f.Algo)
	}
	payload := make([]byte, f.Size)
	if err := dec.Decompress(f.Data, payload); err != nil {
		return nil, fmt.Errorf("column %s: %w", f.Name, err)
	}
	r := bytes.NewReader(payload)
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("column %s: truncated payload", f.Name)
	}
	var data ColumnData
	switch tag {
	case frozenPacker:
		n, err := getU32(r)
		if err != nil {
			return nil, err
		}
		raw, err := getBytes(r)
		if err != nil {
			return nil, err
		}
		data = &StringPacker{data: raw, n: int(n)}
	case frozenDict:
		nmap, err := getU32(r)
		if err != nil {
			return nil, err
		}
		d := &DictStrings{reverse: make(map[string]int64, nmap), nullAt: -1}
		for i := uint32(0); i < nmap; i++ {
			kind, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			if kind == 0 {
				d.hasNull = true
				d.nullAt = int64(len(d.mapping))
				d.mapping = append(d.mapping, value.Null())
				continue
			}
			raw, err := getBytes(r)
			if err != nil {
				return nil, err
			}
			d.reverse[string(raw)] = int64(len(d.mapping))
			d.mapping = append(d.mapping, value.String(string(raw)))
		}
		if err := getPacked(r, &d.codes); err != nil {
			return nil, err
		}
		data = d
	case frozenInts:
		n, err := getU32(r)
		if err != nil {
			return nil, err
		}
		vals := make([]int64, n)
		if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
			return nil, err
		}
		c := &intData{vals: vals}
		if len(vals) > 0 {
			c.min, c.max = vals[0], vals[0]
			for _, v := range vals[1:] {
				if v < c.min {
					c.min = v
				}
				if v > c.max {
					c.max = v
				}
			}
		}
		data = c
	case frozenOffset:
		c := &offsetInts{}
		if err := binary.Read(r, binary.LittleEndian, &c.min); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &c.max); err != nil {
			return nil, err
		}
		if err := getPacked(r, &c.codes); err != nil {
			return nil, err
		}
		data = c
	default:
		return nil, fmt.Errorf("column %s: unknown payload tag %d", f.Name, tag)
	}
	return NewColumn(f.Name, data), nil
}

func putU32(buf *bytes.Buffer, v uint32) {
	binary.Write(buf, binary.LittleEndian, v)
}

func getU32(r *bytes.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func putBytes(buf *bytes.Buffer, b []byte) {
	putU32(buf, uint32(len(b)))
	buf.Write(b)
}

func getBytes(r *bytes.Reader) ([]byte, error) {
	n, err := getU32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func putPacked(buf *bytes.Buffer, p *packed) {
	buf.WriteByte(uint8(p.width))
	putU32(buf, uint32(p.len()))
	binary.Write(buf, binary.LittleEndian, p.vec())
}

func getPacked(r *bytes.Reader, p *packed) error {
	w, err := r.ReadByte()
	if err != nil {
		return err
	}
	p.width = EncodingType(w)
	n, err := getU32(r)
	if err != nil {
		return err
	}
	switch p.width {
	case U8:
		p.u8 = make([]uint8, n)
		return binary.Read(r, binary.LittleEndian, p.u8)
	case U16:
		p.u16 = make([]uint16, n)
		return binary.Read(r, binary.LittleEndian, p.u16)
	case U32:
		p.u32 = make([]uint32, n)
		return binary.Read(r, binary.LittleEndian, p.u32)
	default:
		return fmt.Errorf("bad packed width tag %d", w)
	}
}
