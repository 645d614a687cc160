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

// packed is a width-tagged array of small non-negative codes.
// The width is chosen once at construction and never changes;
// widening after construction is deliberately unsupported.
type packed struct {
	width EncodingType
	u8    []uint8
	u16   []uint16
	u32   []uint32
}

// packedWidth returns the narrowest encoding that can hold
// codes in [0, max]. Callers guarantee max < 1<<32.
func packedWidth(max int64) EncodingType {
	switch {
	case max < 1<<8:
		return U8
	case max < 1<<16:
		return U16
	default:
		return U32
	}
}

func newPacked(width EncodingType, n int) packed {
	p := packed{width: width}
	switch width {
	case U8:
		p.u8 = make([]uint8, 0, n)
	case U16:
		p.u16 = make([]uint16, 0, n)
	default:
		p.u32 = make([]uint32, 0, n)
	}
	return p
}

func (p *packed) push(v int64) {
	switch p.width {
	case U8:
		p.u8 = append(p.u8, uint8(v))
	case U16:
		p.u16 = append(p.u16, uint16(v))
	default:
		p.u32 = append(p.u32, uint32(v))
	}
}

func (p *packed) at(i int) int64 {
	switch p.width {
	case U8:
		return int64(p.u8[i])
	case U16:
		return int64(p.u16[i])
	default:
		return int64(p.u32[i])
	}
}

func (p *packed) len() int {
	switch p.width {
	case U8:
		return len(p.u8)
	case U16:
		return len(p.u16)
	default:
		return len(p.u32)
	}
}

// vec returns the raw backing slice ([]uint8, []uint16 or []uint32).
func (p *packed) vec() any {
	switch p.width {
	case U8:
		return p.u8
	case U16:
		return p.u16
	default:
		return p.u32
	}
}

func (p *packed) heapSize() int {
	switch p.width {
	case U8:
		return cap(p.u8)
	case U16:
		return 2 * cap(p.u16)
	default:
		return 4 * cap(p.u32)
	}
}
