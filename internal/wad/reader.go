package wad

import (
	"encoding/binary"
)

// reader is a little-endian cursor over the container bytes. The first
// failed read is kept in err and turns every later read into a no-op, so a
// table can be read in one go and checked once.
type reader struct {
	data    []byte
	off     int
	section string
	err     error
}

func (r *reader) enter(section string) { r.section = section }

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.data)-r.off {
		r.err = truncated(r.section, r.off, n, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) skip(n int) { r.take(n) }

func (r *reader) readU8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) readU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) readU32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// readCount reads a row count and checks that count*rowSize bytes remain.
func (r *reader) readCount(rowSize int) int {
	n := int(r.readU32())
	if r.err != nil {
		return 0
	}
	if rowSize > 0 && n > (len(r.data)-r.off)/rowSize {
		r.err = truncated(r.section, r.off, n*rowSize, len(r.data)-r.off)
		return 0
	}
	return n
}

// readBlob reads a u32 size followed by that many bytes.
func (r *reader) readBlob() []byte {
	return r.take(r.readCount(1))
}

func (r *reader) readName(size int) string {
	b := r.take(size)
	if b == nil {
		return ""
	}
	return decodeName(b)
}
