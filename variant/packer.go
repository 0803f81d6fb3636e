package variant

import (
	"encoding/binary"
	"fmt"
)

// Packer accumulates the binary form of a value. All integers are little-endian.
type Packer struct {
	buf []byte
}

// NewPacker returns an empty Packer.
func NewPacker() *Packer {
	return &Packer{buf: make([]byte, 0, 128)}
}

func (p *Packer) U8(v uint8) { p.buf = append(p.buf, v) }

func (p *Packer) U16(v uint16) { p.buf = binary.LittleEndian.AppendUint16(p.buf, v) }

func (p *Packer) U32(v uint32) { p.buf = binary.LittleEndian.AppendUint32(p.buf, v) }

func (p *Packer) U64(v uint64) { p.buf = binary.LittleEndian.AppendUint64(p.buf, v) }

func (p *Packer) Bool(v bool) {
	if v {
		p.U8(1)
		return
	}
	p.U8(0)
}

// Raw appends b without a length prefix. Used for fixed-size fields.
func (p *Packer) Raw(b []byte) { p.buf = append(p.buf, b...) }

// Bytes16 appends b prefixed with its length as a uint16.
func (p *Packer) Bytes16(b []byte) {
	p.U16(uint16(len(b)))
	p.Raw(b)
}

// Bytes returns the packed data.
func (p *Packer) Bytes() []byte { return p.buf }

// Unpacker reads values written by a Packer. The first error is kept and
// every later read becomes a no-op returning the zero value, so callers
// read a whole structure and check Err once.
type Unpacker struct {
	buf []byte
	off int
	err error
}

// NewUnpacker returns an Unpacker over b.
func NewUnpacker(b []byte) *Unpacker {
	return &Unpacker{buf: b}
}

func (u *Unpacker) take(n int, what string) []byte {
	if u.err != nil {
		return nil
	}
	if n < 0 || len(u.buf)-u.off < n {
		u.err = fmt.Errorf("%w: reading %s at offset %d", ErrShortBuffer, what, u.off)
		return nil
	}
	b := u.buf[u.off : u.off+n]
	u.off += n
	return b
}

func (u *Unpacker) U8() uint8 {
	b := u.take(1, "u8")
	if b == nil {
		return 0
	}
	return b[0]
}

func (u *Unpacker) U16() uint16 {
	b := u.take(2, "u16")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (u *Unpacker) U32() uint32 {
	b := u.take(4, "u32")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (u *Unpacker) U64() uint64 {
	b := u.take(8, "u64")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Bool reads a single byte; any value other than 0 or 1 is an error.
func (u *Unpacker) Bool() bool {
	v := u.U8()
	if v > 1 && u.err == nil {
		u.err = fmt.Errorf("%w: bool byte %d at offset %d", ErrMalformed, v, u.off-1)
	}
	return v == 1
}

// Raw copies len(dst) bytes into dst.
func (u *Unpacker) Raw(dst []byte) {
	if b := u.take(len(dst), "fixed bytes"); b != nil {
		copy(dst, b)
	}
}

// Bytes16 reads a uint16 length prefix followed by that many bytes.
func (u *Unpacker) Bytes16() []byte {
	n := u.U16()
	b := u.take(int(n), "length-prefixed bytes")
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Fail records err unless an earlier error is already held.
func (u *Unpacker) Fail(err error) {
	if u.err == nil {
		u.err = err
	}
}

// Err returns the first error encountered.
func (u *Unpacker) Err() error { return u.err }

// Remaining returns the number of unread bytes.
func (u *Unpacker) Remaining() int { return len(u.buf) - u.off }

// Done returns Err, or ErrTrailingBytes if input remains.
func (u *Unpacker) Done() error {
	if u.err != nil {
		return u.err
	}
	if r := u.Remaining(); r != 0 {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, r)
	}
	return nil
}
