package record

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors for structural decode failures. The root package
// re-exports these for callers.
var (
	// ErrSignature is returned when a record signature does not match the
	// expected constant.
	ErrSignature = errors.New("ziparc: unexpected record signature")

	// ErrTruncated is returned when a declared length exceeds the
	// remaining bytes in the buffer.
	ErrTruncated = errors.New("ziparc: truncated buffer")
)

// Cursor reads little-endian fields from an in-memory buffer.
//
// Every read either advances the cursor or fails without advancing it;
// a failed Cursor can be handed to another decode attempt.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of buf.
// The cursor aliases buf; callers must not modify it during decoding.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// Uint16 reads a little-endian 16-bit field.
func (c *Cursor) Uint16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, fmt.Errorf("read u16 at %d: %w", c.off, ErrTruncated)
	}
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// Uint32 reads a little-endian 32-bit field.
func (c *Cursor) Uint32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, fmt.Errorf("read u32 at %d: %w", c.off, ErrTruncated)
	}
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// Bytes reads exactly n bytes. The returned slice aliases the underlying
// buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, c.off, ErrTruncated)
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// PeekUint32 reads a little-endian 32-bit field without advancing.
func (c *Cursor) PeekUint32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, fmt.Errorf("peek u32 at %d: %w", c.off, ErrTruncated)
	}
	return binary.LittleEndian.Uint32(c.buf[c.off:]), nil
}

// Expect reads a 32-bit signature and fails unless it equals want.
// The cursor does not advance on mismatch.
func (c *Cursor) Expect(want uint32) error {
	got, err := c.PeekUint32()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("got %#08x at %d, want %#08x: %w", got, c.off, want, ErrSignature)
	}
	c.off += 4
	return nil
}
