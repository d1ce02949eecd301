// Package cursor implements a position-tracking reader over an in-memory byte
// buffer, used by the container parsers.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrExhausted is returned when a read goes past the end of the buffer.
var ErrExhausted = errors.New("cursor exhausted")

// Cursor reads fixed-width values from a byte buffer. It is stateful and not
// safe for concurrent use; give every parse its own Cursor.
type Cursor struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// New returns a big-endian cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf, order: binary.BigEndian}
}

// SetOrder switches the byte order used by the multi-byte pops.
func (c *Cursor) SetOrder(order binary.ByteOrder) {
	c.order = order
}

// Order returns the current byte order.
func (c *Cursor) Order() binary.ByteOrder {
	return c.order
}

// Pos returns the current offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// Exhausted reports whether every byte has been consumed.
func (c *Cursor) Exhausted() bool {
	return c.pos >= len(c.buf)
}

func (c *Cursor) need(n int) error {
	if n < 0 || c.Len() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, %d left", ErrExhausted, n, c.pos, c.Len())
	}
	return nil
}

// Peek returns the next byte without consuming it.
func (c *Cursor) Peek() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	return c.buf[c.pos], nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Bytes returns the next n bytes. The returned slice aliases the buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Rest returns every unread byte and exhausts the cursor.
func (c *Cursor) Rest() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

// Tag reads a 4-byte chunk identifier.
func (c *Cursor) Tag() (string, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// U16 reads a 16-bit value in the current byte order.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

// U24 reads a 24-bit value in the current byte order.
func (c *Cursor) U24() (uint32, error) {
	b, err := c.Bytes(3)
	if err != nil {
		return 0, err
	}
	if c.order == binary.LittleEndian {
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// U32 reads a 32-bit value in the current byte order.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

// VarLen reads a big-endian base-128 value: every byte contributes its low
// seven bits and a set top bit means another byte follows.
func (c *Cursor) VarLen() (uint32, error) {
	var v uint32
	for {
		b, err := c.U8()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}
