// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"io"
)

const bufferGrowThreshold = 256

// Buffer is a bytes.Buffer-like struct whose storage is carved from an
// Arena. It implements io.Writer, io.Reader, io.ReaderFrom and
// io.WriterTo. When the buffer outgrows its current region it carves a
// fresh, larger one and abandons the old region inside the arena; the
// arena never reclaims it. A Buffer therefore cannot grow past the
// arena's chunk capacity, and writes that would require growth panic
// once the arena has been leaked.
type Buffer struct {
	arena   *Arena
	buf     []byte // written-but-unread bytes, backed by arena memory
	readBuf []byte // intermediate buffer for ReadFrom
}

// NewBuffer creates an empty Buffer backed by the given arena.
// If a is nil, the buffer falls back to standard Go allocation.
func NewBuffer(a *Arena) *Buffer {
	return &Buffer{arena: a}
}

// grow makes room for n more bytes.
func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	newCap := cap(b.buf)
	if newCap == 0 {
		newCap = n
	}
	for newCap < need {
		if newCap < bufferGrowThreshold {
			newCap *= 2
		} else {
			newCap += newCap / 4
		}
	}
	var s []byte
	if b.arena != nil {
		s = b.arena.AllocateBytes(newCap)
	} else {
		s = make([]byte, newCap)
	}
	b.buf = s[:copy(s, b.buf)]
}

// Write implements io.Writer. It appends len(p) bytes from p to the
// buffer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.grow(1)
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends a string to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	if len(s) == 0 {
		return 0, nil
	}
	b.grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// WriteTo implements io.WriterTo. It writes the unread portion of the
// buffer to w, consuming what was written.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if len(b.buf) == 0 {
		return 0, nil
	}
	m, err := w.Write(b.buf)
	if m > 0 {
		n += int64(m)
		copy(b.buf, b.buf[m:])
		b.buf = b.buf[:len(b.buf)-m]
	}
	return n, err
}

// Read reads up to len(p) bytes from the buffer into p.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n = copy(p, b.buf)
	if n < len(p) {
		err = io.EOF
	}
	copy(b.buf, b.buf[n:])
	b.buf = b.buf[:len(b.buf)-n]
	return n, err
}

// ReadByte reads and returns the next byte from the buffer.
func (b *Buffer) ReadByte() (byte, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	c := b.buf[0]
	copy(b.buf, b.buf[1:])
	b.buf = b.buf[:len(b.buf)-1]
	return c, nil
}

// Bytes returns a slice of length b.Len() holding the unread portion
// of the buffer. The slice is valid for use only until the next buffer
// modification.
func (b *Buffer) Bytes() []byte {
	if len(b.buf) == 0 {
		return []byte{}
	}
	return b.buf
}

// String returns the contents of the unread portion of the buffer as a
// string.
func (b *Buffer) String() string {
	return string(b.buf)
}

// Len returns the number of bytes of the unread portion of the buffer.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Cap returns the capacity of the buffer's current storage region.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Reset resets the buffer to be empty. The current storage region is
// kept for reuse; regions abandoned by earlier growth stay in the
// arena for good.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

// Truncate discards all but the first n unread bytes from the buffer.
// It panics if n is negative or greater than the length of the buffer.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.buf) {
		panic("arena: buffer truncation out of range")
	}
	b.buf = b.buf[:n]
}

// Next returns a slice containing the next n bytes from the buffer,
// advancing the buffer as if the bytes had been returned by Read.
func (b *Buffer) Next(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	if n > len(b.buf) {
		n = len(b.buf)
	}
	if n == 0 {
		return []byte{}
	}
	result := make([]byte, n)
	copy(result, b.buf[:n])
	copy(b.buf, b.buf[n:])
	b.buf = b.buf[:len(b.buf)-n]
	return result
}

// ReadFrom implements io.ReaderFrom. It reads from r until EOF or
// error, appending to the buffer. The intermediate read buffer is
// carved from the arena on first use.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	if b.readBuf == nil {
		b.allocateReadBuffer()
	}
	for {
		nr, er := r.Read(b.readBuf)
		if nr > 0 {
			_, ew := b.Write(b.readBuf[:nr])
			if ew != nil {
				return n, ew
			}
			n += int64(nr)
		}
		if er != nil {
			if er == io.EOF {
				break
			}
			return n, er
		}
	}
	return n, nil
}

func (b *Buffer) allocateReadBuffer() {
	const readBufferSize = 4 * 1024
	if b.arena != nil {
		b.readBuf = b.arena.AllocateBytes(readBufferSize)
	} else {
		b.readBuf = make([]byte, readBufferSize)
	}
}
