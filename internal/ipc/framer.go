package ipc

import (
	"bytes"
	"errors"
	"iter"
)

// MaxLineBuffer caps how many unconsumed bytes a client may leave buffered.
const MaxLineBuffer = 64 * 1024

// ErrLineTooLong is returned by Feed when the buffer exceeds MaxLineBuffer.
var ErrLineTooLong = errors.New("line too long")

// LineFramer splits a byte stream into newline-terminated lines.
// A partial trailing line is kept until more data arrives.
type LineFramer struct {
	buf []byte
	off int
}

// Feed appends data read from the connection.
func (f *LineFramer) Feed(p []byte) error {
	if f.off > 0 {
		n := copy(f.buf, f.buf[f.off:])
		f.buf = f.buf[:n]
		f.off = 0
	}
	f.buf = append(f.buf, p...)
	if len(f.buf) > MaxLineBuffer {
		return ErrLineTooLong
	}
	return nil
}

// Lines yields each complete line with its '\n' removed. Lines after the
// point where iteration stops stay buffered for the next call.
func (f *LineFramer) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			i := bytes.IndexByte(f.buf[f.off:], '\n')
			if i < 0 {
				break
			}
			line := string(f.buf[f.off : f.off+i])
			f.off += i + 1
			if !yield(line) {
				break
			}
		}
		if f.off == len(f.buf) {
			f.buf = f.buf[:0]
			f.off = 0
		}
	}
}

// Buffered returns the number of bytes not yet returned as lines.
func (f *LineFramer) Buffered() int {
	return len(f.buf) - f.off
}

// Reset drops all buffered data.
func (f *LineFramer) Reset() {
	f.buf = nil
	f.off = 0
}
