package scpi

import (
	"errors"
	"io"
)

// Stream is the byte interface the parser reads messages from and handlers
// write their replies to. Reads must never block: Available reports what
// can be consumed right now, and ReadByte is only called while it is
// positive. Completion of a message typically spans many polling calls.
type Stream interface {
	io.Writer

	// Available returns the number of bytes ready to read without blocking.
	Available() int

	// ReadByte consumes and returns the next byte.
	ReadByte() (byte, error)
}

// errFifoEmpty is returned by FifoStream.ReadByte on an empty buffer.
var errFifoEmpty = errors.New("scpi: fifo empty")

// FifoStream is a circular receive buffer with an attached reply writer.
// The surrounding system pushes bytes read from the wire with Push; the
// parser drains them through the Stream interface and writes replies
// through to the underlying writer.
type FifoStream struct {
	buf   []byte
	read  int
	write int
	size  int
	out   io.Writer
}

// NewFifoStream creates a FifoStream with the given receive capacity.
// Replies are forwarded to out; a nil out discards them.
func NewFifoStream(capacity int, out io.Writer) *FifoStream {
	if out == nil {
		out = io.Discard
	}
	return &FifoStream{
		buf:  make([]byte, capacity+1),
		size: capacity + 1,
		out:  out,
	}
}

// Push appends received bytes to the FIFO and returns how many fit.
func (f *FifoStream) Push(data []byte) int {
	pushed := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			// Buffer full
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		pushed++
	}
	return pushed
}

// Available returns the number of bytes available for reading.
func (f *FifoStream) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// ReadByte removes and returns the byte at the front of the FIFO.
func (f *FifoStream) ReadByte() (byte, error) {
	if f.read == f.write {
		return 0, errFifoEmpty
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, nil
}

// Write forwards reply bytes to the underlying writer.
func (f *FifoStream) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

// Reset discards any buffered receive bytes.
func (f *FifoStream) Reset() {
	f.read = 0
	f.write = 0
}
