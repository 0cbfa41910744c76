package protocol

// OutputBuffer receives encoded protocol bytes
type OutputBuffer interface {
	Output(data []byte)
}

// ScratchOutput accumulates one frame payload in a fixed buffer.
// Writes past MessagePayloadMax are dropped and flagged.
type ScratchOutput struct {
	buf      [MessagePayloadMax]byte
	pos      int
	overflow bool
}

// NewScratchOutput creates an empty ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
	if n < len(data) {
		s.overflow = true
	}
}

// Len returns the number of bytes written
func (s *ScratchOutput) Len() int { return s.pos }

// Overflowed reports whether any write was truncated
func (s *ScratchOutput) Overflowed() bool { return s.overflow }

// Result returns the accumulated bytes; they alias the buffer
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// FifoBuffer is a circular byte buffer between a stream reader and the
// frame decoder
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a FifoBuffer holding up to capacity-1 bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends as much of data as fits and returns the count written
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Available returns the number of buffered bytes
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Data returns the buffered bytes as one contiguous slice, copying when the
// contents wrap around the end of the ring
func (f *FifoBuffer) Data() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	result := make([]byte, f.Available())
	firstLen := f.size - f.read
	copy(result, f.buf[f.read:])
	copy(result[firstLen:], f.buf[:f.write])
	return result
}

// Pop discards n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	if avail := f.Available(); n > avail {
		n = avail
	}
	f.read = (f.read + n) % f.size
}
