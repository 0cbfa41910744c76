package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

var ErrFrameTooLong = errors.New("frame too long")

// Frame is one decoded message with its header and trailer stripped
type Frame struct {
	Seq     uint8
	Payload []byte
}

// AppendFrame appends the framed form of payload to dst
func AppendFrame(dst []byte, seq uint8, payload []byte) ([]byte, error) {
	msgLen := MessageHeaderSize + len(payload) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return dst, fmt.Errorf("%w: %d bytes (max %d)", ErrFrameTooLong, msgLen, MessageLengthMax)
	}
	start := len(dst)
	dst = append(dst, uint8(msgLen), seq)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, uint8(crc>>8), uint8(crc&0xFF), MessageValueSync), nil
}

// decoderBufferSize holds a few maximum-length frames
const decoderBufferSize = 4 * (MessageLengthMax + 1)

// Decoder splits a byte stream into frames. Corrupt input (bad length,
// destination, CRC or trailer) drops the decoder out of sync; it then skips
// bytes up to the next sync byte and resumes.
type Decoder struct {
	fifo   *FifoBuffer
	synced bool

	// Resyncs counts how often corrupt input was detected
	Resyncs int
}

// NewDecoder returns a decoder that starts synchronized
func NewDecoder() *Decoder {
	return &Decoder{
		fifo:   NewFifoBuffer(decoderBufferSize),
		synced: true,
	}
}

// Feed buffers stream bytes and returns how many were accepted. Callers must
// drain Next before feeding the rest.
func (d *Decoder) Feed(data []byte) int {
	return d.fifo.Write(data)
}

// Next returns the next complete frame, or false if more input is needed
func (d *Decoder) Next() (Frame, bool) {
	for {
		data := d.fifo.Data()
		if len(data) == 0 {
			return Frame{}, false
		}

		if !d.synced {
			syncPos := bytes.IndexByte(data, MessageValueSync)
			if syncPos < 0 {
				d.fifo.Pop(len(data))
				return Frame{}, false
			}
			d.fifo.Pop(syncPos + 1)
			d.synced = true
			continue
		}

		if data[0] == MessageValueSync {
			d.fifo.Pop(1)
			continue
		}
		if len(data) < MessageLengthMin {
			return Frame{}, false
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin {
			d.desync()
			continue
		}
		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}
		if len(data) < msgLen {
			return Frame{}, false
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}
		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		d.fifo.Pop(msgLen)
		return Frame{Seq: seq, Payload: payload}, true
	}
}

func (d *Decoder) desync() {
	d.synced = false
	d.Resyncs++
}

// Conn reads and writes frames over a byte stream such as a serial port.
// ReadFrame must only be called from one goroutine; WriteFrame is safe for
// concurrent use.
type Conn struct {
	rw      io.ReadWriter
	dec     *Decoder
	rbuf    []byte
	pending []byte

	wmu  sync.Mutex
	wbuf []byte
}

// NewConn wraps rw
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		rw:   rw,
		dec:  NewDecoder(),
		rbuf: make([]byte, 256),
	}
}

// ReadFrame blocks until a complete frame arrives or the stream fails.
// A read returning no data and no error is retried.
func (c *Conn) ReadFrame() (Frame, error) {
	for {
		if len(c.pending) > 0 {
			n := c.dec.Feed(c.pending)
			c.pending = c.pending[n:]
		}
		if f, ok := c.dec.Next(); ok {
			return f, nil
		}
		if len(c.pending) > 0 {
			continue
		}
		n, err := c.rw.Read(c.rbuf)
		if n > 0 {
			c.pending = c.rbuf[:n]
			continue
		}
		if err != nil {
			return Frame{}, err
		}
	}
}

// WriteFrame frames payload with seq and writes it in one call
func (c *Conn) WriteFrame(seq uint8, payload []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	var err error
	c.wbuf, err = AppendFrame(c.wbuf[:0], seq, payload)
	if err != nil {
		return err
	}
	n, err := c.rw.Write(c.wbuf)
	if err != nil {
		return err
	}
	if n != len(c.wbuf) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(c.wbuf))
	}
	return nil
}

// Resyncs reports how many times the reader lost frame sync
func (c *Conn) Resyncs() int { return c.dec.Resyncs }
