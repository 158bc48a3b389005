package pipeline

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tcpkit/tcpkit/pkg/bufpool"
)

// DefaultMaxFrameSize bounds the payload of a single frame. Frames
// announcing a larger size terminate the connection, which protects
// worker loops from hostile or corrupted length prefixes.
const DefaultMaxFrameSize = 16 << 20 // 16MB

// FrameTooLargeError reports a frame whose announced size exceeds the
// decoder limit.
type FrameTooLargeError struct {
	Size uint32
	Max  int
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("frame of %d bytes exceeds limit of %d", e.Size, e.Max)
}

// FramedDecoder is the default decode stage: a 4-byte big-endian length
// prefix followed by the payload. Payload buffers are drawn from the
// pooled allocator; the server returns them with Release once the
// handler stage has run.
//
// The decoder buffers the header across short reads, making it stateful
// and strictly per-connection.
type FramedDecoder struct {
	pool     *bufpool.Pool
	maxFrame int
	header   [4]byte
}

// NewFramedDecoder creates a decoder drawing payload buffers from pool.
// A nil pool uses the process-wide pool; maxFrame <= 0 applies
// DefaultMaxFrameSize.
func NewFramedDecoder(pool *bufpool.Pool, maxFrame int) *FramedDecoder {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &FramedDecoder{pool: pool, maxFrame: maxFrame}
}

// Decode blocks until one complete frame is read and returns its payload.
func (d *FramedDecoder) Decode(r io.Reader) ([]byte, error) {
	if _, err := io.ReadFull(r, d.header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(d.header[:])
	if int(size) > d.maxFrame {
		return nil, &FrameTooLargeError{Size: size, Max: d.maxFrame}
	}

	buf := d.get(int(size))
	if _, err := io.ReadFull(r, buf); err != nil {
		d.Release(buf)
		return nil, err
	}
	return buf, nil
}

// Release returns a payload buffer to the pool.
func (d *FramedDecoder) Release(buf []byte) {
	if d.pool != nil {
		d.pool.Put(buf)
		return
	}
	bufpool.Put(buf)
}

func (d *FramedDecoder) get(size int) []byte {
	if d.pool != nil {
		return d.pool.Get(size)
	}
	return bufpool.Get(size)
}

// Releaser is implemented by decoders whose payloads must be returned to
// an allocator after the handler stage has run.
type Releaser interface {
	Release(buf []byte)
}

// FramedEncoder is the default encode stage, mirroring FramedDecoder's
// wire format. It holds no state and a single instance serves every
// connection concurrently.
type FramedEncoder struct{}

// NewFramedEncoder returns the shared framed encode stage.
func NewFramedEncoder() *FramedEncoder {
	return &FramedEncoder{}
}

// Encode writes the length prefix and payload to w. Callers serialize
// writes per connection; the encoder itself is safe to share.
func (*FramedEncoder) Encode(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}
