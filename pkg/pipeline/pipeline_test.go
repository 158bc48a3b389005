package pipeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}

func TestFramedDecoder(t *testing.T) {
	t.Run("DecodesFrame", func(t *testing.T) {
		d := NewFramedDecoder(nil, 0)

		payload, err := d.Decode(bytes.NewReader(frame([]byte("hello"))))
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), payload)
		d.Release(payload)
	})

	t.Run("DecodesAcrossShortReads", func(t *testing.T) {
		d := NewFramedDecoder(nil, 0)
		r := iotest.OneByteReader(bytes.NewReader(frame([]byte("fragmented"))))

		payload, err := d.Decode(r)
		require.NoError(t, err)
		assert.Equal(t, []byte("fragmented"), payload)
		d.Release(payload)
	})

	t.Run("DecodesEmptyFrame", func(t *testing.T) {
		d := NewFramedDecoder(nil, 0)

		payload, err := d.Decode(bytes.NewReader(frame(nil)))
		require.NoError(t, err)
		assert.Empty(t, payload)
		d.Release(payload)
	})

	t.Run("SequentialFramesOnOneStream", func(t *testing.T) {
		d := NewFramedDecoder(nil, 0)
		var stream bytes.Buffer
		stream.Write(frame([]byte("first")))
		stream.Write(frame([]byte("second")))

		p1, err := d.Decode(&stream)
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), p1)
		d.Release(p1)

		p2, err := d.Decode(&stream)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), p2)
		d.Release(p2)
	})

	t.Run("RejectsOversizedFrame", func(t *testing.T) {
		d := NewFramedDecoder(nil, 8)

		_, err := d.Decode(bytes.NewReader(frame(make([]byte, 9))))
		var tooLarge *FrameTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, uint32(9), tooLarge.Size)
		assert.Equal(t, 8, tooLarge.Max)
	})

	t.Run("EOFOnTruncatedPayload", func(t *testing.T) {
		d := NewFramedDecoder(nil, 0)
		truncated := frame([]byte("abcdef"))[:7]

		_, err := d.Decode(bytes.NewReader(truncated))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("EOFOnEmptyStream", func(t *testing.T) {
		d := NewFramedDecoder(nil, 0)

		_, err := d.Decode(bytes.NewReader(nil))
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestFramedEncoder(t *testing.T) {
	t.Run("RoundTripsThroughDecoder", func(t *testing.T) {
		e := NewFramedEncoder()
		d := NewFramedDecoder(nil, 0)

		var buf bytes.Buffer
		require.NoError(t, e.Encode(&buf, []byte("payload")))

		payload, err := d.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), payload)
		d.Release(payload)
	})

	t.Run("SafeForConcurrentUse", func(t *testing.T) {
		e := NewFramedEncoder()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var buf bytes.Buffer
				for j := 0; j < 100; j++ {
					require.NoError(t, e.Encode(&buf, []byte("concurrent")))
				}
			}()
		}
		wg.Wait()
	})
}

type nopHandler struct{}

func (nopHandler) OnOpen(Conn)            {}
func (nopHandler) OnMessage(Conn, []byte) {}
func (nopHandler) OnClose(Conn, error)    {}

func TestFactory(t *testing.T) {
	t.Run("HandlerFactoryRequired", func(t *testing.T) {
		_, err := NewFactory(nil)
		assert.ErrorIs(t, err, ErrNoHandlerFactory)
	})

	t.Run("NewDecoderPerBuild", func(t *testing.T) {
		f, err := NewFactory(func() (Handler, error) { return nopHandler{}, nil })
		require.NoError(t, err)

		p1, err := f.Build()
		require.NoError(t, err)
		p2, err := f.Build()
		require.NoError(t, err)

		assert.NotSame(t, p1.Decoder.(*FramedDecoder), p2.Decoder.(*FramedDecoder))
	})

	t.Run("SharedEncoderAcrossBuilds", func(t *testing.T) {
		f, err := NewFactory(func() (Handler, error) { return nopHandler{}, nil })
		require.NoError(t, err)

		p1, err := f.Build()
		require.NoError(t, err)
		p2, err := f.Build()
		require.NoError(t, err)

		assert.Same(t, p1.Encoder.(*FramedEncoder), p2.Encoder.(*FramedEncoder))
		assert.Same(t, f.Encoder().(*FramedEncoder), p1.Encoder.(*FramedEncoder))
	})

	t.Run("HandlerErrorPropagates", func(t *testing.T) {
		wantErr := errors.New("no session available")
		f, err := NewFactory(func() (Handler, error) { return nil, wantErr })
		require.NoError(t, err)

		_, err = f.Build()
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("CustomStages", func(t *testing.T) {
		customDec := NewFramedDecoder(nil, 128)
		customEnc := NewFramedEncoder()

		f, err := NewFactory(
			func() (Handler, error) { return nopHandler{}, nil },
			WithDecoderFactory(func() Decoder { return customDec }),
			WithEncoder(customEnc),
		)
		require.NoError(t, err)

		p, err := f.Build()
		require.NoError(t, err)
		assert.Same(t, customDec, p.Decoder.(*FramedDecoder))
		assert.Same(t, customEnc, p.Encoder.(*FramedEncoder))
	})
}

// Compile-time checks that the default stages satisfy their interfaces.
var (
	_ Decoder  = (*FramedDecoder)(nil)
	_ Encoder  = (*FramedEncoder)(nil)
	_ Releaser = (*FramedDecoder)(nil)
)
