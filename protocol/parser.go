package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is the fixed size of a response frame header: one
	// status byte and an 8 byte big-endian body length.
	HeaderSize = 9

	statusSuccess = 0x1

	// MaxBodySize bounds the declared body length. Anything larger is
	// treated as a framing error rather than an allocation request.
	MaxBodySize = 64 << 20
)

var (
	ErrShortFrame    = errors.New("Response frame is malformed, the stream ended before the declared body was read")
	ErrFrameTooLarge = fmt.Errorf("Response frame declares a body larger than %d bytes", MaxBodySize)
)

// ReadResponse reads exactly one response frame from r.
//
// It accumulates partial reads until the full header and the full
// declared body are available, so it is safe to call against a
// streaming transport that delivers frames in arbitrary chunks.
//
// A clean EOF before any header byte is returned as io.EOF. An EOF in
// the middle of a frame is a framing error: once the stream is cut
// mid-frame there is no way to realign it.
func ReadResponse(r io.Reader) (*Response, error) {
	var header [HeaderSize]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("Failed to read frame header: %w", ErrShortFrame)
		}

		return nil, err
	}

	length := binary.BigEndian.Uint64(header[1:])
	if length > MaxBodySize {
		return nil, ErrFrameTooLarge
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("Failed to read %d byte frame body: %w", length, ErrShortFrame)
		}

		return nil, err
	}

	return &Response{
		Success: header[0] == statusSuccess,
		Payload: body,
	}, nil
}
