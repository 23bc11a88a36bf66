package protocol

import (
	"encoding/binary"
	"io"
)

// WriteCommand writes a single newline-terminated command line.
func WriteCommand(w io.Writer, command string) error {
	_, err := w.Write(append([]byte(command), '\n'))
	return err
}

// WriteResponse writes one response frame: status byte, 8 byte
// big-endian body length, then the body. It is the inverse of
// ReadResponse and is what a strata server (or a test double standing
// in for one) writes on the wire.
func WriteResponse(w io.Writer, success bool, body []byte) error {
	frame := make([]byte, HeaderSize, HeaderSize+len(body))

	if success {
		frame[0] = statusSuccess
	}
	binary.BigEndian.PutUint64(frame[1:], uint64(len(body)))
	frame = append(frame, body...)

	_, err := w.Write(frame)
	return err
}
