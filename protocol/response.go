package protocol

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Response is one decoded server frame.
//
// Payload is only meaningfully structured when Success is true and the
// command asked for JSON. In every other case it is an opaque
// diagnostic string from the server.
type Response struct {
	Success bool
	Payload []byte
}

func (r *Response) Text() string {
	return string(r.Payload)
}

// JSON parses the payload as JSON. The result is only valid when the
// response was successful and the command promised JSON.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Payload)
}

// ErrorOrNil returns a *ServerError carrying the server's diagnostic
// text if the response reports failure. Otherwise it returns nil.
func (r *Response) ErrorOrNil() error {
	if r.Success {
		return nil
	}

	return &ServerError{Message: r.Text()}
}

// ServerError is a protocol-level failure: the server processed the
// command and reported success=0. The transport is still healthy.
type ServerError struct {
	// Message is the raw response body, e.g. "ERR: Unsupported command.\n"
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server reported failure: %s", e.Message)
}
