// Package protocol parses the HTTP-like request line format and builds responses.
package protocol

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxRequestSize is the number of bytes read from a connection per request.
// Anything past it is dropped unread, and the close then resets the connection,
// so a client sending more sees a reset instead of a response.
const MaxRequestSize = 1024

// DefaultVersion is used when the request line carries no protocol version.
const DefaultVersion = "1.1"

// ErrMalformedRequest marks an inbound buffer that cannot be split into a method
// and a URI. The connection is closed without writing a response.
var ErrMalformedRequest = errors.New("malformed request")

// Request is a parsed request. It is not modified after Parse returns.
type Request struct {
	Method  string
	URI     string
	Version string
	// Body is the second line of the input, verbatim.
	Body string
	// Raw is the buffer the request was parsed from.
	Raw []byte
}

// Parse turns a raw buffer into a Request. The first CRLF-delimited line is the
// request line, split on single spaces; the second line, if any, is the body.
func Parse(raw []byte) (*Request, error) {
	if !utf8.Valid(raw) {
		return nil, ErrMalformedRequest
	}

	lines := strings.Split(string(raw), "\r\n")
	body := ""
	if len(lines) >= 2 {
		body = lines[1]
	}

	words := strings.Split(lines[0], " ")
	if len(words) < 2 {
		return nil, ErrMalformedRequest
	}

	version := DefaultVersion
	if len(words) > 2 {
		version = words[2]
	}

	return &Request{
		Method:  words[0],
		URI:     words[1],
		Version: version,
		Body:    body,
		Raw:     raw,
	}, nil
}
