package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Status codes a response may carry.
const (
	StatusOK          = 200
	StatusNotFound    = 404
	StatusServerError = 500
)

var statusText = map[int]string{
	StatusOK:          "OK",
	StatusNotFound:    "Not Found",
	StatusServerError: "Server Error",
}

// StatusText returns the reason phrase for a supported code, or "".
func StatusText(code int) string {
	return statusText[code]
}

// ErrInvalidStatus is returned when building a response with an unsupported code.
var ErrInvalidStatus = errors.New("invalid status code")

// DefaultHeaders are sent when the caller supplies no header map.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Server":       "CrudeServer",
		"Content-Type": "text/html",
	}
}

// Response is a status line, a header block and a body.
type Response struct {
	Version string
	Status  int
	Headers map[string]string
	Body    string
}

// NewResponse validates status and resolves headers. A non-empty headers map
// replaces the defaults entirely; keys are not merged.
func NewResponse(status int, headers map[string]string, body string) (*Response, error) {
	if _, ok := statusText[status]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
	if len(headers) == 0 {
		headers = DefaultHeaders()
	}
	return &Response{
		Version: DefaultVersion,
		Status:  status,
		Headers: headers,
		Body:    body,
	}, nil
}

// MustResponse is NewResponse for statuses known at compile time.
func MustResponse(status int, headers map[string]string, body string) *Response {
	resp, err := NewResponse(status, headers, body)
	if err != nil {
		panic(err)
	}
	return resp
}

// Bytes renders the wire form. No Content-Length is computed; the client reads
// until the server closes the connection.
func (r *Response) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/%s %d %s\r\n", r.Version, r.Status, statusText[r.Status])

	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\r\n", name, r.Headers[name])
	}

	b.WriteString("\r\n")
	b.WriteString(r.Body)
	return []byte(b.String())
}

// ParseResponse reads a response rendered by Bytes. It is used by clients, which
// receive the whole response before the server closes the connection.
func ParseResponse(raw []byte) (*Response, error) {
	text := string(raw)
	head, body, found := strings.Cut(text, "\r\n\r\n")
	if !found {
		return nil, fmt.Errorf("response has no header terminator")
	}

	lines := strings.Split(head, "\r\n")
	var version string
	var status int
	if _, err := fmt.Sscanf(lines[0], "HTTP/%s %d", &version, &status); err != nil {
		return nil, fmt.Errorf("parse status line %q: %w", lines[0], err)
	}
	if StatusText(status) == "" {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}

	headers := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		headers[name] = value
	}

	return &Response{
		Version: version,
		Status:  status,
		Headers: headers,
		Body:    body,
	}, nil
}
