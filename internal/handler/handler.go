// Package handler maps request methods to functions that produce wire-ready responses.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dylanjw/mdb/internal/protocol"
	"github.com/hashicorp/go-hclog"
)

var (
	// ErrUnsupportedMethod means the table has no entry for a request's method.
	// It is a wiring defect and stops the server.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrUnimplemented is returned by handlers that are registered as stubs.
	ErrUnimplemented = errors.New("operation not implemented")
)

// Func produces the response bytes for a parsed request. The bytes must be a
// response rendered by protocol.Response.Bytes. Any error it returns is fatal to
// the connection loop; client mistakes must be answered, not returned.
type Func func(req *protocol.Request) ([]byte, error)

// Table maps a method name to its handler.
type Table map[string]Func

// Defaults returns a fresh copy of the default handlers for GET, POST and OPTIONS.
func Defaults() Table {
	return Table{
		"GET":     EchoGet,
		"POST":    UnimplementedPost,
		"OPTIONS": Options,
	}
}

// Merge returns the defaults with overrides applied on top. Entries in overrides
// win; methods they do not name keep their default handler.
func Merge(overrides Table) Table {
	table := Defaults()
	for method, fn := range overrides {
		table[method] = fn
	}
	return table
}

// Dispatcher parses raw buffers and routes them through a handler table.
type Dispatcher struct {
	table  Table
	logger hclog.Logger
}

// NewDispatcher builds a dispatcher over Merge(overrides).
func NewDispatcher(overrides Table, logger hclog.Logger) *Dispatcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{
		table:  Merge(overrides),
		logger: logger,
	}
}

// Dispatch parses raw and invokes the handler for its method. A malformed buffer
// yields protocol.ErrMalformedRequest and no bytes; the caller closes the connection.
func (d *Dispatcher) Dispatch(raw []byte) (*protocol.Request, []byte, error) {
	req, err := protocol.Parse(raw)
	if err != nil {
		d.logger.Debug("received non-http formed packet", "bytes", len(raw))
		return nil, nil, err
	}

	fn, ok := d.table[req.Method]
	if !ok {
		return req, nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	out, err := fn(req)
	if err != nil {
		return req, nil, fmt.Errorf("%s handler: %w", req.Method, err)
	}
	return req, out, nil
}

// Methods lists the methods the dispatcher answers.
func (d *Dispatcher) Methods() []string {
	methods := make([]string, 0, len(d.table))
	for method := range d.table {
		methods = append(methods, method)
	}
	return methods
}

// EchoGet answers with the raw request wrapped as [{"received request": <text>}].
func EchoGet(req *protocol.Request) ([]byte, error) {
	body, err := encodeJSON([]map[string]string{
		{"received request": string(req.Raw)},
	})
	if err != nil {
		return nil, err
	}
	return protocol.MustResponse(protocol.StatusOK, nil, body).Bytes(), nil
}

// Options answers with the allowed methods and an empty body.
func Options(*protocol.Request) ([]byte, error) {
	return protocol.MustResponse(protocol.StatusOK, map[string]string{"Allow": "OPTIONS, GET"}, "").Bytes(), nil
}

// UnimplementedPost is the POST stub.
func UnimplementedPost(*protocol.Request) ([]byte, error) {
	return nil, ErrUnimplemented
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
