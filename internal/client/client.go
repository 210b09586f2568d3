// Package client issues single requests to an mdb server.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/dylanjw/mdb/internal/protocol"
	"github.com/dylanjw/mdb/internal/query"
)

// Client sends one request per connection, as the server expects.
type Client struct {
	addr    string
	timeout time.Duration
}

// New returns a client for addr. A zero timeout means no deadline.
func New(addr string, timeout time.Duration) *Client {
	return &Client{addr: addr, timeout: timeout}
}

// Do writes raw, then reads until the server closes the connection. A server
// that drops the request answers with zero bytes and a nil error.
func (c *Client) Do(raw []byte) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout())
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if c.timeout > 0 {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}
	if _, err := conn.Write(raw); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	out, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return out, nil
}

// Request sends `<method> <uri> HTTP/1.1` and parses the response.
func (c *Client) Request(method, uri string) (*protocol.Response, error) {
	out, err := c.Do([]byte(method + " " + uri + " HTTP/1.1\r\n\r\n"))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s %s: connection closed without a response", method, uri)
	}
	return protocol.ParseResponse(out)
}

// Get fetches the given keys. Keys that do not exist are absent from the result.
func (c *Client) Get(keys ...string) (map[string]string, error) {
	uri, err := query.EncodeGet(keys...)
	if err != nil {
		return nil, err
	}
	resp, err := c.Request("GET", uri)
	if err != nil {
		return nil, err
	}
	if resp.Status != protocol.StatusOK {
		return nil, fmt.Errorf("get: %d %s", resp.Status, resp.Body)
	}
	values := make(map[string]string)
	if err := json.Unmarshal([]byte(resp.Body), &values); err != nil {
		return nil, fmt.Errorf("decode get response: %w", err)
	}
	return values, nil
}

// Set stores alternating key, value pairs in one request.
func (c *Client) Set(pairs ...string) error {
	uri, err := query.EncodeSet(pairs...)
	if err != nil {
		return err
	}
	resp, err := c.Request("GET", uri)
	if err != nil {
		return err
	}
	if resp.Status != protocol.StatusOK {
		return fmt.Errorf("set: %d %s", resp.Status, resp.Body)
	}
	return nil
}

func (c *Client) dialTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return 5 * time.Second
}
