package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		method  string
		uri     string
		version string
		body    string
	}{
		{
			name:    "curl style request",
			raw:     "GET /get?test_key HTTP/1.1\r\nHost: localhost:8888\r\nAccept: */*\r\n\r\n",
			method:  "GET",
			uri:     "/get?test_key",
			version: "HTTP/1.1",
			body:    "Host: localhost:8888",
		},
		{
			name:    "version defaults",
			raw:     "GET /set?a=b",
			method:  "GET",
			uri:     "/set?a=b",
			version: DefaultVersion,
		},
		{
			name:    "second line is body",
			raw:     "POST /x 1.0\r\n{\"k\": \"v\"}",
			method:  "POST",
			uri:     "/x",
			version: "1.0",
			body:    `{"k": "v"}`,
		},
		{
			name:    "extra tokens ignored",
			raw:     "OPTIONS / 1.1 trailing",
			method:  "OPTIONS",
			uri:     "/",
			version: "1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Parse([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.uri, req.URI)
			assert.Equal(t, tt.version, req.Version)
			assert.Equal(t, tt.body, req.Body)
			assert.Equal(t, []byte(tt.raw), req.Raw)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"GET",
		"GET\r\n/get?a HTTP/1.1",
		"\r\n",
		"GET /get?\xff\xfe",
	} {
		_, err := Parse([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedRequest, "input %q", raw)
	}
}

func TestResponse_Bytes(t *testing.T) {
	resp, err := NewResponse(StatusOK, nil, `["success"]`)
	require.NoError(t, err)
	assert.Equal(t,
		"HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nServer: CrudeServer\r\n\r\n[\"success\"]",
		string(resp.Bytes()))

	resp, err = NewResponse(StatusServerError, nil, "Server Error")
	require.NoError(t, err)
	assert.Equal(t,
		"HTTP/1.1 500 Server Error\r\nContent-Type: text/html\r\nServer: CrudeServer\r\n\r\nServer Error",
		string(resp.Bytes()))
}

func TestResponse_HeaderOverrideReplacesDefaults(t *testing.T) {
	resp, err := NewResponse(StatusOK, map[string]string{"Allow": "OPTIONS, GET"}, "")
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\nAllow: OPTIONS, GET\r\n\r\n", string(resp.Bytes()))
	assert.NotContains(t, resp.Headers, "Server")
}

func TestNewResponse_InvalidStatus(t *testing.T) {
	for _, code := range []int{0, 201, 400, 503} {
		_, err := NewResponse(code, nil, "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	}
	assert.Panics(t, func() { MustResponse(418, nil, "") })
}

func TestParseResponse(t *testing.T) {
	original := MustResponse(StatusNotFound, map[string]string{"X-A": "1", "X-B": "two words"}, "line1\r\nline2")

	got, err := ParseResponse(original.Bytes())
	require.NoError(t, err)
	assert.Equal(t, original, got)

	_, err = ParseResponse([]byte("garbage"))
	assert.Error(t, err)
	_, err = ParseResponse([]byte("HTTP/1.1 299 Odd\r\n\r\n"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
