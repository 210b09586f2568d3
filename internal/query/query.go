// Package query decodes `/get?k1&k2` and `/set?k1=v1&k2=v2` URIs into store operations.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadRequest is the single kind every decoding failure reports. The handler
// layer turns it into a 500 response without echoing the cause.
var ErrBadRequest = errors.New("bad request")

var (
	ErrInvalidOperation = fmt.Errorf("%w: invalid operation", ErrBadRequest)
	ErrMissingQuery     = fmt.Errorf("%w: missing query string", ErrBadRequest)
	ErrMalformedParam   = fmt.Errorf("%w: malformed parameter", ErrBadRequest)
)

// Kind selects the store operation.
type Kind int

const (
	Get Kind = iota + 1
	Set
)

func (k Kind) String() string {
	switch k {
	case Get:
		return "get"
	case Set:
		return "set"
	default:
		return "unknown"
	}
}

// Paths accepted by Decode.
const (
	GetPath = "/get"
	SetPath = "/set"
)

// Operation is a decoded URI. Keys is populated for Get, Values for Set.
type Operation struct {
	Kind   Kind
	Keys   []string
	Values map[string]string
}

// Decode splits uri on the first '?' and decodes the parameters for its path.
// Get tokens are used verbatim as key names, even when they contain '='.
func Decode(uri string) (*Operation, error) {
	path, queryString, found := strings.Cut(uri, "?")
	if path != GetPath && path != SetPath {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperation, path)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrMissingQuery, uri)
	}

	tokens := strings.Split(queryString, "&")
	if path == GetPath {
		return &Operation{Kind: Get, Keys: tokens}, nil
	}

	values := make(map[string]string, len(tokens))
	for _, token := range tokens {
		if strings.Count(token, "=") != 1 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedParam, token)
		}
		key, value, _ := strings.Cut(token, "=")
		values[key] = value
	}
	return &Operation{Kind: Set, Values: values}, nil
}

// EncodeGet builds a /get URI for the given keys. '=' is allowed in a key since
// Decode keeps /get tokens whole.
func EncodeGet(keys ...string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: no keys given", ErrMalformedParam)
	}
	for _, key := range keys {
		if strings.ContainsAny(key, "&? ") {
			return "", fmt.Errorf("%w: key %q contains a reserved character", ErrMalformedParam, key)
		}
	}
	return GetPath + "?" + strings.Join(keys, "&"), nil
}

// EncodeSet builds a /set URI. Pairs are given as alternating key, value.
func EncodeSet(pairs ...string) (string, error) {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return "", fmt.Errorf("%w: expected key/value pairs, got %d arguments", ErrMalformedParam, len(pairs))
	}
	params := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, value := pairs[i], pairs[i+1]
		if strings.ContainsAny(key, "&=? ") || strings.ContainsAny(value, "&=? ") {
			return "", fmt.Errorf("%w: %q=%q contains a reserved character", ErrMalformedParam, key, value)
		}
		params = append(params, key+"="+value)
	}
	return SetPath + "?" + strings.Join(params, "&"), nil
}
