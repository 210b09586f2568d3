// Package persistence mirrors the key-value mapping to a single JSON file.
package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotObject is returned when the backing file holds valid JSON that is not an object.
var ErrNotObject = errors.New("backing file is not a JSON object")

// File is the on-disk mirror of the store. Every Write replaces the whole file.
type File struct {
	path string
}

// NewFile returns a mirror for the given path. The file is not touched.
func NewFile(path string) *File {
	return &File{path: path}
}

// Read loads the full mapping. The file must exist and contain a single JSON object
// whose values are strings.
func (f *File) Read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%s: %w", f.path, ErrNotObject)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return values, nil
}

// Write overwrites the backing file with the given mapping and syncs it.
// There is no rename-into-place: a crash mid-write can leave a truncated file.
func (f *File) Write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Init creates the backing file holding an empty object. An existing file is left
// alone and reported through the created flag.
func Init(path string) (created bool, err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := file.Write([]byte("{}")); err != nil {
		file.Close()
		return false, err
	}
	return true, file.Close()
}
