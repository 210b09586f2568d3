package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fdb.json")
	f := NewFile(path)

	require.NoError(t, f.Write(map[string]string{"a": "1", "b": "2"}))

	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)

	// Writes replace the whole file rather than appending.
	require.NoError(t, f.Write(map[string]string{"c": "3"}))
	got, err = f.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, got)
}

func TestFile_ReadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file", content: nil},
		{name: "empty file", content: strPtr("")},
		{name: "json array", content: strPtr(`["a"]`)},
		{name: "truncated object", content: strPtr(`{"a": "1"`)},
		{name: "non-string value", content: strPtr(`{"a": 1}`)},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "db"+string(rune('a'+i))+".json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0644))
			}
			_, err := NewFile(path).Read()
			assert.Error(t, err)
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fdb.json")

	created, err := Init(path)
	require.NoError(t, err)
	assert.True(t, created)

	got, err := NewFile(path).Read()
	require.NoError(t, err)
	assert.Empty(t, got)

	// An existing file is never overwritten.
	require.NoError(t, NewFile(path).Write(map[string]string{"k": "v"}))
	created, err = Init(path)
	require.NoError(t, err)
	assert.False(t, created)

	got, err = NewFile(path).Read()
	require.NoError(t, err)
	assert.Equal(t, "v", got["k"])
}

func strPtr(s string) *string { return &s }
