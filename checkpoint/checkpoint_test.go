package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, err)

	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("anything"))
}

func TestAddPersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	l, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, l.Add("article-1"))
	require.NoError(t, l.Add("article-2"))

	// Every append rewrites the file in full.
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var ids []string
	require.NoError(t, json.Unmarshal(data, &ids))
	assert.Equal(t, []string{"article-1", "article-2"}, ids)
}

func TestReopenResumes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Add("a"))
	require.NoError(t, l.Add("b"))

	reopened, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, 2, reopened.Len())
	assert.True(t, reopened.Contains("a"))
	assert.True(t, reopened.Contains("b"))
	assert.False(t, reopened.Contains("c"))
}

func TestAddIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	l, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, l.Add("a"))
	require.NoError(t, l.Add("a"))

	assert.Equal(t, 1, l.Len())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}
