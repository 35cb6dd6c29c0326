package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmd-format/llmd/pkg/llmd"
	"github.com/llmd-format/llmd/pkg/model"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_PutGetList(t *testing.T) {
	c := openTestCatalog(t)

	entries := []Entry{
		{Path: "/conv/b.llmd", Title: "Second", Messages: 4},
		{Path: "/conv/a.llmd", Title: "First", Messages: 2},
	}
	for _, e := range entries {
		require.NoError(t, c.Put(e))
	}

	got, found, err := c.Get("/conv/a.llmd")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "First", got.Title)

	_, found, err = c.Get("/conv/missing.llmd")
	require.NoError(t, err)
	assert.False(t, found)

	listed, err := c.List()
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "/conv/a.llmd", listed[0].Path, "sorted by path")
	assert.Equal(t, "/conv/b.llmd", listed[1].Path)
}

func TestCatalog_Delete(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Put(Entry{Path: "/conv/a.llmd"}))
	require.NoError(t, c.Delete("/conv/a.llmd"))

	_, found, err := c.Get("/conv/a.llmd")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCatalog_IndexDir(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()

	conv := model.New(model.Metadata{
		Version:      "0.1",
		CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Participants: []string{"user", "assistant"},
		Title:        "Indexed",
	})
	conv.AppendMessage(model.Message{
		ID: "msg_1", Role: model.RoleUser, Content: "hi",
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, llmd.WriteFile(conv, filepath.Join(dir, "good.llmd")))

	// A broken file must be skipped, not abort the walk.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.llmd"), []byte("not a container"), 0644))
	// Unrelated files are ignored entirely.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	indexed, skipped, err := c.IndexDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, indexed)
	assert.Len(t, skipped, 1)

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Indexed", entries[0].Title)
	assert.Equal(t, 1, entries[0].Messages)
}
