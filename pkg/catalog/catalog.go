// Package catalog maintains a local index of LLMD files so the CLI can
// list and look up conversations without re-parsing every file. Entries
// are keyed by file path in an embedded pebble store.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/llmd-format/llmd/pkg/llmd"
)

// Entry summarizes one indexed conversation file.
type Entry struct {
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
	Messages     int       `json:"messages"`
	Attachments  int       `json:"attachments"`
	CreatedAt    time.Time `json:"created_at"`
	IndexedAt    time.Time `json:"indexed_at"`
}

// Catalog is a pebble-backed index of conversation files.
type Catalog struct {
	db *pebble.DB
}

// Open opens (or creates) the catalog at path.
func Open(path string) (*Catalog, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying store.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put inserts or replaces the entry for its path.
func (c *Catalog) Put(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry for %s: %w", entry.Path, err)
	}
	if err := c.db.Set([]byte(entry.Path), data, pebble.NoSync); err != nil {
		return fmt.Errorf("store entry for %s: %w", entry.Path, err)
	}
	return nil
}

// Get looks up the entry for a file path.
func (c *Catalog) Get(path string) (Entry, bool, error) {
	data, closer, err := c.db.Get([]byte(path))
	if errors.Is(err, pebble.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read entry for %s: %w", path, err)
	}
	defer closer.Close()

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry for %s: %w", path, err)
	}
	return entry, true, nil
}

// Delete removes the entry for a file path.
func (c *Catalog) Delete(path string) error {
	return c.db.Delete([]byte(path), pebble.NoSync)
}

// List returns all entries sorted by path.
func (c *Catalog) List() ([]Entry, error) {
	iter, err := c.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("decode entry for %s: %w", iter.Key(), err)
		}
		entries = append(entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// IndexDir walks dir for .llmd files and indexes each one that parses.
// Files that fail to parse are skipped and reported in the returned
// slice; a broken file should not abort indexing of its siblings.
func (c *Catalog) IndexDir(dir string) (indexed int, skipped []string, err error) {
	parser := llmd.NewParser(llmd.ParserConfig{})

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".llmd") {
			return nil
		}

		conv, err := parser.ParseFile(path)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", path, err))
			return nil
		}

		meta := conv.Metadata()
		entry := Entry{
			Path:         path,
			Title:        meta.Title,
			Participants: meta.Participants,
			Messages:     len(conv.Messages()),
			Attachments:  len(conv.Attachments()),
			CreatedAt:    meta.CreatedAt,
			IndexedAt:    time.Now().UTC(),
		}
		if err := c.Put(entry); err != nil {
			return err
		}
		indexed++
		return nil
	})
	if walkErr != nil {
		return indexed, skipped, fmt.Errorf("walk %s: %w", dir, walkErr)
	}
	return indexed, skipped, nil
}
