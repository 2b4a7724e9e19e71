package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/observability"
)

// FileStore keeps every page in its own JSON file under
// baseDir/<handle>/<page>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/bentogrid/pages/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".local", "share", "bentogrid", "pages")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store dir")
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

// Path returns the base directory of the store.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) pagePath(handle, page string) string {
	return filepath.Join(s.baseDir, handle, page+".json")
}

func (s *FileStore) Load(ctx context.Context, handle, page string) (doc *document.Document, err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "file", "load", time.Since(start), err) }()

	if err := validateKey(handle, page); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(handle, page)
}

func (s *FileStore) read(handle, page string) (*document.Document, error) {
	doc, err := document.ReadFile(s.pagePath(handle, page))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, notFound(handle, page)
	}
	return doc, err
}

func (s *FileStore) Save(ctx context.Context, doc *document.Document, ch document.Changes) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "file", "save", time.Since(start), err) }()

	if err := validateKey(doc.Handle, doc.Page); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read(doc.Handle, doc.Page)
	switch {
	case errors.Is(err, errors.ErrCodePageNotFound):
		stored = document.New(doc.Handle, doc.Page)
	case err != nil:
		return err
	}

	out := doc.Clone()
	out.Cards = document.Apply(stored.Cards, ch)
	out.UpdatedAt = s.now().UnixMilli()

	path := s.pagePath(doc.Handle, doc.Page)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create page dir")
	}
	if err := document.WriteFile(out, path); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write page %s", doc.Page)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, handle, page string) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "file", "delete", time.Since(start), err) }()

	if err := validateKey(handle, page); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pagePath(handle, page)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "remove page %s", page)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, handle string) (pages []string, err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "file", "list", time.Since(start), err) }()

	if err := errors.ValidateHandle(handle); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.baseDir, handle))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read pages of %s", handle)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		pages = append(pages, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(pages)
	return pages, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
