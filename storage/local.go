package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore writes uploads to a directory served under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/"), now: time.Now}
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) URLPrefix() string {
	return s.urlPrefix
}

func (s *LocalStore) Save(_ context.Context, typeTag, originalName, _ string, body io.Reader) (*Upload, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	name := ObjectName(typeTag, originalName, s.now())
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", name, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return nil, fmt.Errorf("storage: write %s: %w", name, err)
	}
	return &Upload{URL: s.urlPrefix + "/" + name, Filename: name}, nil
}
