package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deusflow/siernews/internal/news"
)

// MaxURLs caps the persisted history; older entries are dropped first.
const MaxURLs = 1000

// urlFile is the on-disk form. Older files hold a bare JSON array instead.
type urlFile struct {
	URLs []string `json:"urls"`
}

// URLStore keeps the URLs of already-posted articles in a JSON file, oldest
// first.
type URLStore struct {
	filePath string
}

// NewURLStore creates a store backed by filePath. The file need not exist.
func NewURLStore(filePath string) *URLStore {
	return &URLStore{filePath: filePath}
}

// Path returns the backing file path.
func (s *URLStore) Path() string {
	return s.filePath
}

// Load returns the stored URLs. A missing, empty, or unreadable file is an
// empty history, not an error.
func (s *URLStore) Load() []string {
	data, err := os.ReadFile(s.filePath)
	if err != nil || len(data) == 0 {
		return []string{}
	}

	var bare []string
	if err := json.Unmarshal(data, &bare); err == nil && bare != nil {
		return bare
	}

	var wrapped urlFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.URLs != nil {
		return wrapped.URLs
	}

	return []string{}
}

// Save replaces the file with the last MaxURLs entries of urls. The new
// content is written to a temporary file and renamed over the old one.
func (s *URLStore) Save(urls []string) error {
	if len(urls) > MaxURLs {
		urls = urls[len(urls)-MaxURLs:]
	}
	if urls == nil {
		urls = []string{}
	}

	data, err := json.MarshalIndent(urlFile{URLs: urls}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal url history: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write url history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("failed to replace url history: %w", err)
	}
	return nil
}

// FilterUnseen returns the articles whose URL is not in seen, keeping order.
func FilterUnseen(articles []news.Article, seen []string) []news.Article {
	seenSet := make(map[string]struct{}, len(seen))
	for _, u := range seen {
		seenSet[u] = struct{}{}
	}

	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seenSet[a.URL]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}
