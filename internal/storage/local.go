package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalURLPrefix is the path uploads are served under.
const LocalURLPrefix = "/uploads/"

// LocalStore keeps uploads on the local filesystem under dir/<category>/.
type LocalStore struct {
	dir string
}

var _ BlobStore = (*LocalStore)(nil)

// NewLocalStore creates dir if needed and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Store implements BlobStore.
func (s *LocalStore) Store(_ context.Context, r io.Reader, filename string, category Category) (string, error) {
	key, err := objectKey(filename, category)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close upload: %w", err)
	}

	return LocalURLPrefix + key, nil
}

// Delete implements BlobStore.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rest, ok := strings.CutPrefix(url, LocalURLPrefix)
	if !ok {
		return fmt.Errorf("%w: %q", errForeignURL, url)
	}
	key, err := parseKey(rest)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// Handler serves stored files. Mount it under LocalURLPrefix with the prefix
// stripped. Directory listings are not served.
func (s *LocalStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := parseKey(strings.TrimPrefix(r.URL.Path, "/")); err != nil {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
