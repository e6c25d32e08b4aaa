// Package uploads stores files attached to task submissions on the local
// filesystem under <root>/<email>/task_<n>/<name>.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/learnpath/internal/learner"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads/"

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 32 << 20

var (
	// ErrInvalidName is returned for file names that are empty or would
	// escape the learner's directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooLarge is returned when an upload exceeds MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// Store writes attachments below Root.
type Store struct {
	Root string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Root: dir}
}

// Save writes r to the learner's task directory and returns the path
// relative to Root, using forward slashes. An existing file with the same
// name is replaced.
func (s *Store) Save(email string, number int, filename string, r io.Reader) (string, error) {
	email = learner.NormalizeEmail(email)
	if err := checkSegment(email); err != nil {
		return "", fmt.Errorf("email: %w", err)
	}
	if number < 1 {
		return "", fmt.Errorf("invalid task number %d", number)
	}
	name, err := baseName(filename)
	if err != nil {
		return "", err
	}

	rel := path.Join(email, fmt.Sprintf("task_%d", number), name)
	dst := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// Write to a temporary sibling first so readers never see a partial file.
	tmp := filepath.Join(filepath.Dir(dst), "."+uuid.NewString()+".part")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return rel, nil
}

// Open returns the stored file at rel.
func (s *Store) Open(rel string) (*os.File, error) {
	p, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// RemoveLearner deletes every attachment of the learner. A learner without
// uploads is not an error.
func (s *Store) RemoveLearner(email string) error {
	email = learner.NormalizeEmail(email)
	if err := checkSegment(email); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(s.Root, email)); err != nil {
		return fmt.Errorf("remove uploads: %w", err)
	}
	return nil
}

// URL returns the public URL for a path returned by Save. An empty path
// yields an empty URL.
func URL(rel string) string {
	if rel == "" {
		return ""
	}
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return URLPrefix + strings.Join(parts, "/")
}

func (s *Store) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", ErrInvalidName
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean[1:])), nil
}

// baseName keeps only the final element of a client supplied name.
// Both separators are treated as such so Windows paths are handled too.
func baseName(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if err := checkSegment(name); err != nil {
		return "", err
	}
	return name, nil
}

func checkSegment(s string) error {
	switch {
	case s == "", s == ".", s == "..":
		return ErrInvalidName
	case strings.ContainsAny(s, "/\\\x00"):
		return ErrInvalidName
	case strings.HasPrefix(s, "."):
		return ErrInvalidName
	}
	return nil
}
