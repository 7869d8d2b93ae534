// Package media implements the filesystem namespace for event attachments:
// one randomly named directory per event holding randomly named files, plus
// the upload ingestion and range streaming built on top of it.
package media

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/townboard/eventboard/apperror"
)

// Category classifies a media file by its extension.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

var videoExts = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

// CategoryOf derives the media category from the file extension. Derivation
// is deterministic, so a path categorizes the same at write and read time.
func CategoryOf(name string) (Category, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := imageExts[ext]; ok {
		return CategoryImage, true
	}
	if _, ok := videoExts[ext]; ok {
		return CategoryVideo, true
	}
	return "", false
}

// IsStreamable reports whether the file is a recognized video container and
// therefore eligible for range responses.
func IsStreamable(name string) bool {
	_, ok := videoExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentTypeOf maps a file name to its MIME type.
func ContentTypeOf(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Store owns the media root directory. All relative paths handed out and
// accepted by it have the form "<directoryToken>/<fileName>".
type Store struct {
	root string
	log  *zap.SugaredLogger
}

// NewStore creates the root directory if needed and returns a Store.
func NewStore(root string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, apperror.NewStorage("failed to resolve media root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, apperror.NewStorage("failed to create media root", err)
	}
	return &Store{root: abs, log: log}, nil
}

// Root returns the absolute media root path.
func (s *Store) Root() string {
	return s.root
}

// AllocateDirectory creates a fresh event directory and returns its token.
// Tokens are UUIDv4, so collisions across concurrent requests are not a
// practical concern and tokens never derive from database identity.
func (s *Store) AllocateDirectory() (string, error) {
	token := uuid.NewString()
	if err := os.MkdirAll(filepath.Join(s.root, token), 0o755); err != nil {
		return "", apperror.NewStorage("failed to create media directory", err)
	}
	return token, nil
}

// WriteFile stores the reader's content under the given directory token using
// a random file name that keeps only the original extension. Client-supplied
// names never reach the filesystem. limit > 0 rejects content exceeding that
// many bytes. Returns the stored relative path.
func (s *Store) WriteFile(token, originalName string, r io.Reader, limit int64) (string, error) {
	if err := checkToken(token); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dir := filepath.Join(s.root, token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperror.NewStorage("failed to create media directory", err)
	}

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", apperror.NewStorage("failed to create media file", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	written, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", apperror.NewStorage("failed to write media file", err)
	}
	if limit > 0 && written > limit {
		_ = os.Remove(dst)
		return "", apperror.NewValidation("file exceeds the upload size limit")
	}

	return path.Join(token, name), nil
}

// Resolve maps a stored relative path to an absolute path under the root.
// Paths escaping the root resolve to not-found, never to a location outside
// the store.
func (s *Store) Resolve(rel string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	abs = filepath.Clean(abs)
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", apperror.NewNotFound("file")
	}
	return abs, nil
}

// FilterExisting returns the subset of relative paths whose backing files are
// currently present on disk. Paths that fail to resolve are filtered too.
func (s *Store) FilterExisting(rels []string) []string {
	out := make([]string, 0, len(rels))
	for _, rel := range rels {
		abs, err := s.Resolve(rel)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// DeleteFile removes the file at the relative path. Deleting a missing file
// is a no-op.
func (s *Store) DeleteFile(rel string) error {
	abs, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperror.NewStorage("failed to delete media file", err)
	}
	return nil
}

// DeleteDirectory removes the event directory and everything in it. Removing
// a missing directory is a no-op.
func (s *Store) DeleteDirectory(token string) error {
	if err := checkToken(token); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, token)); err != nil {
		return apperror.NewStorage("failed to delete media directory", err)
	}
	return nil
}

// PruneIfEmpty removes the event directory only when it holds no entries.
func (s *Store) PruneIfEmpty(token string) error {
	if err := checkToken(token); err != nil {
		return err
	}
	dir := filepath.Join(s.root, token)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperror.NewStorage("failed to read media directory", err)
	}
	if len(entries) != 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperror.NewStorage("failed to prune media directory", err)
	}
	return nil
}

// ListDirectory returns the relative paths of all files currently present
// under the directory token, sorted by name. A missing directory lists empty.
func (s *Store) ListDirectory(token string) ([]string, error) {
	if err := checkToken(token); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, token))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewStorage("failed to read media directory", err)
	}
	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		refs = append(refs, path.Join(token, e.Name()))
	}
	return refs, nil
}

// DirectoryToken extracts the owning directory token from a stored relative
// path.
func DirectoryToken(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return ""
}

func checkToken(token string) error {
	if token == "" || strings.ContainsAny(token, "/\\") || token == "." || token == ".." {
		return apperror.NewValidation("invalid media directory token")
	}
	return nil
}
