// Package artifacts persists normalized documents under a deterministic
// path layout: one subdirectory per source category, one file per
// sanitized identifier. Writes are atomic so a cancelled run never leaves
// partial output at a final path.
package artifacts

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gnoverse/knowscrape/models"
)

// WriteError marks a filesystem failure while persisting one artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store writes artifacts under a root directory.
type Store struct {
	root string
}

// NewStore creates the artifact root. An unusable root is fatal for the
// whole run, so this is the one place that returns a plain error instead
// of a WriteError.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = "artifacts"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

var invalidFilenameChar = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

// Slug converts a source identifier into a filesystem-safe name. URLs keep
// host and path parts; repository paths keep their directory structure as
// underscores. Deterministic: re-runs land on the same file.
func Slug(identifier string) string {
	u, err := url.Parse(identifier)
	if err != nil || u.Host == "" {
		safe := invalidFilenameChar.ReplaceAllString(identifier, "_")
		return strings.Trim(safe, "_")
	}

	hostPart := strings.ReplaceAll(u.Host, ".", "_")
	pathPart := strings.TrimPrefix(u.Path, "/")
	pathPart = invalidFilenameChar.ReplaceAllString(pathPart, "_")
	pathPart = strings.Trim(pathPart, "_")

	if pathPart == "" {
		return hostPart
	}
	return fmt.Sprintf("%s_%s", hostPart, pathPart)
}

// PathFor returns the final artifact path for an item in the given output
// mode: <root>/<category>/<slug><ext>.
func (s *Store) PathFor(item models.SourceItem, mode models.OutputMode) string {
	return filepath.Join(s.root, string(item.Category), Slug(item.Identifier)+mode.Ext())
}

// Write persists a normalized document and returns the final path. The
// content goes to a temp file in the target directory first and is renamed
// into place, so concurrent readers and cancelled runs never observe a
// partial artifact. Re-runs overwrite: last write wins.
func (s *Store) Write(doc *models.NormalizedDocument, mode models.OutputMode) (string, error) {
	finalPath := s.PathFor(doc.Item, mode)
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WriteError{Path: finalPath, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(finalPath)+".tmp-*")
	if err != nil {
		return "", &WriteError{Path: finalPath, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(doc.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", &WriteError{Path: finalPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &WriteError{Path: finalPath, Err: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", &WriteError{Path: finalPath, Err: err}
	}
	return finalPath, nil
}

// Read returns an artifact's content, for round-trip verification and the
// format command's sanity checks.
func (s *Store) Read(item models.SourceItem, mode models.OutputMode) ([]byte, error) {
	data, err := os.ReadFile(s.PathFor(item, mode))
	if err != nil {
		return nil, fmt.Errorf("error reading artifact: %w", err)
	}
	return data, nil
}
