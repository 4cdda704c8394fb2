// Package fs provides a filesystem implementation of driven.DocumentSource
// that walks a root directory for markdown and plain-text documents.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// DefaultExtensions are the file extensions indexed by default.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// Source reads documents from a directory tree. Paths reported to the
// core are root-relative with forward slashes, so records stay portable
// when the root moves.
type Source struct {
	root string
	exts map[string]bool
}

// Option configures the source.
type Option func(*Source)

// WithExtensions replaces the default set of indexed file extensions.
func WithExtensions(exts []string) Option {
	return func(s *Source) {
		if len(exts) == 0 {
			return
		}
		s.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			s.exts[strings.ToLower(e)] = true
		}
	}
}

// New creates a source rooted at root.
func New(root string, opts ...Option) *Source {
	s := &Source{
		root: root,
		exts: make(map[string]bool, len(DefaultExtensions)),
	}
	for _, e := range DefaultExtensions {
		s.exts[e] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory this source reads from.
func (s *Source) Root() string {
	return s.root
}

// Matches reports whether a root-relative path would be indexed.
func (s *Source) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return s.exts[strings.ToLower(filepath.Ext(path))]
}

// List enumerates all indexable documents under the root.
func (s *Source) List(ctx context.Context) ([]domain.DocumentRef, error) {
	var refs []domain.DocumentRef

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		name := d.Name()
		if d.IsDir() {
			// Skip hidden directories, but not the root itself
			if path != s.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !s.exts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		mtime := info.ModTime().UnixMilli()
		refs = append(refs, domain.DocumentRef{
			Path:  filepath.ToSlash(rel),
			Title: titleFromName(name),
			MTime: mtime,
			// File birth time is not portable; modification time stands in
			CTime: mtime,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return refs, nil
}

// Read loads one document by its root-relative path.
func (s *Source) Read(ctx context.Context, path string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := string(data)
	title := titleFromContent(content)
	if title == "" {
		title = titleFromName(filepath.Base(path))
	}

	mtime := info.ModTime().UnixMilli()
	return &domain.Document{
		Path:    path,
		Title:   title,
		Content: content,
		MTime:   mtime,
		CTime:   mtime,
	}, nil
}

// titleFromContent returns the first markdown H1 heading, if any.
func titleFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return ""
}

// titleFromName strips the extension from a file name.
func titleFromName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
