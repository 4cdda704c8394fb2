package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o700))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func TestList_WalksTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.md", "# Intro\n\nHello.")
	writeFile(t, root, "notes/setup.txt", "Setup steps.")
	writeFile(t, root, "notes/inner/deep.markdown", "Deep.")
	writeFile(t, root, "ignore.bin", "binary")
	writeFile(t, root, ".hidden/secret.md", "hidden")
	writeFile(t, root, "notes/.draft.md", "draft")

	src := New(root)
	refs, err := src.List(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, r := range refs {
		paths = append(paths, r.Path)
	}
	assert.ElementsMatch(t, []string{"intro.md", "notes/setup.txt", "notes/inner/deep.markdown"}, paths)
}

func TestList_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rst", "text")
	writeFile(t, root, "b.md", "text")

	src := New(root, WithExtensions([]string{".rst"}))
	refs, err := src.List(context.Background())
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, "a.rst", refs[0].Path)
}

func TestRead_TitleFromHeading(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guide.md", "# Setup Guide\n\nInstall things.")

	src := New(root)
	doc, err := src.Read(context.Background(), "guide.md")
	require.NoError(t, err)

	assert.Equal(t, "Setup Guide", doc.Title)
	assert.Equal(t, "guide.md", doc.Path)
	assert.Contains(t, doc.Content, "Install things.")
	assert.Positive(t, doc.MTime)
	assert.Equal(t, doc.MTime, doc.CTime)
}

func TestRead_TitleFallsBackToFilename(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "plain-notes.txt", "no heading here")

	src := New(root)
	doc, err := src.Read(context.Background(), "plain-notes.txt")
	require.NoError(t, err)

	assert.Equal(t, "plain-notes", doc.Title)
}

func TestRead_MissingDocument(t *testing.T) {
	src := New(t.TempDir())

	_, err := src.Read(context.Background(), "gone.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatches(t *testing.T) {
	src := New(t.TempDir())

	assert.True(t, src.Matches("notes/a.md"))
	assert.True(t, src.Matches("b.TXT"))
	assert.False(t, src.Matches("c.bin"))
	assert.False(t, src.Matches("notes/.draft.md"))
}
