package main_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/bookhaven"
	main "github.com/fwojciec/bookhaven/cmd/bookhaven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes stored catalog", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Books = bookStore(storedCatalog(), nil)

		require.NoError(t, (&main.ExportCmd{Dir: dir + "/"}).Run(deps))

		assert.FileExists(t, filepath.Join(dir, "index.md"))
		assert.FileExists(t, filepath.Join(dir, "the-night-circus_1.md"))
		assert.FileExists(t, filepath.Join(dir, "untitled-draft_4.md"))
		assert.Contains(t, stdout.String(), "Exported 4 books to "+dir)
	})

	t.Run("reports invalid book", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)
		deps.Books = bookStore([]*bookhaven.Book{{ID: "b1", Title: "No Source"}}, nil)

		err := (&main.ExportCmd{Dir: dir}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, bookhaven.EINVALID, bookhaven.ErrorCode(err))
		assert.Contains(t, stderr.String(), "book source URL required")
		assert.NoDirExists(t, dir)
	})

	t.Run("leaves unrelated directory untouched", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "Documents")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "thesis.docx"), []byte("draft"), 0644))
		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)
		deps.Books = bookStore(storedCatalog(), nil)

		err := (&main.ExportCmd{Dir: dir}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, bookhaven.ECONFLICT, bookhaven.ErrorCode(err))
		assert.Contains(t, stderr.String(), "not a previous export")
		assert.FileExists(t, filepath.Join(dir, "thesis.docx"))
		assert.NoFileExists(t, filepath.Join(dir, "index.md"))
	})
}
