package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/bookhaven"
	"github.com/fwojciec/bookhaven/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	books, err := storedBooks(deps)
	if err != nil {
		return err
	}

	dir := filepath.Clean(c.Dir)
	store := fs.NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	if err := store.Export(deps.Ctx, books); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookhaven.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d books to %s\n", len(books), dir)
	return nil
}
