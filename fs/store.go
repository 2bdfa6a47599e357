// Package fs exports the catalog as Markdown files.
package fs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/fwojciec/bookhaven"
	"gopkg.in/yaml.v3"
)

// MarkerFile is written into every export. An existing non-empty directory
// is only replaced when it holds this file.
const MarkerFile = ".bookhaven-export"

// FileStore writes books as Markdown files with atomic update semantics.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
type FileStore struct {
	baseDir string
	name    string
	written map[string]bool
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
		written: make(map[string]bool),
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// BookPath returns the relative file name for a book, derived from the
// directory of its product page URL.
// Example: .../catalogue/sharp-objects_997/index.html → sharp-objects_997.md
func BookPath(b *bookhaven.Book) string {
	if u, err := url.Parse(b.SourceURL); err == nil {
		p := strings.TrimSuffix(u.Path, "/")
		if strings.HasSuffix(p, "/index.html") {
			p = path.Dir(p)
		}
		if base := path.Base(p); base != "." && base != "/" && base != "" {
			return strings.TrimSuffix(base, path.Ext(base)) + ".md"
		}
	}
	return slugify(b.Title) + ".md"
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "book"
	}
	return slug
}

// frontMatter is the YAML header written above each book's description.
type frontMatter struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Price        string `yaml:"price,omitempty"`
	Rating       int    `yaml:"rating"`
	Category     string `yaml:"category,omitempty"`
	UPC          string `yaml:"upc,omitempty"`
	Availability string `yaml:"availability,omitempty"`
	Image        string `yaml:"image,omitempty"`
	Source       string `yaml:"source"`
	Scraped      string `yaml:"scraped,omitempty"`
}

// FormatBook formats a book as Markdown with YAML front matter.
func FormatBook(b *bookhaven.Book) (string, error) {
	fm := frontMatter{
		ID:           b.ID,
		Title:        b.Title,
		Rating:       b.Rating,
		Category:     b.Category,
		UPC:          b.UPC,
		Availability: b.Availability,
		Image:        b.ImageURL,
		Source:       b.SourceURL,
	}
	if b.HasPrice() {
		fm.Price = b.Price.Decimal.StringFixed(2)
	}
	if !b.ScrapedAt.IsZero() {
		fm.Scraped = b.ScrapedAt.UTC().Format(time.DateOnly)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n# ")
	sb.WriteString(b.Title)
	sb.WriteString("\n")
	if b.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(b.Description)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Save writes a book to the temporary directory and returns its relative
// path. Books that map to the same file name get the book ID appended.
func (s *FileStore) Save(ctx context.Context, b *bookhaven.Book) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.Validate(); err != nil {
		return "", err
	}

	rel := BookPath(b)
	if s.written[rel] {
		rel = strings.TrimSuffix(rel, ".md") + "-" + b.ID + ".md"
	}
	s.written[rel] = true

	content, err := FormatBook(b)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.tempDir(), rel), []byte(content), 0644); err != nil {
		return "", err
	}
	return rel, nil
}

// Commit replaces the output directory with the temporary one. It refuses
// to replace a directory that was not written by a previous export.
func (s *FileStore) Commit() error {
	if err := s.checkTarget(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.tempDir(), MarkerFile), nil, 0644); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// checkTarget reports whether the output directory may be replaced: it must
// be missing, empty, or marked as a previous export.
func (s *FileStore) checkTarget() error {
	entries, err := os.ReadDir(s.finalDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.finalDir(), MarkerFile)); err == nil {
		return nil
	}
	return bookhaven.Errorf(bookhaven.ECONFLICT, "refusing to replace %s: not a previous export", s.finalDir())
}

// Abort discards the temporary directory.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// Export writes every book and commits, or aborts on the first failure.
func (s *FileStore) Export(ctx context.Context, books []*bookhaven.Book) error {
	if err := s.checkTarget(); err != nil {
		return err
	}
	if err := s.Abort(); err != nil {
		return err
	}
	s.written = make(map[string]bool)
	paths := make([]string, 0, len(books))
	for _, b := range books {
		rel, err := s.Save(ctx, b)
		if err != nil {
			_ = s.Abort()
			return fmt.Errorf("export %q: %w", b.Title, err)
		}
		paths = append(paths, rel)
	}
	if err := s.writeIndex(books, paths); err != nil {
		_ = s.Abort()
		return err
	}
	if err := s.Commit(); err != nil {
		_ = s.Abort()
		return err
	}
	return nil
}

// writeIndex writes index.md linking every exported book in catalog order.
func (s *FileStore) writeIndex(books []*bookhaven.Book, paths []string) error {
	var sb strings.Builder
	sb.WriteString("# Catalog\n\n")
	for i, b := range books {
		fmt.Fprintf(&sb, "- [%s](%s)", b.Title, paths[i])
		if b.HasPrice() {
			fmt.Fprintf(&sb, " (%s)", b.Price.Decimal.StringFixed(2))
		}
		sb.WriteString("\n")
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.tempDir(), "index.md"), []byte(sb.String()), 0644)
}
