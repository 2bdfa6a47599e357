package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/bookhaven"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ bookhaven.BookService = (*BookService)(nil)

// BookService implements bookhaven.BookService using SQLite.
type BookService struct {
	db *DB
}

// NewBookService creates a new BookService.
func NewBookService(db *DB) *BookService {
	return &BookService{db: db}
}

const bookColumns = `id, title, price, rating, image_url, source_url, source, description,
	upc, availability, category, content_hash, position, scraped_at`

// UpsertBooks inserts books or updates existing ones matched by source URL.
// All books are written in a single transaction.
func (s *BookService) UpsertBooks(ctx context.Context, books []*bookhaven.Book) error {
	for _, b := range books {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range books {
		if err := upsertBook(ctx, tx, b); err != nil {
			return fmt.Errorf("upsert %s: %w", b.SourceURL, err)
		}
	}
	return tx.Commit()
}

// ReplaceBooks deletes every stored book and writes books in the same
// transaction.
func (s *BookService) ReplaceBooks(ctx context.Context, books []*bookhaven.Book) error {
	for _, b := range books {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM books"); err != nil {
		return err
	}
	for _, b := range books {
		if err := upsertBook(ctx, tx, b); err != nil {
			return fmt.Errorf("replace %s: %w", b.SourceURL, err)
		}
	}
	return tx.Commit()
}

func upsertBook(ctx context.Context, tx *sql.Tx, b *bookhaven.Book) error {
	if b.ScrapedAt.IsZero() {
		b.ScrapedAt = time.Now().UTC()
	}

	var existingID string
	err := tx.QueryRowContext(ctx, "SELECT id FROM books WHERE source_url = ?", b.SourceURL).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO books (`+bookColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.ID, b.Title, b.Price, b.Rating, b.ImageURL, b.SourceURL, b.Source, b.Description,
			b.UPC, b.Availability, b.Category, b.ContentHash, b.Position, formatTime(b.ScrapedAt))
		if err != nil && strings.Contains(err.Error(), "UNIQUE") {
			return bookhaven.Errorf(bookhaven.ECONFLICT, "book %s already exists", b.ID)
		}
		return err
	case err != nil:
		return err
	}

	b.ID = existingID
	_, err = tx.ExecContext(ctx, `
		UPDATE books
		SET title = ?, price = ?, rating = ?, image_url = ?, source = ?, description = ?,
			upc = ?, availability = ?, category = ?, content_hash = ?, position = ?, scraped_at = ?
		WHERE id = ?
	`, b.Title, b.Price, b.Rating, b.ImageURL, b.Source, b.Description,
		b.UPC, b.Availability, b.Category, b.ContentHash, b.Position, formatTime(b.ScrapedAt), b.ID)
	return err
}

// FindBookByID retrieves a book by ID.
func (s *BookService) FindBookByID(ctx context.Context, id string) (*bookhaven.Book, error) {
	books, err := s.FindBooks(ctx, bookhaven.BookFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, bookhaven.Errorf(bookhaven.ENOTFOUND, "book not found")
	}
	return books[0], nil
}

// FindBooks retrieves books matching the filter. Title matches are
// case-insensitive substring matches.
func (s *BookService) FindBooks(ctx context.Context, filter bookhaven.BookFilter) ([]*bookhaven.Book, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + bookColumns + " FROM books WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Title != nil {
		query.WriteString(" AND title LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(*filter.Title)+"%")
	}
	if filter.MinRating != nil {
		query.WriteString(" AND rating >= ?")
		args = append(args, *filter.MinRating)
	}

	switch filter.SortBy {
	case bookhaven.SortByTitle:
		query.WriteString(" ORDER BY title COLLATE NOCASE ASC, position ASC")
	case bookhaven.SortByPrice:
		query.WriteString(" ORDER BY price IS NULL, CAST(price AS REAL) ASC, position ASC")
	case bookhaven.SortByRating:
		query.WriteString(" ORDER BY rating DESC, position ASC")
	default:
		query.WriteString(" ORDER BY position ASC, title ASC")
	}

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*bookhaven.Book
	for rows.Next() {
		var b bookhaven.Book
		var scrapedAt string

		if err := rows.Scan(&b.ID, &b.Title, &b.Price, &b.Rating, &b.ImageURL, &b.SourceURL, &b.Source,
			&b.Description, &b.UPC, &b.Availability, &b.Category, &b.ContentHash, &b.Position, &scrapedAt); err != nil {
			return nil, err
		}

		b.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at")
		if err != nil {
			return nil, err
		}

		books = append(books, &b)
	}

	return books, rows.Err()
}

// DeleteBooks removes every stored book.
func (s *BookService) DeleteBooks(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM books")
	return err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
