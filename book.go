package bookhaven

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// SourceBooksToScrape labels books scraped from books.toscrape.com.
const SourceBooksToScrape = "BooksToScrape"

// Book represents a book listed in the scraped catalog.
type Book struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Price        decimal.NullDecimal `json:"price"`
	Rating       int                 `json:"rating"` // 0 when unknown
	ImageURL     string              `json:"imageUrl"`
	SourceURL    string              `json:"sourceUrl"`
	Source       string              `json:"source"`
	Description  string              `json:"description,omitempty"` // Markdown
	UPC          string              `json:"upc,omitempty"`
	Availability string              `json:"availability,omitempty"`
	Category     string              `json:"category,omitempty"`
	ContentHash  string              `json:"contentHash"`
	Position     int                 `json:"position"`
	ScrapedAt    time.Time           `json:"scrapedAt"`
}

// Validate returns an error if the book contains invalid fields.
func (b *Book) Validate() error {
	if b.Title == "" {
		return Errorf(EINVALID, "book title required")
	}
	if b.SourceURL == "" {
		return Errorf(EINVALID, "book source URL required")
	}
	if b.Rating < 0 || b.Rating > MaxRating {
		return Errorf(EINVALID, "book rating must be between 0 and %d", MaxRating)
	}
	return nil
}

// HasPrice reports whether the book has a known price.
func (b *Book) HasPrice() bool {
	return b.Price.Valid
}

// BookDetail holds the fields only available on a book's product page.
type BookDetail struct {
	DescriptionHTML string
	UPC             string
	Availability    string
	Category        string
}

// ParsePrice extracts a price from display text such as "£51.77".
// Every rune other than digits and '.' is dropped; the result is invalid
// when nothing parseable remains.
func ParsePrice(text string) decimal.NullDecimal {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// BookService represents a service for managing stored books.
type BookService interface {
	// UpsertBooks inserts books or updates existing ones matched by source URL.
	// IDs of existing books are preserved and written back to the given books.
	UpsertBooks(ctx context.Context, books []*Book) error

	// FindBookByID retrieves a book by ID.
	// Returns ENOTFOUND if book does not exist.
	FindBookByID(ctx context.Context, id string) (*Book, error)

	// FindBooks retrieves books matching the filter.
	FindBooks(ctx context.Context, filter BookFilter) ([]*Book, error)

	// DeleteBooks removes every stored book.
	DeleteBooks(ctx context.Context) error

	// ReplaceBooks replaces the stored catalog with books. On failure the
	// previously stored books are kept.
	ReplaceBooks(ctx context.Context, books []*Book) error
}

// BookSortOrder represents the sort order for book queries.
type BookSortOrder string

// BookSortOrder constants for BookFilter.
const (
	SortByPosition BookSortOrder = "position"
	SortByTitle    BookSortOrder = "title"
	SortByPrice    BookSortOrder = "price"
	SortByRating   BookSortOrder = "rating"
)

// BookFilter represents a filter for FindBooks.
type BookFilter struct {
	ID        *string `json:"id"`
	Title     *string `json:"title"`
	MinRating *int    `json:"minRating"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	SortBy BookSortOrder `json:"sortBy"`
}
