package scrape

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.Catalog = (*Catalog)(nil)

// Invalidator is implemented by scrapers that cache their results.
type Invalidator interface {
	Invalidate()
}

// Catalog serves the store's catalog from the scraper and keeps a copy in
// Store. When the scraper fails, the last stored catalog is served instead.
type Catalog struct {
	Scraper bookhaven.Scraper
	Store   bookhaven.BookService
	Options bookhaven.ScrapeOptions
	Logger  *slog.Logger

	mu         sync.Mutex
	lastDigest uint64
}

// Books returns the current catalog in display order.
func (c *Catalog) Books(ctx context.Context) ([]*bookhaven.Book, error) {
	result, err := c.Scraper.Scrape(ctx, c.Options)
	if err != nil {
		if ctx.Err() != nil || c.Store == nil {
			return nil, err
		}
		stored, findErr := c.Store.FindBooks(ctx, bookhaven.BookFilter{SortBy: bookhaven.SortByPosition})
		if findErr != nil || len(stored) == 0 {
			return nil, err
		}
		c.logger().Warn("serving stored catalog", "err", err, "count", len(stored))
		return stored, nil
	}

	if err := c.persist(ctx, result.Books); err != nil {
		return nil, err
	}
	return result.Books, nil
}

// Refresh invalidates the scraper's cache, if any, and reads the catalog again.
func (c *Catalog) Refresh(ctx context.Context) ([]*bookhaven.Book, error) {
	if inv, ok := c.Scraper.(Invalidator); ok {
		inv.Invalidate()
	}
	return c.Books(ctx)
}

// persist upserts copies of books unless they are identical to the last
// persisted set. The scraped books may be shared with other readers, so the
// store never sees them directly.
func (c *Catalog) persist(ctx context.Context, books []*bookhaven.Book) error {
	if c.Store == nil || len(books) == 0 {
		return nil
	}

	digest := catalogDigest(books)

	c.mu.Lock()
	defer c.mu.Unlock()
	if digest == c.lastDigest {
		return nil
	}
	if err := c.Store.UpsertBooks(ctx, cloneBooks(books)); err != nil {
		return err
	}
	c.lastDigest = digest
	return nil
}

func (c *Catalog) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func cloneBooks(books []*bookhaven.Book) []*bookhaven.Book {
	out := make([]*bookhaven.Book, len(books))
	for i, b := range books {
		cp := *b
		out[i] = &cp
	}
	return out
}

// catalogDigest fingerprints an ordered list of books by content hash.
func catalogDigest(books []*bookhaven.Book) uint64 {
	d := xxhash.New()
	for _, b := range books {
		_, _ = d.WriteString(b.ID)
		_, _ = d.WriteString(b.ContentHash)
	}
	return d.Sum64()
}
