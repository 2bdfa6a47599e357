package mock

import (
	"context"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of bookhaven.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, opts bookhaven.ScrapeOptions) (*bookhaven.ScrapeResult, error)
}

func (s *Scraper) Scrape(ctx context.Context, opts bookhaven.ScrapeOptions) (*bookhaven.ScrapeResult, error) {
	return s.ScrapeFn(ctx, opts)
}

var _ bookhaven.CatalogParser = (*CatalogParser)(nil)

// CatalogParser is a mock implementation of bookhaven.CatalogParser.
type CatalogParser struct {
	ParseCatalogFn func(html string, pageURL string) ([]*bookhaven.Book, error)
	ParseDetailFn  func(html string) (*bookhaven.BookDetail, error)
}

func (p *CatalogParser) ParseCatalog(html string, pageURL string) ([]*bookhaven.Book, error) {
	return p.ParseCatalogFn(html, pageURL)
}

func (p *CatalogParser) ParseDetail(html string) (*bookhaven.BookDetail, error) {
	return p.ParseDetailFn(html)
}

var _ bookhaven.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of bookhaven.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
