// Package scrape provides catalog scraping orchestration.
// It coordinates fetching, parsing, deduplication and enrichment of the
// remote bookstore catalog, and serves the result as the store's catalog.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/bookhaven"
	"github.com/fwojciec/bookhaven/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the root of the demo bookstore.
const DefaultBaseURL = "http://books.toscrape.com"

// DefaultConcurrency is the number of pages fetched at once.
const DefaultConcurrency = 4

// Seen-set sizing for book deduplication.
const (
	seenExpectedBooks = 10000
	seenFalsePositive = 1e-7
)

var _ bookhaven.Scraper = (*Scraper)(nil)

// Scraper reads books from the paginated catalog of the demo bookstore.
// Progress is never called concurrently.
type Scraper struct {
	BaseURL     string
	Fetcher     bookhaven.Fetcher
	Parser      bookhaven.CatalogParser
	Converter   bookhaven.Converter
	RateLimiter bookhaven.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration
	OnRetry     RetryFunc
	Progress    ProgressFunc

	progressMu sync.Mutex
}

// ProgressEvent reports progress during a scrape.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting scrape progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of fetching a single listing page.
type pageResult struct {
	position int
	url      string
	books    []*bookhaven.Book
	err      error
}

// PageURL returns the URL of catalog listing page n (1-based).
func PageURL(baseURL string, n int) string {
	return fmt.Sprintf("%s/catalogue/page-%d.html", strings.TrimSuffix(baseURL, "/"), n)
}

// BookID derives a stable book identifier from its product page URL.
func BookID(sourceURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(sourceURL))
}

// ContentHash fingerprints the scraped fields of a book so that changes
// between scrapes can be detected.
func ContentHash(b *bookhaven.Book) string {
	price := ""
	if b.Price.Valid {
		price = b.Price.Decimal.String()
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join([]string{
		b.Title, price, fmt.Sprint(b.Rating), b.Description,
	}, "\x1f")))
}

// Scrape fetches opts.Pages listing pages concurrently and returns their
// books in page order, deduplicated by product URL.
func (s *Scraper) Scrape(ctx context.Context, opts bookhaven.ScrapeOptions) (*bookhaven.ScrapeResult, error) {
	pages := opts.Pages
	if pages <= 0 {
		pages = bookhaven.DefaultScrapePages
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	urls := make([]string, pages)
	for i := range urls {
		urls[i] = PageURL(baseURL, i+1)
	}

	s.notify(ProgressEvent{Type: ProgressStarted, Total: len(urls)})

	resultCh := make(chan pageResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	go func() {
		for i, pageURL := range urls {
			g.Go(func() error {
				resultCh <- s.scrapePage(gctx, i, pageURL)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]pageResult, len(urls))
	var completed int
	for r := range resultCh {
		completed++
		results[r.position] = r
		if r.err != nil {
			s.notify(ProgressEvent{Type: ProgressFailed, Completed: completed, Total: len(urls), URL: r.url, Error: r.err})
		} else {
			s.notify(ProgressEvent{Type: ProgressCompleted, Completed: completed, Total: len(urls), URL: r.url})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &bookhaven.ScrapeResult{PagesTotal: len(urls)}
	seen := bloom.NewSet(seenExpectedBooks, seenFalsePositive)
	now := time.Now().UTC()
	var firstErr error

	for _, r := range results {
		if r.err != nil {
			result.PagesFailed++
			result.FailedURLs = append(result.FailedURLs, r.url)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for _, b := range r.books {
			if !seen.Add(b.SourceURL) {
				continue
			}
			b.ID = BookID(b.SourceURL)
			b.Position = len(result.Books)
			b.ScrapedAt = now
			result.Books = append(result.Books, b)
		}
	}

	if result.PagesFailed == result.PagesTotal {
		return nil, bookhaven.Errorf(bookhaven.EUNAVAILABLE, "no catalog page could be read: %v", firstErr)
	}

	if opts.Details {
		failed, err := s.enrich(ctx, result.Books)
		if err != nil {
			return nil, err
		}
		result.DetailsFailed = failed
	}

	for _, b := range result.Books {
		b.ContentHash = ContentHash(b)
	}

	s.notify(ProgressEvent{Type: ProgressFinished, Completed: len(urls), Total: len(urls)})

	return result, nil
}

// scrapePage fetches and parses a single listing page.
func (s *Scraper) scrapePage(ctx context.Context, position int, pageURL string) pageResult {
	result := pageResult{position: position, url: pageURL}

	html, err := s.fetch(ctx, pageURL)
	if err != nil {
		result.err = err
		return result
	}

	books, err := s.Parser.ParseCatalog(html, pageURL)
	if err != nil {
		result.err = err
		return result
	}
	result.books = books
	return result
}

// enrich fetches the product page of every book and fills in its detail
// fields. It returns the number of books whose product page failed.
func (s *Scraper) enrich(ctx context.Context, books []*bookhaven.Book) (int, error) {
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for _, b := range books {
		g.Go(func() error {
			if err := s.enrichBook(gctx, b); err != nil {
				failed.Add(1)
				s.notify(ProgressEvent{Type: ProgressFailed, URL: b.SourceURL, Error: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int(failed.Load()), nil
}

func (s *Scraper) enrichBook(ctx context.Context, b *bookhaven.Book) error {
	html, err := s.fetch(ctx, b.SourceURL)
	if err != nil {
		return err
	}

	detail, err := s.Parser.ParseDetail(html)
	if err != nil {
		return err
	}

	b.UPC = detail.UPC
	b.Category = detail.Category
	if detail.Availability != "" {
		b.Availability = detail.Availability
	}
	if detail.DescriptionHTML != "" {
		description := detail.DescriptionHTML
		if s.Converter != nil {
			markdown, err := s.Converter.Convert(detail.DescriptionHTML)
			if err != nil {
				return fmt.Errorf("convert description: %w", err)
			}
			description = markdown
		}
		b.Description = strings.TrimSpace(description)
	}
	return nil
}

// fetch waits for the domain rate limit and fetches rawURL with retries.
func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, error) {
	if s.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", bookhaven.Errorf(bookhaven.EINVALID, "invalid URL %q: %v", rawURL, err)
		}
		if err := s.RateLimiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetry(ctx, rawURL, s.Fetcher.Fetch, delays, s.OnRetry)
}

func (s *Scraper) concurrency() int {
	if s.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return s.Concurrency
}

func (s *Scraper) notify(event ProgressEvent) {
	if s.Progress == nil {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.Progress(event)
}
