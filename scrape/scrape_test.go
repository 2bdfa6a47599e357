package scrape_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/bookhaven"
	"github.com/fwojciec/bookhaven/mock"
	"github.com/fwojciec/bookhaven/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageFetcher serves canned HTML keyed by URL; unknown URLs fail.
func pageFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			html, ok := pages[url]
			if !ok {
				return "", bookhaven.Errorf(bookhaven.ENOTFOUND, "HTTP 404 for %s", url)
			}
			return html, nil
		},
	}
}

// lineParser treats each non-empty line of a page as "title|href".
func lineParser() *mock.CatalogParser {
	return &mock.CatalogParser{
		ParseCatalogFn: func(html string, pageURL string) ([]*bookhaven.Book, error) {
			var books []*bookhaven.Book
			for _, line := range strings.Split(html, "\n") {
				if line == "" {
					continue
				}
				title, href, _ := strings.Cut(line, "|")
				books = append(books, &bookhaven.Book{
					Title:     title,
					SourceURL: href,
					Price:     bookhaven.ParsePrice("£10.00"),
					Rating:    3,
				})
			}
			return books, nil
		},
		ParseDetailFn: func(html string) (*bookhaven.BookDetail, error) {
			return &bookhaven.BookDetail{DescriptionHTML: "<p>" + html + "</p>", UPC: "upc-" + html, Category: "Poetry"}, nil
		},
	}
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://books.toscrape.com/catalogue/page-1.html", scrape.PageURL("http://books.toscrape.com", 1))
	assert.Equal(t, "http://books.toscrape.com/catalogue/page-12.html", scrape.PageURL("http://books.toscrape.com/", 12))
}

func TestBookID(t *testing.T) {
	t.Parallel()

	a := scrape.BookID("http://books.toscrape.com/catalogue/a_1/index.html")
	b := scrape.BookID("http://books.toscrape.com/catalogue/b_2/index.html")

	assert.Len(t, a, 16)
	assert.Equal(t, a, scrape.BookID("http://books.toscrape.com/catalogue/a_1/index.html"))
	assert.NotEqual(t, a, b)
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	b := &bookhaven.Book{Title: "Dune", Price: bookhaven.ParsePrice("£9.99"), Rating: 4}
	h := scrape.ContentHash(b)

	b.Rating = 5
	assert.NotEqual(t, h, scrape.ContentHash(b), "rating change alters hash")

	b.Rating = 4
	assert.Equal(t, h, scrape.ContentHash(b))

	b.Description = "A desert planet."
	assert.NotEqual(t, h, scrape.ContentHash(b), "description change alters hash")

	b.Description = ""
	b.ImageURL = "http://books.test/media/cache/dune.jpg"
	assert.Equal(t, h, scrape.ContentHash(b), "image URL is not part of the hash")
}

func TestScraper_Scrape(t *testing.T) {
	t.Parallel()

	base := "http://books.test"

	t.Run("returns books from all pages in page order", func(t *testing.T) {
		t.Parallel()

		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: pageFetcher(map[string]string{
				base + "/catalogue/page-1.html": "A|http://books.test/a\nB|http://books.test/b",
				base + "/catalogue/page-2.html": "C|http://books.test/c",
			}),
			Parser:      lineParser(),
			Concurrency: 2,
			RetryDelays: []time.Duration{0},
		}

		result, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 2})

		require.NoError(t, err)
		require.Len(t, result.Books, 3)
		assert.Equal(t, "A", result.Books[0].Title)
		assert.Equal(t, "B", result.Books[1].Title)
		assert.Equal(t, "C", result.Books[2].Title)
		for i, b := range result.Books {
			assert.Equal(t, i, b.Position)
			assert.Equal(t, scrape.BookID(b.SourceURL), b.ID)
			assert.NotEmpty(t, b.ContentHash)
			assert.False(t, b.ScrapedAt.IsZero())
		}
		assert.Equal(t, 2, result.PagesTotal)
		assert.Zero(t, result.PagesFailed)
	})

	t.Run("defaults to two pages", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var fetched []string
		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					mu.Lock()
					fetched = append(fetched, url)
					mu.Unlock()
					return "", nil
				},
			},
			Parser:      lineParser(),
			RetryDelays: []time.Duration{},
		}

		result, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{})

		require.NoError(t, err)
		assert.Equal(t, 2, result.PagesTotal)
		assert.ElementsMatch(t, []string{base + "/catalogue/page-1.html", base + "/catalogue/page-2.html"}, fetched)
	})

	t.Run("deduplicates books appearing on several pages", func(t *testing.T) {
		t.Parallel()

		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: pageFetcher(map[string]string{
				base + "/catalogue/page-1.html": "A|http://books.test/a",
				base + "/catalogue/page-2.html": "A again|http://books.test/a\nB|http://books.test/b",
			}),
			Parser:      lineParser(),
			RetryDelays: []time.Duration{0},
		}

		result, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 2})

		require.NoError(t, err)
		require.Len(t, result.Books, 2)
		assert.Equal(t, "A", result.Books[0].Title)
		assert.Equal(t, "B", result.Books[1].Title)
	})

	t.Run("skips failed pages and reports them", func(t *testing.T) {
		t.Parallel()

		var events []scrape.ProgressEvent
		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: pageFetcher(map[string]string{
				base + "/catalogue/page-1.html": "A|http://books.test/a",
			}),
			Parser:      lineParser(),
			RetryDelays: []time.Duration{0},
			Progress: func(e scrape.ProgressEvent) {
				events = append(events, e)
			},
		}

		result, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 2})

		require.NoError(t, err)
		assert.Len(t, result.Books, 1)
		assert.Equal(t, 1, result.PagesFailed)
		assert.Equal(t, []string{base + "/catalogue/page-2.html"}, result.FailedURLs)

		require.NotEmpty(t, events)
		assert.Equal(t, scrape.ProgressStarted, events[0].Type)
		assert.Equal(t, scrape.ProgressFinished, events[len(events)-1].Type)
		var failed int
		for _, e := range events {
			if e.Type == scrape.ProgressFailed {
				failed++
			}
		}
		assert.Equal(t, 1, failed)
	})

	t.Run("returns unavailable when every page fails", func(t *testing.T) {
		t.Parallel()

		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					return "", errors.New("connection refused")
				},
			},
			Parser:      lineParser(),
			RetryDelays: []time.Duration{0, 0},
		}

		_, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 3})

		require.Error(t, err)
		assert.Equal(t, bookhaven.EUNAVAILABLE, bookhaven.ErrorCode(err))
		assert.Contains(t, bookhaven.ErrorMessage(err), "connection refused")
	})

	t.Run("retries transient page failures", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		attempts := 0
		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					mu.Lock()
					defer mu.Unlock()
					attempts++
					if attempts == 1 {
						return "", errors.New("HTTP 503")
					}
					return "A|http://books.test/a", nil
				},
			},
			Parser:      lineParser(),
			RetryDelays: []time.Duration{0},
		}

		result, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 1})

		require.NoError(t, err)
		assert.Len(t, result.Books, 1)
		assert.Equal(t, 2, attempts)
	})

	t.Run("waits on rate limiter per host", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var domains []string
		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: pageFetcher(map[string]string{
				base + "/catalogue/page-1.html": "A|http://books.test/a",
			}),
			Parser: lineParser(),
			RateLimiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					mu.Lock()
					domains = append(domains, domain)
					mu.Unlock()
					return nil
				},
			},
			RetryDelays: []time.Duration{0},
		}

		_, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 1})

		require.NoError(t, err)
		assert.Equal(t, []string{"books.test"}, domains)
	})

	t.Run("enriches books from product pages", func(t *testing.T) {
		t.Parallel()

		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: pageFetcher(map[string]string{
				base + "/catalogue/page-1.html": "A|http://books.test/a\nB|http://books.test/b",
				"http://books.test/a":           "alpha",
			}),
			Parser: lineParser(),
			Converter: &mock.Converter{
				ConvertFn: func(html string) (string, error) {
					return strings.TrimSuffix(strings.TrimPrefix(html, "<p>"), "</p>") + "\n", nil
				},
			},
			RetryDelays: []time.Duration{0},
		}

		result, err := s.Scrape(context.Background(), bookhaven.ScrapeOptions{Pages: 1, Details: true})

		require.NoError(t, err)
		require.Len(t, result.Books, 2)
		assert.Equal(t, "alpha", result.Books[0].Description)
		assert.Equal(t, "upc-alpha", result.Books[0].UPC)
		assert.Equal(t, "Poetry", result.Books[0].Category)
		assert.Empty(t, result.Books[1].Description, "failed detail leaves listing fields")
		assert.Equal(t, 1, result.DetailsFailed)
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := &scrape.Scraper{
			BaseURL: base,
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, _ string) (string, error) {
					return "", ctx.Err()
				},
			},
			Parser:      lineParser(),
			RetryDelays: []time.Duration{0},
		}

		_, err := s.Scrape(ctx, bookhaven.ScrapeOptions{Pages: 2})

		require.ErrorIs(t, err, context.Canceled)
	})
}
