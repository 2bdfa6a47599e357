package bookhaven

import "context"

// DefaultScrapePages is the number of catalog pages scraped when unspecified.
const DefaultScrapePages = 2

// ScrapeOptions configures a catalog scrape.
type ScrapeOptions struct {
	// Pages is the number of catalog listing pages to read, starting at page 1.
	Pages int

	// Details enables fetching each book's product page for its description.
	Details bool
}

// ScrapeResult holds the outcome of a catalog scrape.
type ScrapeResult struct {
	Books       []*Book
	PagesTotal  int
	PagesFailed int
	FailedURLs  []string

	// DetailsFailed counts product pages that could not be read when
	// ScrapeOptions.Details is set. Those books keep their listing fields.
	DetailsFailed int
}

// Scraper reads the remote catalog.
type Scraper interface {
	// Scrape fetches catalog pages and returns the books found on them.
	// Individual page failures are reported in the result; an error is
	// returned only when no page could be read or the context ends.
	Scrape(ctx context.Context, opts ScrapeOptions) (*ScrapeResult, error)
}

// CatalogParser extracts books from catalog HTML.
type CatalogParser interface {
	// ParseCatalog parses a listing page. pageURL resolves relative links.
	ParseCatalog(html string, pageURL string) ([]*Book, error)

	// ParseDetail parses a product page.
	ParseDetail(html string) (*BookDetail, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
