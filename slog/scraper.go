package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.Scraper = (*LoggingScraper)(nil)

// LoggingScraper wraps a Scraper and logs a summary of every scrape.
type LoggingScraper struct {
	next   bookhaven.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next bookhaven.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper. Partial failures are logged at
// warn level.
func (s *LoggingScraper) Scrape(ctx context.Context, opts bookhaven.ScrapeOptions) (res *bookhaven.ScrapeResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"pages", opts.Pages,
			"details", opts.Details,
			"duration", time.Since(begin),
		}
		switch {
		case err != nil:
			s.logger.Error("scrape", append(attrs, "err", err)...)
		case res.PagesFailed > 0 || res.DetailsFailed > 0:
			s.logger.Warn("scrape", append(attrs,
				"books", len(res.Books),
				"pages_failed", res.PagesFailed,
				"failed_urls", res.FailedURLs,
				"details_failed", res.DetailsFailed)...)
		default:
			s.logger.Info("scrape", append(attrs, "books", len(res.Books))...)
		}
	}(time.Now())
	return s.next.Scrape(ctx, opts)
}

// Invalidate forwards to the wrapped scraper when it caches results.
func (s *LoggingScraper) Invalidate() {
	if inv, ok := s.next.(interface{ Invalidate() }); ok {
		s.logger.Info("scrape cache invalidated")
		inv.Invalidate()
	}
}
