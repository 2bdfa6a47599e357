// Package lru caches scrape results in an expiring LRU.
package lru

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/bookhaven"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a scrape result is served from the cache.
const DefaultTTL = 10 * time.Minute

// defaultSize bounds the number of distinct option sets kept.
const defaultSize = 16

var _ bookhaven.Scraper = (*CachedScraper)(nil)

// CachedScraper serves repeated scrapes with the same options from memory
// until the entry expires. Concurrent misses for the same options share a
// single scrape.
type CachedScraper struct {
	next   bookhaven.Scraper
	cache  *expirable.LRU[bookhaven.ScrapeOptions, *bookhaven.ScrapeResult]
	flight singleflight.Group
}

// NewCachedScraper wraps next with a cache whose entries live for ttl.
// A non-positive ttl uses DefaultTTL.
func NewCachedScraper(next bookhaven.Scraper, ttl time.Duration) *CachedScraper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedScraper{
		next:  next,
		cache: expirable.NewLRU[bookhaven.ScrapeOptions, *bookhaven.ScrapeResult](defaultSize, nil, ttl),
	}
}

// Scrape returns the cached result for opts or scrapes and caches it.
// Failed scrapes are not cached. A caller whose context ends while waiting
// on a shared scrape returns the context error.
func (s *CachedScraper) Scrape(ctx context.Context, opts bookhaven.ScrapeOptions) (*bookhaven.ScrapeResult, error) {
	key := normalize(opts)
	if res, ok := s.cache.Get(key); ok {
		return res, nil
	}

	ch := s.flight.DoChan(flightKey(key), func() (any, error) {
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
		res, err := s.next.Scrape(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*bookhaven.ScrapeResult), nil
	}
}

// Invalidate drops every cached result.
func (s *CachedScraper) Invalidate() {
	s.cache.Purge()
}

func normalize(opts bookhaven.ScrapeOptions) bookhaven.ScrapeOptions {
	if opts.Pages <= 0 {
		opts.Pages = bookhaven.DefaultScrapePages
	}
	return opts
}

func flightKey(opts bookhaven.ScrapeOptions) string {
	return fmt.Sprintf("%d|%t", opts.Pages, opts.Details)
}
