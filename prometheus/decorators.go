package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.Fetcher = (*Fetcher)(nil)

// Fetcher counts and times fetches made by the wrapped Fetcher.
type Fetcher struct {
	next    bookhaven.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next with metrics.
func NewFetcher(next bookhaven.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

// Fetch delegates to the wrapped fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url)
	f.metrics.fetchDuration.Observe(time.Since(begin).Seconds())
	f.metrics.fetches.WithLabelValues(result(err)).Inc()
	return html, err
}

// Close delegates to the wrapped fetcher.
func (f *Fetcher) Close() error {
	return f.next.Close()
}

var _ bookhaven.Scraper = (*Scraper)(nil)

// Scraper records scrape outcomes of the wrapped Scraper.
type Scraper struct {
	next    bookhaven.Scraper
	metrics *Metrics
}

// NewScraper wraps next with metrics.
func NewScraper(next bookhaven.Scraper, m *Metrics) *Scraper {
	return &Scraper{next: next, metrics: m}
}

// Scrape delegates to the wrapped scraper.
func (s *Scraper) Scrape(ctx context.Context, opts bookhaven.ScrapeOptions) (*bookhaven.ScrapeResult, error) {
	begin := time.Now()
	res, err := s.next.Scrape(ctx, opts)
	s.metrics.scrapeDuration.Observe(time.Since(begin).Seconds())
	s.metrics.scrapes.WithLabelValues(result(err)).Inc()
	if err == nil {
		s.metrics.catalogBooks.Set(float64(len(res.Books)))
		s.metrics.pagesFailed.Add(float64(res.PagesFailed))
	}
	return res, err
}

var _ bookhaven.OrderService = (*OrderService)(nil)

// OrderService counts orders stored through the wrapped OrderService.
type OrderService struct {
	next    bookhaven.OrderService
	metrics *Metrics
}

// NewOrderService wraps next with metrics.
func NewOrderService(next bookhaven.OrderService, m *Metrics) *OrderService {
	return &OrderService{next: next, metrics: m}
}

// CreateOrder delegates to the wrapped service and counts stored orders.
func (s *OrderService) CreateOrder(ctx context.Context, order *bookhaven.Order) error {
	if err := s.next.CreateOrder(ctx, order); err != nil {
		return err
	}
	s.metrics.orders.WithLabelValues(string(order.Payment)).Inc()
	s.metrics.orderRevenue.Add(order.Total.InexactFloat64())
	return nil
}

// FindOrderByID delegates to the wrapped service.
func (s *OrderService) FindOrderByID(ctx context.Context, id string) (*bookhaven.Order, error) {
	return s.next.FindOrderByID(ctx, id)
}

// FindOrders delegates to the wrapped service.
func (s *OrderService) FindOrders(ctx context.Context, filter bookhaven.OrderFilter) ([]*bookhaven.Order, error) {
	return s.next.FindOrders(ctx, filter)
}
