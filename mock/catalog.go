package mock

import (
	"context"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.Catalog = (*Catalog)(nil)

// Catalog is a mock implementation of bookhaven.Catalog.
type Catalog struct {
	BooksFn   func(ctx context.Context) ([]*bookhaven.Book, error)
	RefreshFn func(ctx context.Context) ([]*bookhaven.Book, error)
}

func (c *Catalog) Books(ctx context.Context) ([]*bookhaven.Book, error) {
	return c.BooksFn(ctx)
}

func (c *Catalog) Refresh(ctx context.Context) ([]*bookhaven.Book, error) {
	return c.RefreshFn(ctx)
}

var _ bookhaven.Recommender = (*Recommender)(nil)

// Recommender is a mock implementation of bookhaven.Recommender.
type Recommender struct {
	RecommendFn func(books []*bookhaven.Book, topN int) []bookhaven.Recommendation
}

func (r *Recommender) Recommend(books []*bookhaven.Book, topN int) []bookhaven.Recommendation {
	return r.RecommendFn(books, topN)
}
