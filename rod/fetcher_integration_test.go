//go:build integration

package rod_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/bookhaven/goquery"
	"github.com/fwojciec/bookhaven/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reads the live bookstore; requires network access and Chrome.
func TestFetcher_Integration_BooksToScrape(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fetcher, err := rod.NewFetcher(rod.WithWaitSelector("article.product_pod, article.product_page"))
	require.NoError(t, err)
	defer fetcher.Close()
	parser := goquery.NewCatalogParser()

	listURL := "http://books.toscrape.com/catalogue/page-1.html"
	listing, err := fetcher.Fetch(ctx, listURL)
	require.NoError(t, err)

	books, err := parser.ParseCatalog(listing, listURL)
	require.NoError(t, err)
	require.Len(t, books, 20)
	for _, b := range books {
		assert.NotEmpty(t, b.Title)
		assert.True(t, b.HasPrice(), b.Title)
		assert.NotContains(t, b.ImageURL, "../")
	}

	product, err := fetcher.Fetch(ctx, books[0].SourceURL)
	require.NoError(t, err)

	detail, err := parser.ParseDetail(product)
	require.NoError(t, err)
	assert.NotEmpty(t, detail.UPC)
	assert.NotEmpty(t, detail.Category)
}
