package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/bookhaven"
	bhhttp "github.com/fwojciec/bookhaven/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server.URL
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns listing HTML", func(t *testing.T) {
		t.Parallel()

		url := startServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Contains(t, r.Header.Get("Accept"), "text/html")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<article class="product_pod"></article>`))
		})

		html, err := bhhttp.NewFetcher().Fetch(context.Background(), url)

		require.NoError(t, err)
		assert.Equal(t, `<article class="product_pod"></article>`, html)
	})

	t.Run("decodes charset from content type", func(t *testing.T) {
		t.Parallel()

		url := startServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p class=\"price_color\">\xa351.77</p>"))
		})

		html, err := bhhttp.NewFetcher().Fetch(context.Background(), url)

		require.NoError(t, err)
		assert.Equal(t, `<p class="price_color">£51.77</p>`, html)
	})

	t.Run("decodes charset from meta tag", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><meta charset="utf-8"></head><body><p class="price_color">£51.77</p></body></html>`
		url := startServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(page))
		})

		html, err := bhhttp.NewFetcher().Fetch(context.Background(), url)

		require.NoError(t, err)
		assert.Equal(t, page, html)
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		agents := make(chan string, 2)
		url := startServer(t, func(w http.ResponseWriter, r *http.Request) {
			agents <- r.UserAgent()
		})

		_, err := bhhttp.NewFetcher().Fetch(context.Background(), url)
		require.NoError(t, err)
		assert.Equal(t, bhhttp.DefaultUserAgent, <-agents)

		_, err = bhhttp.NewFetcher(bhhttp.WithUserAgent("bookhaven-test")).Fetch(context.Background(), url)
		require.NoError(t, err)
		assert.Equal(t, "bookhaven-test", <-agents)
	})

	t.Run("maps status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			status int
			code   string
		}{
			{http.StatusNotFound, bookhaven.ENOTFOUND},
			{http.StatusGone, bookhaven.ENOTFOUND},
			{http.StatusTooManyRequests, bookhaven.EUNAVAILABLE},
			{http.StatusInternalServerError, bookhaven.EUNAVAILABLE},
			{http.StatusServiceUnavailable, bookhaven.EUNAVAILABLE},
		}

		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				t.Parallel()

				url := startServer(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				})

				_, err := bhhttp.NewFetcher().Fetch(context.Background(), url)

				require.Error(t, err)
				assert.Equal(t, tt.code, bookhaven.ErrorCode(err))
			})
		}
	})

	t.Run("times out slow pages", func(t *testing.T) {
		t.Parallel()

		url := startServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		})

		_, err := bhhttp.NewFetcher(bhhttp.WithTimeout(10*time.Millisecond)).Fetch(context.Background(), url)
		require.Error(t, err)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		url := startServer(t, func(w http.ResponseWriter, r *http.Request) {})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := bhhttp.NewFetcher().Fetch(ctx, url)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		t.Parallel()

		_, err := bhhttp.NewFetcher().Fetch(context.Background(), "http://bad host/\x7f")

		require.Error(t, err)
		assert.Equal(t, bookhaven.EINVALID, bookhaven.ErrorCode(err))
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	assert.NoError(t, bhhttp.NewFetcher().Close())
}
