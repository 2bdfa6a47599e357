package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/bookhaven"
	"github.com/fwojciec/bookhaven/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	noDelays := []time.Duration{0, 0, 0}

	t.Run("returns first successful response", func(t *testing.T) {
		t.Parallel()

		calls := 0
		html, err := scrape.FetchWithRetry(context.Background(), "http://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			return "<html></html>", nil
		}, noDelays, nil)

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var attempts []int
		html, err := scrape.FetchWithRetry(context.Background(), "http://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("connection reset")
			}
			return "ok", nil
		}, noDelays, func(_ string, attempt int, _ error) {
			attempts = append(attempts, attempt)
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{2, 3}, attempts)
	})

	t.Run("gives up after all delays are used", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := scrape.FetchWithRetry(context.Background(), "http://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			return "", errors.New("HTTP 503")
		}, noDelays, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, 4, calls, "1 initial attempt + 3 retries")
	})

	t.Run("does not retry not found", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := scrape.FetchWithRetry(context.Background(), "http://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			return "", bookhaven.Errorf(bookhaven.ENOTFOUND, "HTTP 404")
		}, noDelays, nil)

		require.Error(t, err)
		assert.Equal(t, bookhaven.ENOTFOUND, bookhaven.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := scrape.FetchWithRetry(ctx, "http://example.com", func(_ context.Context, _ string) (string, error) {
			return "", errors.New("timeout")
		}, []time.Duration{10 * time.Second}, nil)

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}
