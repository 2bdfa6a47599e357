package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/bookhaven"
	"github.com/fwojciec/bookhaven/mock"
	bhslog "github.com/fwojciec/bookhaven/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageOne = "http://books.toscrape.com/catalogue/page-1.html"

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		html    string
		err     error
		want    []string
		wantNot []string
	}{
		{
			name:    "success at debug level",
			html:    "<ol class=\"row\"></ol>",
			want:    []string{"level=DEBUG", "msg=fetch", "url=" + pageOne, "bytes=21", "duration="},
			wantNot: []string{"err="},
		},
		{
			name: "not found as warning with code",
			err:  bookhaven.Errorf(bookhaven.ENOTFOUND, "HTTP 404 for %s", pageOne),
			want: []string{"level=WARN", `msg="fetch failed"`, "code=not_found", "err="},
		},
		{
			name: "plain error reported as internal",
			err:  errors.New("connection reset"),
			want: []string{"level=WARN", "code=internal", `err="connection reset"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			inner := &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					assert.Equal(t, pageOne, url)
					return tt.html, tt.err
				},
			}

			html, err := bhslog.NewLoggingFetcher(inner, debugLogger(&buf)).Fetch(context.Background(), pageOne)

			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.html, html)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.wantNot {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}

	t.Run("success is silent at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) { return "<html></html>", nil },
		}

		_, err := bhslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil))).Fetch(context.Background(), pageOne)

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("browser already gone")
	inner := &mock.Fetcher{CloseFn: func() error { return closeErr }}

	err := bhslog.NewLoggingFetcher(inner, slog.New(slog.DiscardHandler)).Close()
	assert.Equal(t, closeErr, err)
}
