package main_test

import (
	"bytes"
	"context"

	"github.com/fwojciec/bookhaven"
	main "github.com/fwojciec/bookhaven/cmd/bookhaven"
	"github.com/fwojciec/bookhaven/mock"
	"github.com/shopspring/decimal"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func storedCatalog() []*bookhaven.Book {
	return []*bookhaven.Book{
		{ID: "b1", Title: "The Night Circus", Price: price("10.00"), Rating: 5, SourceURL: "https://books.example/catalogue/the-night-circus_1/index.html"},
		{ID: "b2", Title: "Night Watch", Price: price("12.50"), Rating: 3, SourceURL: "https://books.example/catalogue/night-watch_2/index.html"},
		{ID: "b3", Title: "Gardening Basics", Price: price("8.00"), Rating: 3, SourceURL: "https://books.example/catalogue/gardening-basics_3/index.html"},
		{ID: "b4", Title: "Untitled Draft", SourceURL: "https://books.example/catalogue/untitled-draft_4/index.html"},
	}
}

func bookStore(books []*bookhaven.Book, err error) *mock.BookService {
	return &mock.BookService{
		FindBooksFn: func(_ context.Context, _ bookhaven.BookFilter) ([]*bookhaven.Book, error) {
			return books, err
		},
	}
}

func newDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
	}
}
