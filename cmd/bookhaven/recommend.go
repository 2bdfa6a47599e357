package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/bookhaven"
)

// Run executes the recommend command.
func (c *RecommendCmd) Run(deps *Dependencies) error {
	books, err := storedBooks(deps)
	if err != nil {
		return err
	}

	idx := -1
	for i, b := range books {
		if strings.EqualFold(b.Title, c.Title) {
			idx = i
			break
		}
	}
	if idx < 0 {
		err := bookhaven.Errorf(bookhaven.ENOTFOUND, "book %q not found", c.Title)
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookhaven.ErrorMessage(err))
		return err
	}

	recs := deps.Recommender.Recommend(books, c.Top)
	items := recs[idx].Items
	if len(items) == 0 {
		fmt.Fprintf(deps.Stdout, "No similar books found for %q.\n", books[idx].Title)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Books similar to %q:\n", books[idx].Title)
	for i, item := range items {
		fmt.Fprintf(deps.Stdout, "%2d. %s  (%.3f)\n", i+1, item.Title, item.Score)
	}
	return nil
}

// storedBooks returns the stored catalog in display order. An empty store is
// reported as ENOTFOUND with a hint to scrape first.
func storedBooks(deps *Dependencies) ([]*bookhaven.Book, error) {
	books, err := deps.Books.FindBooks(deps.Ctx, bookhaven.BookFilter{SortBy: bookhaven.SortByPosition})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookhaven.ErrorMessage(err))
		return nil, err
	}
	if len(books) == 0 {
		err := bookhaven.Errorf(bookhaven.ENOTFOUND, "no stored books")
		fmt.Fprintln(deps.Stderr, "error: no stored books. Run 'bookhaven scrape' first.")
		return nil, err
	}
	return books, nil
}
