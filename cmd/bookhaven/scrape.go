package main

import (
	"fmt"

	"github.com/fwojciec/bookhaven"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	result, err := deps.Scraper.Scrape(deps.Ctx, c.Options())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookhaven.ErrorMessage(err))
		return err
	}

	store := deps.Books.UpsertBooks
	if c.Replace {
		store = deps.Books.ReplaceBooks
	}
	if err := store(deps.Ctx, result.Books); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookhaven.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Scraped %d books from %d pages\n", len(result.Books), result.PagesTotal-result.PagesFailed)
	for _, u := range result.FailedURLs {
		fmt.Fprintf(deps.Stdout, "  failed: %s\n", u)
	}
	if result.DetailsFailed > 0 {
		fmt.Fprintf(deps.Stdout, "  %d product pages could not be read\n", result.DetailsFailed)
	}
	return nil
}
