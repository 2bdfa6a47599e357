package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/bookhaven"
)

// barWidth is the width of the longest distribution bar.
const barWidth = 40

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	books, err := storedBooks(deps)
	if err != nil {
		return err
	}

	stats := bookhaven.ComputeRatingStats(books)
	if stats.Count == 0 {
		fmt.Fprintln(deps.Stdout, "No rated books.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Books rated:    %d of %d\n", stats.Count, len(books))
	fmt.Fprintf(deps.Stdout, "Average rating: %.2f\n", stats.Average)
	fmt.Fprintf(deps.Stdout, "Highest rating: %d\n", stats.Highest)
	fmt.Fprintf(deps.Stdout, "Lowest rating:  %d\n", stats.Lowest)
	fmt.Fprintln(deps.Stdout)

	peak := 0
	for _, v := range stats.Values() {
		peak = max(peak, v)
	}
	for _, rating := range stats.Labels() {
		n := stats.Distribution[rating]
		bar := strings.Repeat("#", max(1, n*barWidth/peak))
		fmt.Fprintf(deps.Stdout, "%d star%s %-*s %d\n", rating, plural(rating), barWidth, bar, n)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return " "
	}
	return "s"
}
