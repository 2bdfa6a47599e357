package bookhaven_test

import (
	"testing"

	"github.com/fwojciec/bookhaven"
	"github.com/stretchr/testify/assert"
)

func TestComputeRatingStats(t *testing.T) {
	t.Parallel()

	t.Run("summarizes known ratings", func(t *testing.T) {
		t.Parallel()

		books := []*bookhaven.Book{
			{Title: "a", Rating: 3},
			{Title: "b", Rating: 1},
			{Title: "c", Rating: 5},
			{Title: "d", Rating: 3},
			{Title: "e", Rating: 0},
		}

		stats := bookhaven.ComputeRatingStats(books)

		assert.Equal(t, 4, stats.Count)
		assert.Equal(t, 5, stats.Highest)
		assert.Equal(t, 1, stats.Lowest)
		assert.InDelta(t, 3.0, stats.Average, 1e-9)
		assert.Equal(t, map[int]int{1: 1, 3: 2, 5: 1}, stats.Distribution)
		assert.Equal(t, []int{1, 3, 5}, stats.Labels())
		assert.Equal(t, []int{1, 2, 1}, stats.Values())
	})

	t.Run("rounds average to two decimals", func(t *testing.T) {
		t.Parallel()

		books := []*bookhaven.Book{
			{Title: "a", Rating: 1},
			{Title: "b", Rating: 2},
			{Title: "c", Rating: 2},
		}

		stats := bookhaven.ComputeRatingStats(books)

		assert.InDelta(t, 1.67, stats.Average, 1e-9)
	})

	t.Run("rounds half cent averages to even", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			ratings []int
			want    float64
		}{
			{name: "2.125 rounds down", ratings: []int{1, 1, 1, 1, 1, 4, 4, 4}, want: 2.12},
			{name: "2.375 rounds up", ratings: []int{1, 1, 1, 1, 4, 4, 4, 3}, want: 2.38},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				books := make([]*bookhaven.Book, 0, len(tt.ratings))
				for _, r := range tt.ratings {
					books = append(books, &bookhaven.Book{Title: "t", Rating: r})
				}

				stats := bookhaven.ComputeRatingStats(books)

				assert.InDelta(t, tt.want, stats.Average, 1e-9)
			})
		}
	})

	t.Run("returns empty stats without rated books", func(t *testing.T) {
		t.Parallel()

		stats := bookhaven.ComputeRatingStats([]*bookhaven.Book{{Title: "a"}})

		assert.Zero(t, stats.Count)
		assert.Zero(t, stats.Average)
		assert.Empty(t, stats.Distribution)
		assert.Empty(t, stats.Labels())
	})
}
