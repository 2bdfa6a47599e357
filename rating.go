package bookhaven

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MaxRating is the highest star rating a book can have.
const MaxRating = 5

var ratingWords = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

// ParseRating converts a star-rating class word ("One" through "Five")
// into a numeric rating. Unknown words return 0.
func ParseRating(word string) int {
	return ratingWords[word]
}

// RatingStats summarizes the ratings of a set of books.
type RatingStats struct {
	Average      float64     `json:"averageRating"`
	Highest      int         `json:"highestRating"`
	Lowest       int         `json:"lowestRating"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"ratingDistribution"`
}

// Labels returns the distinct ratings in ascending order.
func (s RatingStats) Labels() []int {
	labels := make([]int, 0, len(s.Distribution))
	for rating := range s.Distribution {
		labels = append(labels, rating)
	}
	sort.Ints(labels)
	return labels
}

// Values returns the distribution counts in the order of Labels.
func (s RatingStats) Values() []int {
	labels := s.Labels()
	values := make([]int, len(labels))
	for i, rating := range labels {
		values[i] = s.Distribution[rating]
	}
	return values
}

// ComputeRatingStats summarizes ratings over books with a known rating.
// The average is rounded to two decimal places, half to even.
func ComputeRatingStats(books []*Book) RatingStats {
	stats := RatingStats{Distribution: make(map[int]int)}

	var sum int
	for _, b := range books {
		if b.Rating < 1 || b.Rating > MaxRating {
			continue
		}
		if stats.Count == 0 || b.Rating > stats.Highest {
			stats.Highest = b.Rating
		}
		if stats.Count == 0 || b.Rating < stats.Lowest {
			stats.Lowest = b.Rating
		}
		stats.Count++
		sum += b.Rating
		stats.Distribution[b.Rating]++
	}

	if stats.Count > 0 {
		stats.Average = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(stats.Count))).
			RoundBank(2).
			InexactFloat64()
	}

	return stats
}
