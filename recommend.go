package bookhaven

// DefaultRecommendations is the number of recommendations shown per book.
const DefaultRecommendations = 5

// Recommendation lists the books most similar to a given book.
type Recommendation struct {
	BookID string            `json:"bookId"`
	Title  string            `json:"title"`
	Items  []RecommendedBook `json:"items"`
}

// RecommendedBook is a single similar book with its similarity score.
type RecommendedBook struct {
	BookID string  `json:"bookId"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
}

// Titles returns the titles of the recommended books in rank order.
func (r Recommendation) Titles() []string {
	titles := make([]string, len(r.Items))
	for i, item := range r.Items {
		titles[i] = item.Title
	}
	return titles
}

// Recommender ranks books by textual similarity.
type Recommender interface {
	// Recommend returns one Recommendation per book, in input order.
	// Each lists up to topN other books ordered by descending similarity.
	Recommend(books []*Book, topN int) []Recommendation
}
