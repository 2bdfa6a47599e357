// Package tfidf recommends books by TF-IDF cosine similarity of their text.
package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.Recommender = (*Recommender)(nil)

// Recommender ranks books by the cosine similarity of their TF-IDF vectors.
//
// Vectors follow the usual smoothed formulation: terms are lowercased word
// tokens of two or more characters with English stop words removed, idf is
// ln((1+n)/(1+df))+1 and every row is L2-normalized.
type Recommender struct {
	// IncludeDescription adds each book's description to its title text.
	IncludeDescription bool
}

// NewRecommender creates a title-only Recommender.
func NewRecommender() *Recommender {
	return &Recommender{}
}

// Recommend returns one Recommendation per book in input order. A topN of
// zero or less uses bookhaven.DefaultRecommendations. A book never appears
// in its own list; equal scores keep catalog order.
func (r *Recommender) Recommend(books []*bookhaven.Book, topN int) []bookhaven.Recommendation {
	if topN <= 0 {
		topN = bookhaven.DefaultRecommendations
	}

	docs := make([]string, len(books))
	for i, b := range books {
		docs[i] = b.Title
		if r.IncludeDescription && b.Description != "" {
			docs[i] += " " + b.Description
		}
	}
	vectors := Vectorize(docs)

	recs := make([]bookhaven.Recommendation, len(books))
	for i, b := range books {
		type candidate struct {
			idx   int
			score float64
		}
		candidates := make([]candidate, 0, len(books)-1)
		for j := range books {
			if j == i {
				continue
			}
			candidates = append(candidates, candidate{idx: j, score: vectors[i].Dot(vectors[j])})
		}
		sort.SliceStable(candidates, func(a, c int) bool {
			return candidates[a].score > candidates[c].score
		})
		if len(candidates) > topN {
			candidates = candidates[:topN]
		}

		items := make([]bookhaven.RecommendedBook, len(candidates))
		for k, c := range candidates {
			items[k] = bookhaven.RecommendedBook{
				BookID: books[c.idx].ID,
				Title:  books[c.idx].Title,
				Score:  c.score,
			}
		}
		recs[i] = bookhaven.Recommendation{BookID: b.ID, Title: b.Title, Items: items}
	}
	return recs
}

// Vector is a sparse L2-normalized term-weight vector.
type Vector map[string]float64

// Dot returns the dot product of two vectors, which for normalized vectors
// is their cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for term, w := range v {
		sum += w * o[term]
	}
	return sum
}

// Vectorize builds a TF-IDF vector for every document. Documents without
// any indexable term get an empty vector.
func Vectorize(docs []string) []Vector {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, tok := range Tokenize(doc) {
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, tf := range counts {
		v := make(Vector, len(tf))
		var norm float64
		for term, c := range tf {
			w := float64(c) * idf[term]
			v[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range v {
				v[term] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// Tokenize lowercases text and splits it into word tokens of at least two
// characters, dropping English stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
