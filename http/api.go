package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fwojciec/bookhaven"
)

// maxPageSize caps the limit accepted by list endpoints.
const maxPageSize = 200

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBookFilter(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	// Loading the catalog refreshes the store when the cache has expired.
	if _, err := s.Catalog.Books(r.Context()); err != nil {
		s.Error(w, r, err)
		return
	}

	books, err := s.Books.FindBooks(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if books == nil {
		books = []*bookhaven.Book{}
	}
	writeJSON(w, r, http.StatusOK, books)
}

func parseBookFilter(r *http.Request) (bookhaven.BookFilter, error) {
	q := r.URL.Query()
	var filter bookhaven.BookFilter

	if title := strings.TrimSpace(q.Get("title")); title != "" {
		filter.Title = &title
	}
	if v := q.Get("min_rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > bookhaven.MaxRating {
			return filter, bookhaven.Errorf(bookhaven.EINVALID, "min_rating must be between 0 and %d", bookhaven.MaxRating)
		}
		filter.MinRating = &n
	}
	switch sort := bookhaven.BookSortOrder(q.Get("sort")); sort {
	case "", bookhaven.SortByPosition, bookhaven.SortByTitle, bookhaven.SortByPrice, bookhaven.SortByRating:
		filter.SortBy = sort
	default:
		return filter, bookhaven.Errorf(bookhaven.EINVALID, "unknown sort %q", sort)
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, bookhaven.Errorf(bookhaven.EINVALID, "%s must be a non-negative integer", name)
	}
	return n, nil
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.Books.FindBookByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, book)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.Books(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, bookhaven.ComputeRatingStats(books))
}

// handleRecommendations lists recommendations for every book, or for the
// books whose title matches the title parameter case-insensitively.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	topN := s.Recommendations
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			s.Error(w, r, bookhaven.Errorf(bookhaven.EINVALID, "top must be between 1 and %d", maxPageSize))
			return
		}
		topN = n
	}

	books, err := s.Catalog.Books(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	recs := s.Recommender.Recommend(books, topN)

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeJSON(w, r, http.StatusOK, recs)
		return
	}

	matched := []bookhaven.Recommendation{}
	for _, rec := range recs {
		if strings.EqualFold(rec.Title, title) {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		s.Error(w, r, bookhaven.Errorf(bookhaven.ENOTFOUND, "no book titled %q", title))
		return
	}
	writeJSON(w, r, http.StatusOK, matched)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req bookhaven.OrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.Error(w, r, bookhaven.Errorf(bookhaven.EINVALID, "invalid JSON body"))
		return
	}
	for i := range req.Selections {
		if req.Selections[i].Quantity == 0 {
			req.Selections[i].Quantity = 1
		}
	}

	books, err := s.Catalog.Books(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}

	order, err := bookhaven.PriceOrder(books, req)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.Orders.CreateOrder(r.Context(), order); err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.Orders.FindOrderByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, order)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.Refresh(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"books": len(books)})
}
