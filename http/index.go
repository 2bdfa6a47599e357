package http

import "net/http"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.Books(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	recs := s.Recommender.Recommend(books, s.Recommendations)
	s.render(w, r, http.StatusOK, "index", newIndexView(books, recs))
}
