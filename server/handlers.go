package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/rating"
	"github.com/rushteam/bookrec/recommend"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"books":  s.engine.Catalog().Len(),
	})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := s.engine.Catalog().List(catalog.Query{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Where:    q.Get("where"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, books)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "book id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	book, err := s.engine.Catalog().Get(id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	recs, err := s.engine.Recommend(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "book id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	n, err := queryInt(r, "n")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	recs, err := s.engine.Similar(r.Context(), id, n)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Catalog().Categories())
}

// methodsBody 是 GET /api/methods 的响应。
type methodsBody struct {
	Methods []string `json:"methods"`
	Default string   `json:"default"`
}

func (s *Server) handleMethods(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, methodsBody{Methods: s.engine.Methods(), Default: s.engine.DefaultMethod()})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Catalog().Stats())
}

func (s *Server) handleAddRating(w http.ResponseWriter, r *http.Request) {
	var in rating.Rating
	if err := decodeJSON(w, r, &in); err != nil {
		respondErr(w, r, err)
		return
	}
	stored, err := s.engine.Ratings().Add(r.Context(), in.UserID, in.BookID, in.Rating)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUserRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.engine.Ratings().Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	bookID, err := parseID(chi.URLParam(r, "bookID"), "book id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := s.engine.Ratings().Delete(r.Context(), chi.URLParam(r, "userID"), bookID); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
