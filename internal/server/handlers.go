package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/session"
	"github.com/hyperjump/treerec/internal/validation"
	"go.uber.org/zap"
)

// Error codes returned in APIError.Code.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// TextRequest is the body of the social and streaming action endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

type pageParams struct {
	Limit  int `validate:"gte=0,lte=1000"`
	Offset int `validate:"gte=0"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query))
	result, err := s.session.Search(r.Context(), req.Query)
	if err != nil {
		s.respondSessionError(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	result, err := s.session.SocialPost(r.Context(), req.Text)
	if err != nil {
		s.respondSessionError(w, "social post", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStreaming(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	result, err := s.session.Streaming(r.Context(), req.Text)
	if err != nil {
		s.respondSessionError(w, "streaming", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var input models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	item, err := models.NewItem(input)
	if err != nil {
		s.respondSessionError(w, "add item", err)
		return
	}
	s.logger.Debug("add item request", zap.String("id", item.ID))
	if err := s.session.AddItem(r.Context(), item); err != nil {
		s.respondSessionError(w, "add item", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

// handleBrowse lists the items under a category path. A single path parameter is split on
// "/"; repeated path parameters are taken as one label each, so labels may contain "/".
func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.session.Browse(browsePath(r.URL.Query()["path"])))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.session.Item(chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, "get item", err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleViewItem(w http.ResponseWriter, r *http.Request) {
	result, err := s.session.ViewItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, "view item", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	page, ok := s.parsePage(w, r)
	if !ok {
		return
	}
	recs := s.session.Recommendations(page.Limit)
	if recs == nil {
		recs = []*models.ScoredItem{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

func (s *Server) handleInterests(w http.ResponseWriter, r *http.Request) {
	entries := s.session.InterestEntries()
	if entries == nil {
		entries = []models.InterestEntry{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"interests": entries})
}

func (s *Server) handleInterestTree(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.session.InterestTree())
}

func (s *Server) handleCategoryTree(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.session.CategoryTree())
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	page, ok := s.parsePage(w, r)
	if !ok {
		return
	}
	actions, err := s.session.Actions(r.Context(), page.Offset, page.Limit)
	if err != nil {
		s.respondSessionError(w, "list actions", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.session.Stats(r.Context())
	if err != nil {
		s.respondSessionError(w, "status", err)
		return
	}
	resp := map[string]interface{}{"stats": stats}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePage reads limit and offset query parameters. It writes the error response and
// returns false when they are malformed or out of range.
func (s *Server) parsePage(w http.ResponseWriter, r *http.Request) (pageParams, bool) {
	var page pageParams
	q := r.URL.Query()
	for name, dst := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, CodeBadRequest, name+" must be an integer")
			return page, false
		}
		*dst = n
	}
	if verr := validation.ValidateStruct(&page); verr != nil {
		s.respondJSON(w, http.StatusBadRequest, verr.ToAPIError())
		return page, false
	}
	return page, true
}

func browsePath(values []string) []string {
	if len(values) == 1 {
		values = strings.Split(values[0], "/")
	}
	var path []string
	for _, label := range values {
		if label = strings.TrimSpace(label); label != "" {
			path = append(path, label)
		}
	}
	return path
}

// respondSessionError maps session and model errors to HTTP statuses.
func (s *Server) respondSessionError(w http.ResponseWriter, op string, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		s.respondJSON(w, http.StatusBadRequest, verr.ToAPIError())
	case errors.Is(err, models.ErrInvalidItem):
		s.respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.Is(err, session.ErrItemNotFound):
		s.respondError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, session.ErrDuplicateItem):
		s.respondError(w, http.StatusConflict, CodeConflict, err.Error())
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, &validation.APIError{Code: code, Message: message})
}
