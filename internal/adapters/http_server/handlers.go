package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trustharvest/internal/app"
	"trustharvest/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/domains/{domain}/reviews", h.listReviews)
	s.mux.Get("/v1/domains/{domain}/summary", h.locationSummary)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// siteParam validates the {domain} path segment: a bare hostname like
// "example.com", never a URL.
func siteParam(r *http.Request) (string, bool) {
	site := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "domain")))
	if site == "" || strings.ContainsAny(site, "/:") {
		return "", false
	}
	return site, true
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	site, ok := siteParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid domain", "domain must be a bare hostname")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}

	out, err := h.Q.ListReviews(r.Context(), site, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "no reviews stored for this domain")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	writeCached(w, r, out)
}

func (h *Handlers) locationSummary(w http.ResponseWriter, r *http.Request) {
	site, ok := siteParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid domain", "domain must be a bare hostname")
		return
	}

	out, err := h.Q.LocationSummary(r.Context(), site)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "no reviews stored for this domain")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	writeCached(w, r, out)
}
