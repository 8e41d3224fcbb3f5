// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"place_reviews/internal/app"
	"place_reviews/internal/domain"
)

// retryAfterSeconds is suggested to callers whose provider job is still running.
const retryAfterSeconds = "5"

// Handlers serves one aggregation service per endpoint.
type Handlers struct {
	Reviews  *app.AggregationService
	Simulate *app.AggregationService
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/reviews", h.reviews)
	s.mux.Get("/simulate", h.simulate)
}

// /reviews answers with the summary only unless reviews=true is asked for.
func (h *Handlers) reviews(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, h.Reviews, false)
}

// /simulate includes the review list unless reviews=false.
func (h *Handlers) simulate(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, h.Simulate, true)
}

func (h *Handlers) aggregate(w http.ResponseWriter, r *http.Request, svc *app.AggregationService, reviewsByDefault bool) {
	q, opt, err := parseRequest(r, reviewsByDefault)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if svc == nil {
		writeError(w, r, domain.NewError(domain.ErrConfig, "No provider configured for this endpoint", ""))
		return
	}

	res, err := svc.Aggregate(r.Context(), q, opt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseRequest(r *http.Request, reviewsByDefault bool) (domain.Query, app.Options, error) {
	v := r.URL.Query()
	q := domain.Query{
		LocationID: firstNonEmpty(v.Get("locationId"), v.Get("placeId")),
		Name:       v.Get("name"),
		Address:    v.Get("address"),
	}

	full, err := boolParam(v.Get("full"), false)
	if err != nil {
		return q, app.Options{}, domain.NewError(domain.ErrInput, "full must be true or false", v.Get("full"))
	}
	withReviews, err := boolParam(v.Get("reviews"), reviewsByDefault)
	if err != nil {
		return q, app.Options{}, domain.NewError(domain.ErrInput, "reviews must be true or false", v.Get("reviews"))
	}
	return q, app.Options{Full: full, IncludeReviews: withReviews}, nil
}

func boolParam(s string, def bool) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.ParseBool(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// statusFor maps an error kind to the HTTP status callers see.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfig):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrJobPending):
		return http.StatusAccepted
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrProvider),
		errors.Is(err, domain.ErrMalformed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	body := errorBody{Error: domain.Message(err), Details: domain.Details(err)}
	var de *domain.Error
	if !errors.As(err, &de) {
		if errors.Is(err, context.DeadlineExceeded) {
			body = errorBody{Error: "Request timed out"}
		} else {
			body = errorBody{Error: "Internal error", Details: err.Error()}
		}
	}
	if status == http.StatusAccepted {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
