package serpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"place_reviews/internal/adapters/serpapi"
	"place_reviews/internal/app"
	"place_reviews/internal/domain"
)

func TestRequests(t *testing.T) {
	p, err := serpapi.New(serpapi.Config{APIKey: "k"})
	require.NoError(t, err)

	sum := p.SummaryRequest("ChIJ1", true)
	assert.Equal(t, "/search.json", sum.Endpoint)
	assert.Equal(t, "google_maps_reviews", sum.Params.Get("engine"))
	assert.Equal(t, "ChIJ1", sum.Params.Get("place_id"))
	assert.Equal(t, "de", sum.Params.Get("hl"))
	assert.Empty(t, sum.Params.Get("num"), "num is rejected on the first page")

	page := p.PageRequest("ChIJ1", "CAES")
	assert.Equal(t, "CAES", page.Params.Get("next_page_token"))
	assert.Equal(t, "20", page.Params.Get("num"))

	search := p.SearchRequest("Cafe, Main St 1")
	assert.Equal(t, "google_maps", search.Params.Get("engine"))
	assert.Equal(t, "Cafe, Main St 1", search.Params.Get("q"))

	assert.Equal(t, serpapi.Name, p.Name())
}

func review(id string, rating float64) map[string]any {
	return map[string]any{
		"review_id": id,
		"rating":    rating,
		"snippet":   "review " + id,
		"user":      map[string]any{"name": "User " + id},
		"iso_date":  "2024-05-01T08:00:00Z",
	}
}

func TestAggregate_WalksReviewPages(t *testing.T) {
	pages := map[string]map[string]any{
		"": {
			"search_metadata":    map[string]any{"status": "Success"},
			"place_info":         map[string]any{"title": "Cafe", "rating": 4.0, "reviews": 4},
			"reviews":            []any{review("a", 5), review("b", 4)},
			"serpapi_pagination": map[string]any{"next_page_token": "p2"},
		},
		"p2": {
			"search_metadata":    map[string]any{"status": "Success"},
			"reviews":            []any{review("c", 4), review("d", 3)},
			"serpapi_pagination": map[string]any{"next_page_token": "p3"},
		},
	}
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "k" || q.Get("place_id") != "ChIJ1" {
			http.Error(w, `{"error":"Invalid API key."}`, http.StatusUnauthorized)
			return
		}
		tok := q.Get("next_page_token")
		seen = append(seen, tok)
		body, ok := pages[tok]
		if !ok {
			http.Error(w, fmt.Sprintf(`{"error":"unknown token %s"}`, tok), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer ts.Close()

	p, err := serpapi.New(serpapi.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)
	svc := app.NewAggregationService(serpapi.Name, p, nil, nil, nil, 0)

	got, err := svc.Aggregate(context.Background(), domain.Query{LocationID: "ChIJ1"}, app.Options{IncludeReviews: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "p2"}, seen, "stops once every reported review is seen")
	assert.Equal(t, 4, got.TotalReviews)
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Equal(t, domain.Breakdown{0, 0, 1, 2, 1}, got.Breakdown)
	assert.True(t, got.BreakdownComplete)
	require.Len(t, got.Reviews, 4)
	assert.Equal(t, "User c", got.Reviews[2].ReviewerName)
	assert.Equal(t, "2024-05-01T08:00:00Z", got.Reviews[2].Timestamp)
}

func TestAggregate_ErrorFieldIsProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"search_metadata":{"status":"Error"},"error":"Invalid place_id."}`))
	}))
	defer ts.Close()

	p, err := serpapi.New(serpapi.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)
	svc := app.NewAggregationService(serpapi.Name, p, nil, nil, nil, 0)

	_, err = svc.Aggregate(context.Background(), domain.Query{LocationID: "nope"}, app.Options{})
	require.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, "Invalid place_id.", domain.Details(err))
}
