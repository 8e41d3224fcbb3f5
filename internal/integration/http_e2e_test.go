//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "place_reviews/internal/adapters/http_server"
	redisad "place_reviews/internal/adapters/redis"
	"place_reviews/internal/domain"
	"place_reviews/internal/shared"
)

// ---------- fake provider ----------

// fakeOutscraper answers reviews-v3 with an async job that finishes on the
// second poll.
func fakeOutscraper(t *testing.T, summaries *atomic.Int32) *httptest.Server {
	t.Helper()
	var polls atomic.Int32
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/reviews-v3", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "e2e-key" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		summaries.Add(1)
		polls.Store(0)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "job", "status": "Pending", "results_location": base + "/requests/job",
		})
	})
	mux.HandleFunc("/requests/job", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "job", "status": "Pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "job", "status": "Success",
			"data": []any{[]any{map[string]any{
				"place_id":          "ChIJe2e",
				"rating":            4.6,
				"reviews":           120,
				"reviews_per_score": map[string]any{"1": 2, "2": 3, "3": 5, "4": 30, "5": 80},
			}}},
		})
	})
	ts := httptest.NewServer(mux)
	base = ts.URL
	t.Cleanup(ts.Close)
	return ts
}

// ---------- the test ----------

func TestHTTP_EndToEnd_Reviews_CachedInRedis(t *testing.T) {
	// Start isolated redis container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cache := redisad.New(fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp")), "", 0)
	t.Cleanup(func() { _ = cache.Close() })
	if err := pool.Retry(func() error { return cache.Ping(context.Background()) }); err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	var summaries atomic.Int32
	provider := fakeOutscraper(t, &summaries)

	cfg := shared.Config{
		OutscraperKey:   "e2e-key",
		OutscraperBase:  provider.URL,
		OutscraperAsync: true,
		OutscraperLang:  "en",
		ProviderTimeout: 2 * time.Second,
		PollMaxAttempts: 5,
		PollInterval:    10 * time.Millisecond,
		CacheTTL:        time.Minute,
	}
	reviews, err := shared.NewAggregationService(cfg, "outscraper", cache)
	if err != nil {
		t.Fatalf("wire reviews: %v", err)
	}
	simulate, err := shared.NewAggregationService(cfg, "serpapi", cache)
	if err != nil {
		t.Fatalf("wire simulate: %v", err)
	}

	srv := server.New(server.Options{RequestTimeout: 10 * time.Second})
	srv.MountHandlers(&server.Handlers{Reviews: reviews, Simulate: simulate})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Hit the endpoint twice; the second answer comes from redis
	for i := 0; i < 2; i++ {
		res, err := http.Get(ts.URL + "/reviews?placeId=ChIJe2e")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		var body domain.AggregateResult
		err = json.NewDecoder(res.Body).Decode(&body)
		res.Body.Close()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status %d", res.StatusCode)
		}
		want := domain.Breakdown{2, 3, 5, 30, 80}
		if body.TotalReviews != 120 || body.AverageRating != 4.6 || body.Breakdown != want || !body.BreakdownComplete {
			t.Fatalf("unexpected body: %+v", body)
		}
	}
	if n := summaries.Load(); n != 1 {
		t.Fatalf("provider summary calls = %d, want 1", n)
	}

	// SerpApi has no key configured: configuration error for every request
	res, err := http.Get(ts.URL + "/simulate?placeId=ChIJe2e")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("simulate status %d, want 500", res.StatusCode)
	}
}
