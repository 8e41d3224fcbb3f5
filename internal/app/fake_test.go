package app_test

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"place_reviews/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---- fakes ----

type reply struct {
	raw domain.Raw
	err error
}

// scripted answers calls from per-op queues and records every request.
type scripted struct {
	mu     sync.Mutex
	name   string
	queues map[string][]reply
	calls  []domain.Request
}

func newScripted(name string) *scripted {
	return &scripted{name: name, queues: map[string][]reply{}}
}

func (s *scripted) on(op string, replies ...reply) *scripted {
	s.queues[op] = append(s.queues[op], replies...)
	return s
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Call(ctx context.Context, req domain.Request) (domain.Raw, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	q := s.queues[req.Op]
	if len(q) == 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("unexpected %s call", req.Op)
	}
	r := q[0]
	s.queues[req.Op] = q[1:]
	s.mu.Unlock()
	return r.raw, r.err
}

func (s *scripted) SummaryRequest(locationID string, full bool) domain.Request {
	return domain.Request{Op: "summary", Endpoint: "/summary", Params: url.Values{"id": {locationID}, "full": {fmt.Sprint(full)}}}
}

func (s *scripted) callsFor(op string) []domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Request
	for _, c := range s.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// fullProvider supports every capability.
type fullProvider struct{ *scripted }

func (fullProvider) SearchRequest(text string) domain.Request {
	return domain.Request{Op: "search", Endpoint: "/search", Params: url.Values{"q": {text}}}
}

func (fullProvider) PollRequest(location string) domain.Request {
	return domain.Request{Op: "poll", Endpoint: location}
}

func (fullProvider) PageRequest(locationID, token string) domain.Request {
	return domain.Request{Op: "page", Endpoint: "/page", Params: url.Values{"id": {locationID}, "token": {token}}}
}

// summaryOnly can fetch summaries and nothing else.
type summaryOnly struct{ *scripted }

// ---- payload builders ----

func ok(raw domain.Raw) reply { return reply{raw: raw} }
func fail(err error) reply     { return reply{err: err} }

func pending(loc string) domain.Raw {
	return domain.Raw{"status": "Pending", "results_location": loc}
}

func reviewsOf(ratings ...any) []any {
	out := make([]any, 0, len(ratings))
	for i, r := range ratings {
		out = append(out, map[string]any{
			"review_id": fmt.Sprintf("r%d", i),
			"rating":    r,
			"snippet":   "text",
			"user":      map[string]any{"name": "Ana"},
		})
	}
	return out
}
