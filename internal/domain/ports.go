package domain

import (
	"context"
	"net/url"
)

// Raw is a provider response decoded as untyped JSON.
type Raw = map[string]any

// Request describes one outbound provider call. Endpoint is either an absolute
// URL (e.g. a results location handed out by the provider) or a path relative
// to the provider base URL. A nil Body means GET.
type Request struct {
	Op       string // summary|search|poll|page, used for metrics labels
	Method   string
	Endpoint string
	Params   url.Values
	Body     any
}

// Caller performs a single provider call without retries.
type Caller interface {
	Call(ctx context.Context, req Request) (Raw, error)
}

// Provider is a review-data source. Every provider can fetch a summary for a
// known location; the remaining capabilities are optional interfaces below.
type Provider interface {
	Caller
	Name() string
	SummaryRequest(locationID string, full bool) Request
}

// Searcher resolves a name (+ address) to a location through a search call.
type Searcher interface {
	SearchRequest(text string) Request
}

// JobPoller re-queries a pending asynchronous job.
type JobPoller interface {
	PollRequest(location string) Request
}

// Paginator fetches the page following a continuation token.
type Paginator interface {
	PageRequest(locationID, token string) Request
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
