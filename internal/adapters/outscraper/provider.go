// internal/adapters/outscraper/provider.go
package outscraper

import (
	"net/url"
	"strconv"
	"time"

	"place_reviews/internal/adapters/provider"
	"place_reviews/internal/domain"
)

const Name = "Outscraper"

type Config struct {
	APIKey     string
	BaseURL    string
	Language   string
	Async      bool
	MaxRecords int // reviewsLimit requested in full mode
	Timeout    time.Duration
}

// Provider talks to the Outscraper Maps API. Summaries come from reviews-v3,
// name lookups from search-v3. Async requests hand out a results location
// that is polled until the job finishes. There is no pagination: full mode
// asks for up to MaxRecords reviews in one request.
type Provider struct {
	*provider.Client
	lang       string
	async      bool
	maxRecords int
}

func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.app.outscraper.com"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	c, err := provider.New(Name, cfg.BaseURL, provider.HeaderKey("X-API-KEY", cfg.APIKey), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Provider{Client: c, lang: cfg.Language, async: cfg.Async, maxRecords: cfg.MaxRecords}, nil
}

var (
	_ domain.Provider  = (*Provider)(nil)
	_ domain.Searcher  = (*Provider)(nil)
	_ domain.JobPoller = (*Provider)(nil)
)

func (p *Provider) SummaryRequest(locationID string, full bool) domain.Request {
	limit := 0
	if full {
		limit = p.maxRecords
	}
	q := p.params(locationID)
	q.Set("reviewsLimit", strconv.Itoa(limit))
	return domain.Request{Op: "summary", Endpoint: "/maps/reviews-v3", Params: q}
}

func (p *Provider) SearchRequest(text string) domain.Request {
	q := p.params(text)
	q.Set("organizationsPerQueryLimit", "1")
	return domain.Request{Op: "search", Endpoint: "/maps/search-v3", Params: q}
}

// PollRequest fetches an async job by the absolute results location.
func (p *Provider) PollRequest(location string) domain.Request {
	return domain.Request{Op: "poll", Endpoint: location}
}

func (p *Provider) params(query string) url.Values {
	return url.Values{
		"query":    {query},
		"language": {p.lang},
		"async":    {strconv.FormatBool(p.async)},
	}
}
