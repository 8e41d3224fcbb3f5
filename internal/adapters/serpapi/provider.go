// internal/adapters/serpapi/provider.go
package serpapi

import (
	"net/url"
	"time"

	"place_reviews/internal/adapters/provider"
	"place_reviews/internal/domain"
)

const (
	Name = "SerpApi"

	// SerpApi only accepts num together with a next_page_token.
	pageSize = "20"
)

type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

// Provider talks to SerpApi's google_maps_reviews engine. Reviews come in
// pages linked by serpapi_pagination.next_page_token; name lookups go
// through the google_maps engine.
type Provider struct {
	*provider.Client
	lang string
}

func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://serpapi.com"
	}
	if cfg.Language == "" {
		cfg.Language = "de"
	}
	c, err := provider.New(Name, cfg.BaseURL, provider.QueryKey("api_key", cfg.APIKey), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Provider{Client: c, lang: cfg.Language}, nil
}

var (
	_ domain.Provider  = (*Provider)(nil)
	_ domain.Searcher  = (*Provider)(nil)
	_ domain.JobPoller = (*Provider)(nil)
	_ domain.Paginator = (*Provider)(nil)
)

// SummaryRequest fetches the first review page, which also carries place_info.
func (p *Provider) SummaryRequest(locationID string, _ bool) domain.Request {
	return domain.Request{Op: "summary", Endpoint: "/search.json", Params: p.reviewParams(locationID)}
}

func (p *Provider) PageRequest(locationID, token string) domain.Request {
	q := p.reviewParams(locationID)
	q.Set("next_page_token", token)
	q.Set("num", pageSize)
	return domain.Request{Op: "page", Endpoint: "/search.json", Params: q}
}

func (p *Provider) SearchRequest(text string) domain.Request {
	return domain.Request{Op: "search", Endpoint: "/search.json", Params: url.Values{
		"engine": {"google_maps"},
		"type":   {"search"},
		"q":      {text},
		"hl":     {p.lang},
	}}
}

// PollRequest re-reads a search archived at search_metadata.json_endpoint.
func (p *Provider) PollRequest(location string) domain.Request {
	return domain.Request{Op: "poll", Endpoint: location}
}

func (p *Provider) reviewParams(locationID string) url.Values {
	return url.Values{
		"engine":   {"google_maps_reviews"},
		"place_id": {locationID},
		"hl":       {p.lang},
	}
}
