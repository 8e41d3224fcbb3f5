package shared

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"place_reviews/internal/adapters/outscraper"
	"place_reviews/internal/adapters/serpapi"
	"place_reviews/internal/app"
	"place_reviews/internal/domain"
)

// NewProvider builds the named provider. A provider without an API key comes
// back as nil so requests routed to it fail with a configuration error
// instead of the process refusing to start.
func NewProvider(cfg Config, name string) (domain.Provider, error) {
	switch name {
	case "outscraper":
		if cfg.OutscraperKey == "" {
			return nil, nil
		}
		return outscraper.New(outscraper.Config{
			APIKey:     cfg.OutscraperKey,
			BaseURL:    cfg.OutscraperBase,
			Language:   cfg.OutscraperLang,
			Async:      cfg.OutscraperAsync,
			MaxRecords: cfg.PageMaxRecords,
			Timeout:    cfg.ProviderTimeout,
		})
	case "serpapi":
		if cfg.SerpAPIKey == "" {
			return nil, nil
		}
		return serpapi.New(serpapi.Config{
			APIKey:   cfg.SerpAPIKey,
			BaseURL:  cfg.SerpAPIBase,
			Language: cfg.SerpAPILang,
			Timeout:  cfg.ProviderTimeout,
		})
	}
	return nil, fmt.Errorf("unknown provider %q (want outscraper or serpapi)", name)
}

func displayName(name string) string {
	switch name {
	case "outscraper":
		return outscraper.Name
	case "serpapi":
		return serpapi.Name
	}
	return name
}

// NewAggregationService wires the pipeline for one provider. cache may be nil.
func NewAggregationService(cfg Config, providerName string, cache domain.Cache) (*app.AggregationService, error) {
	p, err := NewProvider(cfg, providerName)
	if err != nil {
		return nil, err
	}
	poller := app.NewPoller(app.PollPolicy{
		MaxAttempts: cfg.PollMaxAttempts,
		Interval:    cfg.PollInterval,
		Step:        cfg.PollStep,
	})
	walker := app.NewPageWalker(app.WalkLimits{
		MaxPages:   cfg.PageMaxPages,
		MaxRecords: cfg.PageMaxRecords,
	}, poller)

	log.Info().
		Str("provider", displayName(providerName)).
		Bool("configured", p != nil).
		Msg("aggregation service ready")
	return app.NewAggregationService(displayName(providerName), p, poller, walker, cache, cfg.CacheTTL), nil
}
