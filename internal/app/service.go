package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"place_reviews/internal/domain"
)

// Options select how much work one aggregation does.
type Options struct {
	Full           bool // enumerate every page the provider offers
	IncludeReviews bool // return the normalized review records
}

// AggregationService runs the pipeline for one configured provider:
// client call → job polling → page walk → breakdown → normalization.
type AggregationService struct {
	name     string
	provider domain.Provider
	poller   *Poller
	walker   *PageWalker
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewAggregationService wires the pipeline. A nil provider means its
// credentials are missing; every call then fails with domain.ErrConfig.
// A nil cache or zero ttl disables caching.
func NewAggregationService(name string, p domain.Provider, poller *Poller, walker *PageWalker, c domain.Cache, ttl time.Duration) *AggregationService {
	if poller == nil {
		poller = NewPoller(DefaultPollPolicy())
	}
	if walker == nil {
		walker = NewPageWalker(DefaultWalkLimits(), poller)
	}
	return &AggregationService{name: name, provider: p, poller: poller, walker: walker, cache: c, cacheTTL: ttl}
}

func (s *AggregationService) ProviderName() string { return s.name }

func (s *AggregationService) Aggregate(ctx context.Context, q domain.Query, opt Options) (domain.AggregateResult, error) {
	if s.provider == nil {
		return domain.AggregateResult{}, domain.NewError(domain.ErrConfig,
			fmt.Sprintf("Missing %s API key", s.name), "")
	}
	if err := q.Validate(); err != nil {
		return domain.AggregateResult{}, err
	}
	q = q.Normalized()

	key := cacheKey(s.name, q, opt)
	if s.cacheEnabled() {
		var cached domain.AggregateResult
		ok, err := s.cache.Get(ctx, key, &cached)
		switch {
		case errors.Is(err, domain.ErrMalformed):
			// an entry that cannot be read would shadow the key until it expires
			log.Warn().Err(err).Str("key", key).Msg("evicting unreadable cache entry")
			_ = s.cache.Del(ctx, key)
		case err == nil && ok:
			return cached, nil
		}
	}

	locationID, first, err := s.locate(ctx, q, opt)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	enumerate := opt.Full || (!first.HasHistogram && first.ReportedTotal > len(first.Records))
	walk, err := s.walker.Walk(ctx, s.provider, locationID, first, enumerate)
	if err != nil {
		return domain.AggregateResult{}, err
	}
	records := mapReviews(walk.Records)

	sum := Summary{
		LocationID:      first.LocationID,
		Source:          s.provider.Name(),
		ReportedTotal:   first.ReportedTotal,
		ReportedAverage: first.ReportedAverage,
		Truncated:       walk.Truncated,
	}
	if sum.LocationID == "" {
		sum.LocationID = locationID
	}
	if first.HasHistogram {
		sum.Breakdown = first.Histogram
		sum.Complete = true
	} else {
		sum.Breakdown = TallyRecords(records).Breakdown
		sum.Complete = recordsComplete(walk, first.ReportedTotal)
	}
	if opt.IncludeReviews {
		sum.Reviews = records
	}

	out := Normalize(sum)
	log.Debug().
		Str("provider", s.provider.Name()).
		Str("location", out.LocationID).
		Int("total", out.TotalReviews).
		Float64("average", out.AverageRating).
		Int("pages", walk.Pages).
		Bool("complete", out.BreakdownComplete).
		Bool("truncated", out.Truncated).
		Msg("aggregated reviews")

	// partial results are never cached
	if s.cacheEnabled() && out.BreakdownComplete && !out.Truncated {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// locate returns the location id and the first terminal response to build on.
// Without an id the provider's search is used; when the search hit already
// carries summary data and no enumeration is wanted it is used directly.
func (s *AggregationService) locate(ctx context.Context, q domain.Query, opt Options) (string, snapshot, error) {
	locationID := q.LocationID
	if locationID == "" {
		hit, err := s.search(ctx, q)
		if err != nil {
			return "", snapshot{}, err
		}
		locationID = hit.LocationID
		if !opt.Full && !opt.IncludeReviews && hit.hasSummary() {
			return locationID, hit, nil
		}
	}

	first, err := s.fetch(ctx, s.provider.SummaryRequest(locationID, opt.Full))
	if err != nil {
		return "", snapshot{}, err
	}
	if first.Place == nil && len(first.Records) == 0 {
		return "", snapshot{}, domain.NewError(domain.ErrNotFound,
			fmt.Sprintf("Place not found in %s response", s.provider.Name()), "")
	}
	return locationID, first, nil
}

func (s *AggregationService) search(ctx context.Context, q domain.Query) (snapshot, error) {
	sr, ok := s.provider.(domain.Searcher)
	if !ok {
		return snapshot{}, domain.NewError(domain.ErrInput,
			fmt.Sprintf("%s needs a locationId", s.provider.Name()), "")
	}
	hit, err := s.fetch(ctx, sr.SearchRequest(q.SearchText()))
	if err != nil {
		return snapshot{}, err
	}
	if hit.LocationID == "" {
		return snapshot{}, domain.NewError(domain.ErrNotFound,
			fmt.Sprintf("Place not found in %s search response", s.provider.Name()),
			q.SearchText())
	}
	return hit, nil
}

func (s *AggregationService) fetch(ctx context.Context, req domain.Request) (snapshot, error) {
	raw, err := s.provider.Call(ctx, req)
	if err != nil {
		return snapshot{}, err
	}
	raw, err = s.poller.Await(ctx, s.provider, raw)
	if err != nil {
		return snapshot{}, err
	}
	return interpret(raw)
}

func (s *AggregationService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// recordsComplete reports whether a record-derived breakdown covers every review.
func recordsComplete(w Walk, reportedTotal int) bool {
	if w.Truncated || w.Interrupted {
		return false
	}
	if reportedTotal > 0 {
		return len(w.Records) >= reportedTotal
	}
	return !w.Remaining
}

func cacheKey(provider string, q domain.Query, opt Options) string {
	sig := strings.Join([]string{q.LocationID, q.Name, q.Address}, "|")
	sum := sha1.Sum([]byte(sig))
	return fmt.Sprintf("agg:%s:%s:%t:%t", provider, hex.EncodeToString(sum[:]), opt.Full, opt.IncludeReviews)
}
