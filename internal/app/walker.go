package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"place_reviews/internal/adapters/observability"
	"place_reviews/internal/domain"
)

// WalkLimits are the safety caps of a page walk.
type WalkLimits struct {
	MaxPages   int // pages including the first one
	MaxRecords int
}

func DefaultWalkLimits() WalkLimits {
	return WalkLimits{MaxPages: 25, MaxRecords: 1000}
}

// Walk is the outcome of a page walk.
type Walk struct {
	Records     []map[string]any
	Pages       int
	Remaining   bool // a continuation token was left unfollowed
	Truncated   bool // stopped by a safety cap
	Interrupted bool // a page fetch failed; Records holds what came before
}

// PageWalker follows continuation tokens, one page at a time.
type PageWalker struct {
	limits WalkLimits
	poller *Poller
}

func NewPageWalker(l WalkLimits, p *Poller) *PageWalker {
	def := DefaultWalkLimits()
	if l.MaxPages <= 0 {
		l.MaxPages = def.MaxPages
	}
	if l.MaxRecords <= 0 {
		l.MaxRecords = def.MaxRecords
	}
	if p == nil {
		p = NewPoller(DefaultPollPolicy())
	}
	return &PageWalker{limits: l, poller: p}
}

// Walk starts from the records of first. When enumerate is set and the
// provider paginates, it keeps fetching until the token runs out, the
// reported total is reached, or a cap is hit. A failed page ends the walk
// without an error; only cancellation of ctx is returned.
func (w *PageWalker) Walk(ctx context.Context, prov domain.Provider, locationID string, first snapshot, enumerate bool) (Walk, error) {
	res := Walk{Records: append([]map[string]any(nil), first.Records...), Pages: 1}
	token := first.NextPageToken
	total := first.ReportedTotal

	pg, paginates := prov.(domain.Paginator)
	if !enumerate || !paginates {
		res.Remaining = token != ""
		return res, nil
	}

	for {
		switch {
		case token == "":
			observability.ObserveWalkStop(prov.Name(), "end")
			return res, nil
		case total > 0 && len(res.Records) >= total:
			observability.ObserveWalkStop(prov.Name(), "total")
			return res, nil
		case res.Pages >= w.limits.MaxPages || len(res.Records) >= w.limits.MaxRecords:
			return w.stopAtCap(prov, locationID, res), nil
		}

		page, err := w.fetch(ctx, prov, pg, locationID, token)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			observability.ObservePage(prov.Name(), "error")
			observability.ObserveWalkStop(prov.Name(), "error")
			log.Warn().Err(err).
				Str("provider", prov.Name()).
				Str("location", locationID).
				Int("pages", res.Pages).
				Int("records", len(res.Records)).
				Msg("page fetch failed, keeping partial records")
			res.Interrupted = true
			res.Remaining = true
			return res, nil
		}
		observability.ObservePage(prov.Name(), "ok")

		res.Pages++
		res.Records = append(res.Records, page.Records...)
		if len(res.Records) > w.limits.MaxRecords {
			return w.stopAtCap(prov, locationID, res), nil
		}

		log.Debug().
			Str("provider", prov.Name()).
			Int("page", res.Pages).
			Int("records", len(res.Records)).
			Msg("page fetched")

		// a provider echoing the same token would loop forever
		if page.NextPageToken == token {
			page.NextPageToken = ""
		}
		token = page.NextPageToken
	}
}

// stopAtCap ends a walk at a safety cap, keeping at most MaxRecords records.
func (w *PageWalker) stopAtCap(prov domain.Provider, locationID string, res Walk) Walk {
	if len(res.Records) > w.limits.MaxRecords {
		res.Records = res.Records[:w.limits.MaxRecords]
	}
	res.Truncated = true
	res.Remaining = true
	observability.ObserveWalkStop(prov.Name(), "cap")
	log.Warn().
		Str("provider", prov.Name()).
		Str("location", locationID).
		Int("pages", res.Pages).
		Int("records", len(res.Records)).
		Msg("page walk stopped at safety cap")
	return res
}

func (w *PageWalker) fetch(ctx context.Context, prov domain.Provider, pg domain.Paginator, locationID, token string) (snapshot, error) {
	raw, err := prov.Call(ctx, pg.PageRequest(locationID, token))
	if err != nil {
		return snapshot{}, err
	}
	raw, err = w.poller.Await(ctx, prov, raw)
	if err != nil {
		return snapshot{}, err
	}
	return interpret(raw)
}
