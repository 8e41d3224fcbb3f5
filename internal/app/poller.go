package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"place_reviews/internal/adapters/observability"
	"place_reviews/internal/domain"
)

// PollPolicy bounds job polling. The delay before attempt i (0-based) is
// Interval + i*Step, so Step == 0 keeps the interval constant.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Step        time.Duration
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{MaxAttempts: 12, Interval: 400 * time.Millisecond}
}

func (p PollPolicy) delay(attempt int) time.Duration {
	return p.Interval + time.Duration(attempt)*p.Step
}

// Poller turns a provider's pending-job responses into one synchronous answer.
type Poller struct {
	policy PollPolicy
}

func NewPoller(p PollPolicy) *Poller {
	def := DefaultPollPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Interval < 0 {
		p.Interval = 0
	}
	if p.Step < 0 {
		p.Step = 0
	}
	return &Poller{policy: p}
}

// Await returns first when it is terminal, otherwise polls the continuation
// location it names until a terminal response arrives. Provider call failures
// end polling immediately. Running out of attempts yields domain.ErrJobPending.
func (p *Poller) Await(ctx context.Context, prov domain.Provider, first domain.Raw) (domain.Raw, error) {
	resp := first
	location := ""
	for attempt := 0; ; attempt++ {
		st, err := jobStatus(resp)
		if err != nil {
			return nil, err
		}
		// follow-up responses may omit the location they were read from
		if st.location != "" {
			location = st.location
		}
		if !st.pending {
			if attempt > 0 {
				observability.ObservePoll(prov.Name(), "done")
			}
			return resp, nil
		}
		if attempt > 0 {
			observability.ObservePoll(prov.Name(), "pending")
		}

		jp, ok := prov.(domain.JobPoller)
		if !ok || location == "" {
			return nil, domain.NewError(domain.ErrJobPending,
				fmt.Sprintf("%s job is pending, try again shortly", prov.Name()),
				"no continuation location to poll")
		}
		if attempt >= p.policy.MaxAttempts {
			observability.ObservePollTimeout(prov.Name())
			return nil, domain.NewError(domain.ErrJobPending,
				fmt.Sprintf("%s job is still pending, try again shortly", prov.Name()),
				fmt.Sprintf("gave up after %d poll attempts", attempt))
		}

		if !sleepCtx(ctx, p.policy.delay(attempt)) {
			return nil, ctx.Err()
		}

		log.Debug().
			Str("provider", prov.Name()).
			Int("attempt", attempt+1).
			Str("location", location).
			Msg("polling pending job")

		resp, err = prov.Call(ctx, jp.PollRequest(location))
		if err != nil {
			observability.ObservePoll(prov.Name(), "error")
			return nil, err
		}
	}
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
