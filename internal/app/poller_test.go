package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"place_reviews/internal/app"
	"place_reviews/internal/domain"
)

func fastPoller(attempts int) *app.Poller {
	return app.NewPoller(app.PollPolicy{MaxAttempts: attempts, Interval: time.Millisecond})
}

func TestPoller_TerminalFirstResponseMakesNoCalls(t *testing.T) {
	p := fullProvider{newScripted("fake")}
	first := domain.Raw{"status": "Success", "data": []any{map[string]any{"place_id": "x"}}}

	got, err := fastPoller(3).Await(context.Background(), p, first)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Empty(t, p.calls)
}

func TestPoller_UsableDataIsTerminalEvenWhenPending(t *testing.T) {
	p := fullProvider{newScripted("fake")}
	first := domain.Raw{"status": "Pending", "results_location": "/r/1", "data": []any{[]any{}}}

	_, err := fastPoller(3).Await(context.Background(), p, first)
	require.NoError(t, err)
	assert.Empty(t, p.calls)
}

func TestPoller_FollowsContinuationUntilSuccess(t *testing.T) {
	done := domain.Raw{"status": "Success", "data": []any{map[string]any{"place_id": "x"}}}
	p := fullProvider{newScripted("fake").on("poll",
		ok(pending("/r/2")),
		ok(pending("/r/3")),
		ok(done),
	)}

	got, err := fastPoller(5).Await(context.Background(), p, pending("/r/1"))
	require.NoError(t, err)
	assert.Equal(t, done, got)

	polls := p.callsFor("poll")
	require.Len(t, polls, 3)
	assert.Equal(t, "/r/1", polls[0].Endpoint)
	assert.Equal(t, "/r/2", polls[1].Endpoint, "the newest continuation location is used")
	assert.Equal(t, "/r/3", polls[2].Endpoint)
}

func TestPoller_BudgetExhausted(t *testing.T) {
	s := newScripted("fake")
	for i := 0; i < 10; i++ {
		s.on("poll", ok(pending("/r/1")))
	}
	p := fullProvider{s}

	_, err := fastPoller(4).Await(context.Background(), p, pending("/r/1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrJobPending))
	assert.Len(t, p.callsFor("poll"), 4)
}

func TestPoller_FailureDuringPollingPropagates(t *testing.T) {
	boom := domain.NewError(domain.ErrTransport, "fake request failed", "")
	p := fullProvider{newScripted("fake").on("poll", ok(pending("/r/2")), fail(boom))}

	_, err := fastPoller(5).Await(context.Background(), p, pending("/r/1"))
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Len(t, p.callsFor("poll"), 2)
}

func TestPoller_PendingWithoutContinuation(t *testing.T) {
	p := fullProvider{newScripted("fake")}
	_, err := fastPoller(5).Await(context.Background(), p, domain.Raw{"status": "pending"})
	assert.True(t, errors.Is(err, domain.ErrJobPending))
	assert.Empty(t, p.calls)
}

func TestPoller_ProviderWithoutPolling(t *testing.T) {
	p := summaryOnly{newScripted("fake")}
	_, err := fastPoller(5).Await(context.Background(), p, pending("/r/1"))
	assert.True(t, errors.Is(err, domain.ErrJobPending))
	assert.Empty(t, p.calls)
}

func TestPoller_FailedJobStatus(t *testing.T) {
	p := fullProvider{newScripted("fake")}
	_, err := fastPoller(5).Await(context.Background(), p, domain.Raw{"status": "Error", "error": "bad query"})
	require.True(t, errors.Is(err, domain.ErrProvider))
	assert.Equal(t, "bad query", domain.Details(err))
}

func TestPoller_CancellationStopsWithoutFurtherCalls(t *testing.T) {
	p := fullProvider{newScripted("fake").on("poll", ok(pending("/r/1")))}
	poller := app.NewPoller(app.PollPolicy{MaxAttempts: 5, Interval: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := poller.Await(ctx, p, pending("/r/1"))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.Empty(t, p.calls)
}

func TestPoller_KeepsLocationWhenFollowUpOmitsIt(t *testing.T) {
	done := domain.Raw{"status": "Success", "data": []any{map[string]any{"place_id": "x"}}}
	p := fullProvider{newScripted("fake").on("poll", ok(domain.Raw{"status": "Pending"}), ok(done))}

	_, err := fastPoller(5).Await(context.Background(), p, pending("/r/1"))
	require.NoError(t, err)

	polls := p.callsFor("poll")
	require.Len(t, polls, 2)
	assert.Equal(t, "/r/1", polls[1].Endpoint)
}
