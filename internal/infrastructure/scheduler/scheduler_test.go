package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaseledger/internal/usecase"
)

type runnerStub struct {
	mu      sync.Mutex
	calls   []string
	periods []time.Time
	results map[string]*usecase.PeriodEndResult
	errs    map[string]error
}

func (r *runnerStub) RunPeriodEnd(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tenantID)
	r.periods = append(r.periods, periodDate)
	if err := r.errs[tenantID]; err != nil {
		return nil, err
	}
	if res, ok := r.results[tenantID]; ok {
		return res, nil
	}
	return &usecase.PeriodEndResult{TenantID: tenantID, PeriodDate: periodDate, Total: 1, Succeeded: 1}, nil
}

type posterStub struct {
	calls []string
	err   error
}

func (p *posterStub) PostPeriod(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error) {
	p.calls = append(p.calls, tenantID)
	if p.err != nil {
		return nil, p.err
	}
	return &usecase.PostingResult{Success: true, BatchID: "B-" + tenantID}, nil
}

type failureStub struct {
	jobs []string
}

func (f *failureStub) IncScheduledJobFailure(job, tenant string) {
	f.jobs = append(f.jobs, job+":"+tenant)
}

func TestPreviousPeriodEnd(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PreviousPeriodEnd(tt.now))
	}
}

func TestNew_RejectsInvalidSpec(t *testing.T) {
	_, err := New(Config{Spec: "every month", PeriodEnd: &runnerStub{}, Logger: zerolog.Nop()})
	require.Error(t, err)
}

func TestNew_RequiresPosterWhenPosting(t *testing.T) {
	_, err := New(Config{Spec: "0 2 1 * *", Post: true, PeriodEnd: &runnerStub{}, Logger: zerolog.Nop()})
	require.Error(t, err)
}

func TestRunOnce_RunsPeriodEndThenPostsEachTenant(t *testing.T) {
	runner := &runnerStub{}
	poster := &posterStub{}

	s, err := New(Config{
		Spec:      "0 2 1 * *",
		Tenants:   []string{"acme", "globex"},
		Post:      true,
		PeriodEnd: runner,
		Poster:    poster,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	s.WithNow(func() time.Time { return time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC) })

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"acme", "globex"}, runner.calls)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), runner.periods[0])
	assert.Equal(t, []string{"acme", "globex"}, poster.calls)
}

func TestRunOnce_TenantFailureDoesNotStopOthers(t *testing.T) {
	runner := &runnerStub{
		errs: map[string]error{"acme": errors.New("database unavailable")},
		results: map[string]*usecase.PeriodEndResult{
			"initech": {Total: 2, Succeeded: 1, Failures: []usecase.LeaseFailure{{LeaseID: "l2", Err: errors.New("boom")}}},
		},
	}
	poster := &posterStub{}
	failures := &failureStub{}

	s, err := New(Config{
		Spec:      "0 2 1 * *",
		Tenants:   []string{"acme", "globex", "initech"},
		Post:      true,
		PeriodEnd: runner,
		Poster:    poster,
		Failures:  failures,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"acme", "globex", "initech"}, runner.calls)
	// initech had a partial run, so only globex is posted.
	assert.Equal(t, []string{"globex"}, poster.calls)
	assert.Equal(t, []string{"period-end:acme"}, failures.jobs)
}

func TestRunOnce_CountsPostingFailures(t *testing.T) {
	failures := &failureStub{}
	s, err := New(Config{
		Spec:      "0 2 1 * *",
		Tenants:   []string{"acme"},
		Post:      true,
		PeriodEnd: &runnerStub{},
		Poster:    &posterStub{err: errors.New("erp down")},
		Failures:  failures,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"post-period:acme"}, failures.jobs)
}

func TestRunOnce_WithoutPosting(t *testing.T) {
	runner := &runnerStub{}
	s, err := New(Config{
		Spec:      "@monthly",
		Tenants:   []string{"acme"},
		PeriodEnd: runner,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"acme"}, runner.calls)
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{Spec: "@every 1h", Tenants: []string{"acme"}, PeriodEnd: &runnerStub{}, Logger: zerolog.Nop()})
	require.NoError(t, err)

	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
