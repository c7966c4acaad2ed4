package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/leaseledger/internal/usecase"
)

// Job names used in logs and metrics.
const (
	JobPeriodEnd  = "period-end"
	JobPostPeriod = "post-period"
)

// PeriodEndRunner runs the period-end batch for one tenant.
type PeriodEndRunner interface {
	RunPeriodEnd(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error)
}

// PeriodPoster posts one tenant's period to the ERP.
type PeriodPoster interface {
	PostPeriod(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error)
}

// FailureCounter counts failed scheduled jobs.
type FailureCounter interface {
	IncScheduledJobFailure(job, tenant string)
}

// Config configures the month-end scheduler.
type Config struct {
	// Spec is a standard five-field cron expression.
	Spec    string
	Tenants []string
	// Post submits each tenant's period to the ERP after a fully successful run.
	Post      bool
	Timeout   time.Duration
	PeriodEnd PeriodEndRunner
	Poster    PeriodPoster
	Failures  FailureCounter
	Logger    zerolog.Logger
}

// Scheduler runs the period-end batch, then posting, for the previous month on
// a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	tenants   []string
	post      bool
	timeout   time.Duration
	periodEnd PeriodEndRunner
	poster    PeriodPoster
	failures  FailureCounter
	logger    zerolog.Logger
	now       func() time.Time
}

// New validates cfg and registers the month-end job. Call Start to begin.
func New(cfg Config) (*Scheduler, error) {
	if cfg.PeriodEnd == nil {
		return nil, fmt.Errorf("scheduler: period-end runner is required")
	}
	if cfg.Post && cfg.Poster == nil {
		return nil, fmt.Errorf("scheduler: poster is required when posting is enabled")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Hour
	}

	logger := cfg.Logger.With().Str("component", "scheduler").Logger()
	cronLogger := cronLog{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
			cron.WithLogger(cronLogger),
		),
		tenants:   cfg.Tenants,
		post:      cfg.Post,
		timeout:   cfg.Timeout,
		periodEnd: cfg.PeriodEnd,
		poster:    cfg.Poster,
		failures:  cfg.Failures,
		logger:    logger,
		now:       time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", cfg.Spec, err)
	}

	return s, nil
}

// WithNow overrides the clock used to pick the period.
func (s *Scheduler) WithNow(now func() time.Time) {
	s.now = now
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info().Strs("tenants", s.tenants).Msg("scheduler started")
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stopped while a job was still running")
	}
}

// RunOnce processes the previous month's end for every tenant. A failing tenant
// does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	periodDate := PreviousPeriodEnd(s.now())

	for _, tenantID := range s.tenants {
		if ctx.Err() != nil {
			s.logger.Warn().Err(ctx.Err()).Msg("scheduled run interrupted")
			return
		}
		s.runTenant(ctx, tenantID, periodDate)
	}
}

func (s *Scheduler) runTenant(ctx context.Context, tenantID string, periodDate time.Time) {
	log := s.logger.With().
		Str("tenant_id", tenantID).
		Str("period_date", periodDate.Format(time.DateOnly)).
		Logger()

	result, err := s.periodEnd.RunPeriodEnd(ctx, tenantID, periodDate)
	if err != nil {
		s.fail(JobPeriodEnd, tenantID)
		log.Error().Err(err).Msg("scheduled period-end failed")
		return
	}
	log.Info().Str("message", result.Message()).Msg("scheduled period-end finished")

	if !s.post {
		return
	}
	// Posting waits for a complete period so no lease is left behind in a batch.
	if !result.Success() {
		log.Warn().Int("failures", len(result.Failures)).Msg("skipping posting, period-end incomplete")
		return
	}

	posting, err := s.poster.PostPeriod(ctx, tenantID, periodDate)
	if err != nil {
		s.fail(JobPostPeriod, tenantID)
		log.Error().Err(err).Msg("scheduled posting failed")
		return
	}
	log.Info().
		Str("batch_id", posting.BatchID).
		Int("posted", posting.Posted()).
		Str("message", posting.Message).
		Msg("scheduled posting finished")
}

func (s *Scheduler) fail(job, tenantID string) {
	if s.failures != nil {
		s.failures.IncScheduledJobFailure(job, tenantID)
	}
}

// PreviousPeriodEnd returns the last day of the month before now, in UTC.
func PreviousPeriodEnd(now time.Time) time.Time {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1)
}

// cronLog adapts zerolog to cron.Logger.
type cronLog struct {
	logger zerolog.Logger
}

func (l cronLog) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLog) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
