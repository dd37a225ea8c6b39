package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/config"
	"dynamo-league/internal/constants"
	"dynamo-league/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is a task run once a day at Hour:00 league time.
type Job struct {
	Name string
	Hour int
	Run  func(ctx context.Context) (int, error)
}

type Status struct {
	Runs        int
	LastRun     time.Time
	LastCount   int
	LastError   string
	NextRun     time.Time
	LastSuccess time.Time
}

// Scheduler runs each job in its own loop until Stop is called.
type Scheduler struct {
	jobs   []Job
	loc    *time.Location
	logger zerolog.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time

	startMu sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	statusMu sync.RWMutex
	status   map[string]Status
}

// New schedules the bidding-close and offer-matching-expiry jobs at the configured hours.
func New(jobs *service.JobService, cfg *config.Config, clk clock.Clock, logger zerolog.Logger) *Scheduler {
	return NewWithJobs([]Job{
		{Name: service.JobBiddingClose, Hour: cfg.BiddingCloseHour, Run: jobs.RunBiddingCloseJob},
		{Name: service.JobOfferMatchingExpiry, Hour: cfg.OfferExpiryHour, Run: jobs.RunOfferMatchingExpiryJob},
	}, clk, logger)
}

func NewWithJobs(jobs []Job, clk clock.Clock, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		loc:    clk.Location(),
		logger: logger.With().Str("component", "scheduler").Logger(),
		now:    clk.Now,
		after:  time.After,
		status: make(map[string]Status, len(jobs)),
	}
}

// NextRun returns the first hour:00 in loc strictly after now.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// Start launches one loop per job. The loops outlive ctx's deadline and stop on Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started {
		return
	}
	s.started = true

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	g, gctx := errgroup.WithContext(runCtx)
	s.group = g

	for _, job := range s.jobs {
		g.Go(func() error {
			s.loop(gctx, job)
			return nil
		})
	}
	s.logger.Info().Int("jobs", len(s.jobs)).Str("timezone", s.loc.String()).Msg("scheduler started")
}

// Stop cancels the loops and waits for a running job to return, bounded by ctx. A stopped
// scheduler can be started again.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.startMu.Lock()
	cancel, g := s.cancel, s.group
	s.started, s.cancel, s.group = false, nil, nil
	s.startMu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		s.logger.Info().Msg("scheduler stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	logger := s.logger.With().Str("job", job.Name).Logger()
	var retryAt time.Time

	for {
		now := s.now()
		next := NextRun(now, job.Hour, s.loc)
		if !retryAt.IsZero() && retryAt.Before(next) {
			next = retryAt
		}
		s.setNext(job.Name, next)
		logger.Debug().Time("next_run", next).Msg("waiting for next run")

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
		}

		if err := s.runOnce(ctx, job, logger); err != nil && !errors.Is(err, service.ErrJobAlreadyRunning) && ctx.Err() == nil {
			retryAt = s.now().Add(constants.JobRetryDelay)
		} else {
			retryAt = time.Time{}
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job, logger zerolog.Logger) error {
	start := s.now()
	count, err := job.Run(ctx)

	s.statusMu.Lock()
	st := s.status[job.Name]
	st.Runs++
	st.LastRun = start
	st.LastCount = count
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastSuccess = start
	}
	s.status[job.Name] = st
	s.statusMu.Unlock()

	switch {
	case errors.Is(err, service.ErrJobAlreadyRunning):
		logger.Info().Msg("previous run still in progress, skipping")
	case err != nil:
		logger.Error().Err(err).Int("count", count).Dur("retry_in", constants.JobRetryDelay).Msg("scheduled run failed")
	default:
		logger.Info().Int("count", count).Msg("scheduled run finished")
	}
	return err
}

func (s *Scheduler) setNext(name string, next time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	st := s.status[name]
	st.NextRun = next
	s.status[name] = st
}

// Status returns a snapshot of the named job's recent runs.
func (s *Scheduler) Status(name string) Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status[name]
}
