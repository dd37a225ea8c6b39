package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/config"
	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"
	"dynamo-league/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	JobBiddingClose        = "bidding_close"
	JobOfferMatchingExpiry = "offer_matching_expiry"
)

var ErrJobAlreadyRunning = errors.New("job already running")

// JobService runs the scheduled lifecycle sweeps. Each job holds its own guard, so a manual
// trigger and the schedule never run the same job concurrently.
type JobService struct {
	players     PlayerStore
	clock       clock.Clock
	matchWindow time.Duration
	metrics     *metrics.Recorder
	logger      zerolog.Logger

	biddingClose   sync.Mutex
	matchingExpiry sync.Mutex
}

type jobOutcome int

const (
	outcomeTransitioned jobOutcome = iota
	outcomeSkipped
)

func NewJobService(players PlayerStore, clk clock.Clock, cfg *config.Config, recorder *metrics.Recorder, logger zerolog.Logger) *JobService {
	return &JobService{
		players:     players,
		clock:       clk,
		matchWindow: cfg.MatchWindow,
		metrics:     recorder,
		logger:      logger,
	}
}

// RunBiddingCloseJob moves every free agent whose bidding window has elapsed into offer matching.
// It returns the number of players transitioned.
func (s *JobService) RunBiddingCloseJob(ctx context.Context) (int, error) {
	return s.run(ctx, &s.biddingClose, JobBiddingClose, domain.StateFreeAgent, domain.TransitionCloseBidding,
		func(p *domain.Player, now time.Time) error {
			return p.CloseBidding(now, s.matchWindow)
		})
}

// RunOfferMatchingExpiryJob finalizes every offer whose matching window has elapsed.
func (s *JobService) RunOfferMatchingExpiryJob(ctx context.Context) (int, error) {
	return s.run(ctx, &s.matchingExpiry, JobOfferMatchingExpiry, domain.StateOfferMatching, domain.TransitionExpireMatch,
		func(p *domain.Player, now time.Time) error {
			return p.ExpireMatch(now)
		})
}

func (s *JobService) run(ctx context.Context, guard *sync.Mutex, job string, state domain.State, transition string, fn func(*domain.Player, time.Time) error) (int, error) {
	if !guard.TryLock() {
		return 0, fmt.Errorf("%s: %w", job, ErrJobAlreadyRunning)
	}
	defer guard.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.JobTimeout)
	defer cancel()

	start := time.Now()
	now := s.clock.Now()
	logger := s.logger.With().Str("job", job).Time("now", now).Logger()

	due, err := s.players.ListDue(ctx, state, now)
	if err != nil {
		err = fmt.Errorf("failed to list players for %s: %w", job, err)
		s.metrics.RecordJobRun(job, time.Since(start), 0, 0, 0, err)
		return 0, err
	}

	var transitioned, skipped, failed int
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			s.metrics.RecordJobRun(job, time.Since(start), transitioned, skipped, failed, err)
			return transitioned, fmt.Errorf("%s interrupted: %w", job, err)
		}

		outcome, err := s.transitionDue(ctx, p, state, transition, now, fn)
		switch {
		case err != nil:
			failed++
			logger.Error().Err(err).Str("player_id", p.ID).Msg("failed to transition player")
		case outcome == outcomeSkipped:
			skipped++
			logger.Debug().Str("player_id", p.ID).Msg("player no longer due, skipped")
		default:
			transitioned++
		}
	}

	s.metrics.RecordJobRun(job, time.Since(start), transitioned, skipped, failed, nil)
	logger.Info().
		Int("due", len(due)).
		Int("transitioned", transitioned).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("job completed")
	return transitioned, nil
}

// transitionDue applies fn and commits. A lost commit race reloads the player and retries only
// while the player still matches the job predicate.
func (s *JobService) transitionDue(ctx context.Context, p *domain.Player, state domain.State, transition string, now time.Time, fn func(*domain.Player, time.Time) error) (jobOutcome, error) {
	for attempt := 0; ; attempt++ {
		if err := fn(p, now); err != nil {
			return outcomeSkipped, err
		}
		err := s.players.Commit(ctx, p)
		if err == nil {
			s.metrics.RecordTransition(transition)
			return outcomeTransitioned, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return outcomeSkipped, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return outcomeSkipped, err
		}
		s.metrics.RecordConflict(transition)
		if attempt >= constants.CommitRetries {
			return outcomeSkipped, err
		}

		p, err = s.players.Get(ctx, p.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return outcomeSkipped, nil
		}
		if err != nil {
			return outcomeSkipped, err
		}
		if !stillDue(p, state, now) {
			return outcomeSkipped, nil
		}
	}
}

func stillDue(p *domain.Player, state domain.State, now time.Time) bool {
	if p.State() != state {
		return false
	}
	end, ok := p.EndOfFreeAgency()
	return ok && !end.After(now)
}
