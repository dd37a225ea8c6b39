package service

import (
	"context"
	"fmt"
	"time"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"
	"dynamo-league/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type BiddingService struct {
	players PlayerStore
	teams   TeamStore
	clock   clock.Clock
	mutator mutator
	logger  zerolog.Logger
}

func NewBiddingService(players PlayerStore, teams TeamStore, clk clock.Clock, recorder *metrics.Recorder, logger zerolog.Logger) *BiddingService {
	return &BiddingService{
		players: players,
		teams:   teams,
		clock:   clk,
		mutator: mutator{players: players, metrics: recorder, logger: logger},
		logger:  logger,
	}
}

// PlaceBid records a bid from teamID on a free agent. A bid must beat the current top bid.
func (s *BiddingService) PlaceBid(ctx context.Context, playerID, teamID string, amount int) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if amount <= 0 {
		return &domain.ValidationError{Field: "bid amount", Reason: "must be positive"}
	}
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		return err
	}
	bidID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate bid id: %w", err)
	}

	p, err := s.mutator.apply(ctx, playerID, domain.TransitionAddBid, func(p *domain.Player) error {
		if p.State() == domain.StateFreeAgent {
			if top, ok := p.WinningBid(); ok && amount <= top.Amount {
				return &domain.ValidationError{
					Field:  "bid amount",
					Reason: fmt.Sprintf("must exceed the current top bid of %d", top.Amount),
				}
			}
		}
		return p.AddBid(bidID, teamID, amount, s.clock.Now())
	})
	if err != nil {
		s.logger.Info().
			Err(err).
			Str("player_id", playerID).
			Str("team_id", teamID).
			Int("amount", amount).
			Msg("bid rejected")
		return err
	}

	s.logger.Info().
		Str("player_id", p.ID).
		Str("team_id", teamID).
		Str("bid_id", bidID).
		Int("amount", amount).
		Int("bids", len(p.Bids())).
		Msg("bid placed")
	return nil
}

// StartFreeAgency opens bidding on an unsigned or expiring player until endsAt.
func (s *BiddingService) StartFreeAgency(ctx context.Context, playerID string, endsAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !endsAt.After(s.clock.Now()) {
		return &domain.ValidationError{Field: "bidding end", Reason: "must be in the future"}
	}

	if _, err := s.mutator.apply(ctx, playerID, domain.TransitionSetToFreeAgent, func(p *domain.Player) error {
		return p.SetToFreeAgent(endsAt)
	}); err != nil {
		return err
	}

	s.logger.Info().Str("player_id", playerID).Time("bidding_ends_at", endsAt).Msg("free agency started")
	return nil
}
