package service

import (
	"context"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"
	"dynamo-league/internal/metrics"

	"github.com/rs/zerolog"
)

type OfferMatchingService struct {
	clock   clock.Clock
	mutator mutator
	logger  zerolog.Logger
}

func NewOfferMatchingService(players PlayerStore, clk clock.Clock, recorder *metrics.Recorder, logger zerolog.Logger) *OfferMatchingService {
	return &OfferMatchingService{
		clock:   clk,
		mutator: mutator{players: players, metrics: recorder, logger: logger},
		logger:  logger,
	}
}

// SubmitMatchDecision lets the incumbent team match the winning offer, keeping the player at the
// offered amount. It fails with ErrInvalidStateTransition unless the player is in offer matching.
func (s *OfferMatchingService) SubmitMatchDecision(ctx context.Context, playerID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	p, err := s.mutator.apply(ctx, playerID, domain.TransitionMatchOffer, func(p *domain.Player) error {
		return p.MatchOffer(s.clock.Now())
	})
	if err != nil {
		s.logger.Info().Err(err).Str("player_id", playerID).Msg("match decision rejected")
		return err
	}

	s.logger.Info().
		Str("player_id", p.ID).
		Str("team_id", p.TeamID()).
		Int("contract_value", p.ContractValue()).
		Msg("offer matched")
	return nil
}
