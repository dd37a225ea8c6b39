package service

import (
	"context"
	"errors"
	"time"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/config"
	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"
	"dynamo-league/internal/metrics"

	"github.com/rs/zerolog"
)

type RosterService struct {
	players PlayerStore
	teams   TeamStore
	clock   clock.Clock
	caps    domain.SalaryCaps
	policy  domain.UnrosterPolicy
	mutator mutator
	logger  zerolog.Logger
}

type CapSpace struct {
	TeamID    string
	Season    int
	Cap       int
	Remaining int
}

type BidDetail struct {
	domain.Bid
	TeamName string
}

// PlayerDetail is a player with team names resolved for display.
type PlayerDetail struct {
	Player   *domain.Player
	TeamName string
	Bids     []BidDetail
}

func NewRosterService(players PlayerStore, teams TeamStore, clk clock.Clock, cfg *config.Config, recorder *metrics.Recorder, logger zerolog.Logger) *RosterService {
	return &RosterService{
		players: players,
		teams:   teams,
		clock:   clk,
		caps:    cfg.SalaryCaps,
		policy:  cfg.UnrosterPolicy,
		mutator: mutator{players: players, metrics: recorder, logger: logger},
		logger:  logger,
	}
}

// GetRemainingCapSpace reports the cap left for teamID in the season containing asOf.
// A zero asOf means now.
func (s *RosterService) GetRemainingCapSpace(ctx context.Context, teamID string, asOf time.Time) (*CapSpace, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		return nil, err
	}
	salaryCap, err := s.caps.ForSeason(asOf)
	if err != nil {
		return nil, err
	}
	values, err := s.players.ContractValuesForTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.caps.RemainingCapSpace(asOf, values...)
	if err != nil {
		return nil, err
	}

	return &CapSpace{
		TeamID:    teamID,
		Season:    asOf.Year(),
		Cap:       salaryCap,
		Remaining: remaining,
	}, nil
}

func (s *RosterService) GetPlayer(ctx context.Context, playerID string) (*PlayerDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	names, err := s.teamNames(ctx)
	if err != nil {
		return nil, err
	}

	detail := &PlayerDetail{Player: p, TeamName: names[p.TeamID()]}
	for _, b := range p.Bids() {
		detail.Bids = append(detail.Bids, BidDetail{Bid: b, TeamName: names[b.TeamID]})
	}
	return detail, nil
}

func (s *RosterService) SignPlayer(ctx context.Context, playerID string, yearContractExpires, contractValue int) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if yearContractExpires < s.clock.Now().Year() {
		return &domain.ValidationError{Field: "year contract expires", Reason: "must not be in the past"}
	}
	p, err := s.mutator.apply(ctx, playerID, domain.TransitionSignForCurrentTeam, func(p *domain.Player) error {
		return p.SignForCurrentTeam(yearContractExpires, contractValue)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("player_id", p.ID).
		Str("team_id", p.TeamID()).
		Int("year_contract_expires", yearContractExpires).
		Int("contract_value", contractValue).
		Msg("player signed")
	return nil
}

func (s *RosterService) UnrosterPlayer(ctx context.Context, playerID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	p, err := s.mutator.apply(ctx, playerID, domain.TransitionSetToUnrostered, func(p *domain.Player) error {
		return p.SetToUnrostered(s.policy)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("player_id", p.ID).
		Str("policy", string(s.policy)).
		Bool("has_team", p.HasTeam()).
		Msg("player unrostered")
	return nil
}

func (s *RosterService) teamNames(ctx context.Context) (map[string]string, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn().Err(err).Msg("team lookup timed out")
		}
		return nil, err
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names, nil
}
