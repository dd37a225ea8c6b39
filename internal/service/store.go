package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"
	"dynamo-league/internal/metrics"

	"github.com/rs/zerolog"
)

// PlayerStore is the persistence collaborator for player aggregates.
type PlayerStore interface {
	Get(ctx context.Context, id string) (*domain.Player, error)
	ListDue(ctx context.Context, state domain.State, now time.Time) ([]*domain.Player, error)
	ContractValuesForTeam(ctx context.Context, teamID string) ([]int, error)
	Commit(ctx context.Context, p *domain.Player) error
}

type TeamStore interface {
	Get(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
}

// mutator runs load, transition, commit against one player. When the commit loses a race the
// player is reloaded and the transition re-evaluated against the committed state: if it still
// applies the commit is retried, otherwise the call fails with ErrConcurrencyConflict.
type mutator struct {
	players PlayerStore
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

func (m mutator) apply(ctx context.Context, playerID, operation string, fn func(*domain.Player) error) (*domain.Player, error) {
	if playerID == "" {
		return nil, fmt.Errorf("player id is empty: %w", domain.ErrNotFound)
	}

	var conflict error
	for attempt := 0; attempt <= constants.CommitRetries; attempt++ {
		p, err := m.players.Get(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			if conflict != nil {
				return nil, fmt.Errorf("%s on player %s was overtaken by a concurrent change (%v): %w",
					operation, playerID, err, domain.ErrConcurrencyConflict)
			}
			return nil, err
		}

		err = m.players.Commit(ctx, p)
		if err == nil {
			m.metrics.RecordTransition(operation)
			return p, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		conflict = err
		m.metrics.RecordConflict(operation)
		m.logger.Warn().
			Err(err).
			Str("player_id", playerID).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Msg("commit conflict, reloading player")
	}
	return nil, conflict
}
