package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/config"
	"dynamo-league/internal/database"
	"dynamo-league/internal/domain"
	"dynamo-league/internal/metrics"
	"dynamo-league/internal/repository"

	"github.com/rs/zerolog"
)

var (
	base   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	endsAt = base.Add(48 * time.Hour)
)

type fixture struct {
	now      time.Time
	cfg      *config.Config
	players  *repository.PlayerRepository
	teams    *repository.TeamRepository
	recorder *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		DBPath:         filepath.Join(t.TempDir(), "league.db"),
		MatchWindow:    72 * time.Hour,
		UnrosterPolicy: domain.UnrosterKeepTeam,
		SalaryCaps:     domain.SalaryCaps{2026: 50000},
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		now:      base,
		cfg:      cfg,
		players:  repository.NewPlayerRepository(db, zerolog.Nop()),
		teams:    repository.NewTeamRepository(db, zerolog.Nop()),
		recorder: metrics.NewRecorder(),
	}
	for _, id := range []string{"a", "b", "c"} {
		if err := f.teams.Create(context.Background(), &domain.Team{ID: id, Name: "Team " + id}); err != nil {
			t.Fatalf("create team: %v", err)
		}
	}
	return f
}

func (f *fixture) clock() clock.Clock {
	return clock.Func(func() time.Time { return f.now })
}

func (f *fixture) bidding(store PlayerStore) *BiddingService {
	return NewBiddingService(store, f.teams, f.clock(), f.recorder, zerolog.Nop())
}

func (f *fixture) matching(store PlayerStore) *OfferMatchingService {
	return NewOfferMatchingService(store, f.clock(), f.recorder, zerolog.Nop())
}

func (f *fixture) roster(store PlayerStore) *RosterService {
	return NewRosterService(store, f.teams, f.clock(), f.cfg, f.recorder, zerolog.Nop())
}

func (f *fixture) jobs(store PlayerStore) *JobService {
	return NewJobService(store, f.clock(), f.cfg, f.recorder, zerolog.Nop())
}

func (f *fixture) seed(t *testing.T, rec domain.PlayerRecord) {
	t.Helper()
	if rec.Name == "" {
		rec.Name = "Player " + rec.ID
	}
	p, err := domain.RestorePlayer(rec)
	if err != nil {
		t.Fatalf("restore %s: %v", rec.ID, err)
	}
	if err := f.players.Create(context.Background(), p); err != nil {
		t.Fatalf("create %s: %v", rec.ID, err)
	}
}

// seedFreeAgent stores a free agent owned by team a whose bidding ends at end.
func (f *fixture) seedFreeAgent(t *testing.T, id string, end time.Time, bids ...domain.Bid) {
	t.Helper()
	e := end
	f.seed(t, domain.PlayerRecord{
		ID:              id,
		State:           domain.StateFreeAgent,
		TeamID:          "a",
		ContractValue:   1,
		EndOfFreeAgency: &e,
		Bids:            bids,
	})
}

func (f *fixture) seedMatching(t *testing.T, id string, end time.Time, bids ...domain.Bid) {
	t.Helper()
	e := end
	f.seed(t, domain.PlayerRecord{
		ID:              id,
		State:           domain.StateOfferMatching,
		TeamID:          "a",
		ContractValue:   1,
		EndOfFreeAgency: &e,
		Bids:            bids,
	})
}

func (f *fixture) load(t *testing.T, id string) *domain.Player {
	t.Helper()
	p, err := f.players.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return p
}

// racingStore commits a competing change right before the first commit it forwards.
type racingStore struct {
	PlayerStore
	race  func()
	fired bool
}

func (r *racingStore) Commit(ctx context.Context, p *domain.Player) error {
	if !r.fired {
		r.fired = true
		r.race()
	}
	return r.PlayerStore.Commit(ctx, p)
}

// competingChange loads the stored player, applies fn and commits it.
func (f *fixture) competingChange(t *testing.T, id string, fn func(*domain.Player) error) func() {
	return func() {
		p := f.load(t, id)
		if err := fn(p); err != nil {
			t.Fatalf("competing change: %v", err)
		}
		if err := f.players.Commit(context.Background(), p); err != nil {
			t.Fatalf("competing commit: %v", err)
		}
	}
}

// cancellingStore cancels the caller's context right before forwarding a commit.
type cancellingStore struct {
	PlayerStore
	cancel context.CancelFunc
}

func (c *cancellingStore) Commit(ctx context.Context, p *domain.Player) error {
	c.cancel()
	return c.PlayerStore.Commit(ctx, p)
}
