package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"dynamo-league/internal/clock"
	"dynamo-league/internal/constants"
	"dynamo-league/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type TeamStore interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByName(ctx context.Context, name string) (*domain.Team, error)
}

type PlayerStore interface {
	CreateBatch(ctx context.Context, players []*domain.Player) error
}

type HeadshotLookup interface {
	Enabled() bool
	Lookup(ctx context.Context, name, position string) (string, error)
}

type Result struct {
	TeamsCreated   int
	TeamsExisting  int
	PlayersCreated int
	HeadshotsFound int
}

// Importer seeds a league from CSV files.
type Importer struct {
	teams     TeamStore
	players   PlayerStore
	headshots HeadshotLookup
	clock     clock.Clock
	logger    zerolog.Logger
}

func New(teams TeamStore, players PlayerStore, headshots HeadshotLookup, clk clock.Clock, logger zerolog.Logger) *Importer {
	return &Importer{
		teams:     teams,
		players:   players,
		headshots: headshots,
		clock:     clk,
		logger:    logger,
	}
}

// Import creates the teams that do not exist yet, then every player row. Either reader may be nil.
// Player teams are matched by name against both files and the database.
func (im *Importer) Import(ctx context.Context, teamsCSV, playersCSV io.Reader) (*Result, error) {
	result := &Result{}
	teamIDs := map[string]string{}

	if teamsCSV != nil {
		names, err := ParseTeamsCSV(teamsCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to parse teams: %w", err)
		}
		for _, name := range names {
			id, created, err := im.ensureTeam(ctx, name)
			if err != nil {
				return nil, err
			}
			teamIDs[name] = id
			if created {
				result.TeamsCreated++
			} else {
				result.TeamsExisting++
			}
		}
	}

	if playersCSV == nil {
		return result, nil
	}
	rows, err := ParsePlayersCSV(playersCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to parse players: %w", err)
	}

	for _, row := range rows {
		if row.Team == "" {
			continue
		}
		if _, ok := teamIDs[row.Team]; ok {
			continue
		}
		team, err := im.teams.GetByName(ctx, row.Team)
		if err != nil {
			return nil, fmt.Errorf("line %d team %q: %w", row.Line, row.Team, err)
		}
		teamIDs[row.Team] = team.ID
	}

	result.HeadshotsFound = im.lookupHeadshots(ctx, rows)

	players := make([]*domain.Player, 0, len(rows))
	for _, row := range rows {
		p, err := im.buildPlayer(row, teamIDs[row.Team])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}
		players = append(players, p)
	}
	if err := im.players.CreateBatch(ctx, players); err != nil {
		return nil, fmt.Errorf("failed to store players: %w", err)
	}
	result.PlayersCreated = len(players)

	im.logger.Info().
		Int("teams_created", result.TeamsCreated).
		Int("teams_existing", result.TeamsExisting).
		Int("players_created", result.PlayersCreated).
		Int("headshots_found", result.HeadshotsFound).
		Msg("import completed")
	return result, nil
}

func (im *Importer) ensureTeam(ctx context.Context, name string) (string, bool, error) {
	existing, err := im.teams.GetByName(ctx, name)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", false, fmt.Errorf("failed to generate team id: %w", err)
	}
	if err := im.teams.Create(ctx, &domain.Team{ID: id, Name: name}); err != nil {
		return "", false, err
	}
	return id, true, nil
}

// lookupHeadshots fills in missing headshot URLs. Lookup failures are logged and leave the URL empty.
func (im *Importer) lookupHeadshots(ctx context.Context, rows []PlayerRow) int {
	if im.headshots == nil || !im.headshots.Enabled() {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ImportHeadshotTimeout)
	defer cancel()

	found := make([]bool, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.HeadshotLookupConcurrency)
	for i := range rows {
		if rows[i].HeadshotURL != "" {
			continue
		}
		g.Go(func() error {
			url, err := im.headshots.Lookup(gctx, rows[i].Name, rows[i].Position)
			if err != nil {
				im.logger.Warn().Err(err).Str("player", rows[i].Name).Msg("headshot lookup failed")
				return nil
			}
			if url != "" {
				rows[i].HeadshotURL = url
				found[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		im.logger.Warn().Err(err).Msg("headshot lookups interrupted")
	}

	count := 0
	for _, ok := range found {
		if ok {
			count++
		}
	}
	return count
}

func (im *Importer) buildPlayer(row PlayerRow, teamID string) (*domain.Player, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate player id: %w", err)
	}
	p, err := domain.NewPlayer(id, row.Name, row.Position, row.HeadshotURL)
	if err != nil {
		return nil, err
	}
	if teamID == "" {
		return p, nil
	}
	if err := p.AssignToTeam(teamID); err != nil {
		return nil, err
	}

	acquired := im.clock.Now().Year()
	if row.YearAcquired != nil {
		acquired = *row.YearAcquired
	}
	value := max(row.ContractValue, domain.MinimumContractValue)

	switch row.State {
	case domain.StateRostered:
		if err := p.SetToRostered(acquired, value); err != nil {
			return nil, err
		}
		if row.YearContractExpires != nil {
			if err := p.SignForCurrentTeam(*row.YearContractExpires, value); err != nil {
				return nil, err
			}
		}
	case domain.StateUnsigned:
		if err := p.SetToRostered(acquired, value); err != nil {
			return nil, err
		}
		if err := p.SetToUnsigned(); err != nil {
			return nil, err
		}
	}
	return p, nil
}
