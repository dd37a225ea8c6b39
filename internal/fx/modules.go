package fx

import (
	"dynamo-league/internal/api"
	"dynamo-league/internal/clock"
	"dynamo-league/internal/config"
	"dynamo-league/internal/database"
	"dynamo-league/internal/importer"
	"dynamo-league/internal/logger"
	"dynamo-league/internal/metrics"
	"dynamo-league/internal/repository"
	"dynamo-league/internal/scheduler"
	"dynamo-league/internal/server"
	"dynamo-league/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideClock(cfg *config.Config) clock.Clock {
	return clock.NewLeague(cfg.Location)
}

func ProvidePlayerStore(repo *repository.PlayerRepository) service.PlayerStore {
	return repo
}

func ProvideTeamStore(repo *repository.TeamRepository) service.TeamStore {
	return repo
}

func ProvideImporter(
	teams *repository.TeamRepository,
	players *repository.PlayerRepository,
	headshots *api.HeadshotClient,
	clk clock.Clock,
	logger zerolog.Logger,
) *importer.Importer {
	return importer.New(teams, players, headshots, clk, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideClock),
	fx.Provide(metrics.NewRecorder),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewTeamRepository),
	fx.Provide(ProvidePlayerStore),
	fx.Provide(ProvideTeamStore),
	// api client
	fx.Provide(api.NewHeadshotClient),
	// svc
	fx.Provide(service.NewBiddingService),
	fx.Provide(service.NewOfferMatchingService),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewJobService),
	fx.Provide(scheduler.New),
	fx.Provide(ProvideImporter),
	// server
	fx.Provide(server.NewLeagueServer),
)
