package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"dynamo-league/internal/constants"
	fxmodules "dynamo-league/internal/fx"
	"dynamo-league/internal/importer"
	"dynamo-league/internal/logger"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	teamsPath := flag.String("teams", "", "CSV file with a name column")
	playersPath := flag.String("players", "", "CSV file with player rows")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	if *teamsPath == "" && *playersPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import -teams teams.csv -players players.csv")
		os.Exit(2)
	}

	opts := []fx.Option{fxmodules.Module, fx.NopLogger}
	if *verbose {
		opts = append(opts, fx.Decorate(func(zerolog.Logger) zerolog.Logger {
			return logger.SetLevel(zerolog.DebugLevel)
		}))
	}

	app := fx.New(append(opts,
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, im *importer.Importer, db *sql.DB, log zerolog.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						code := 0
						if err := run(im, *teamsPath, *playersPath); err != nil {
							log.Error().Err(err).Msg("import failed")
							code = 1
						}
						_ = sd.Shutdown(fx.ExitCode(code))
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					return db.Close()
				},
			})
		}),
	)...)
	app.Run()
}

func run(im *importer.Importer, teamsPath, playersPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.JobTimeout)
	defer cancel()

	teams, closeTeams, err := open(teamsPath)
	if err != nil {
		return err
	}
	defer closeTeams()
	players, closePlayers, err := open(playersPath)
	if err != nil {
		return err
	}
	defer closePlayers()

	_, err = im.Import(ctx, teams, players)
	return err
}

func open(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
