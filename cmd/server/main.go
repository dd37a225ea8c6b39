package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"dynamo-league/internal/config"
	"dynamo-league/internal/constants"
	fxmodules "dynamo-league/internal/fx"
	"dynamo-league/internal/metrics"
	"dynamo-league/internal/middleware"
	"dynamo-league/internal/scheduler"
	"dynamo-league/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	leagueServer *server.LeagueServer,
	sched *scheduler.Scheduler,
	recorder *metrics.Recorder,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	path, handler := server.NewLeagueServiceHandler(leagueServer)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	requestIDMiddleware := middleware.RequestID(logger, recorder, server.Procedures()...)

	mux.Handle(path, requestIDMiddleware(c.Handler(handler)))
	mux.Handle("/metrics", recorder.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.SchedulerEnabled {
				sched.Start(ctx)
			} else {
				logger.Info().Msg("scheduler disabled")
			}
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			return shutdown(shutdownCtx, logger, srv, sched, db)
		},
	})
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type stopper interface {
	Stop(ctx context.Context) error
}

// shutdown stops the HTTP server, then the scheduler, then closes the database. Every step runs
// even when an earlier one fails; the server error is returned.
func shutdown(ctx context.Context, logger zerolog.Logger, srv shutdowner, sched stopper, db io.Closer) error {
	shutdownErr := srv.Shutdown(ctx)
	if shutdownErr != nil {
		logger.Error().Err(shutdownErr).Msg("server shutdown failed")
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Warn().Err(err).Msg("scheduler did not stop cleanly")
	}
	if err := db.Close(); err != nil {
		logger.Warn().Err(err).Msg("error closing database connection")
	}
	if shutdownErr != nil {
		return shutdownErr
	}
	logger.Info().Msg("server stopped gracefully")
	return nil
}
