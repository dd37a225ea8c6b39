package fx

import (
	"path/filepath"
	"testing"

	"dynamo-league/internal/importer"
	"dynamo-league/internal/scheduler"
	"dynamo-league/internal/server"

	"go.uber.org/fx"
)

func TestModuleResolves(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "league.db"))
	t.Setenv("LOG_LEVEL", "disabled")

	if err := fx.ValidateApp(Module, fx.NopLogger, fx.Invoke(func(*server.LeagueServer, *scheduler.Scheduler, *importer.Importer) {})); err != nil {
		t.Fatalf("dependency graph: %v", err)
	}
}
