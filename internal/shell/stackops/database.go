package stackops

import (
	"context"

	"go.uber.org/zap"

	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
	"github.com/Liquid4All/on-prem-stack/internal/shell/database"
)

// DatabaseHost is where the compose project publishes Postgres.
const DatabaseHost = "localhost"

// DBCheck connects to the stack's Postgres through its published port and
// reports the configured schema.
func (s *Service) DBCheck(ctx context.Context) (*database.Report, error) {
	cfg, err := configstore.Load(s.paths.Config)
	if err != nil {
		return nil, err
	}

	checker, err := database.Open(ctx, database.DSN(cfg.Database, DatabaseHost))
	if err != nil {
		return nil, err
	}
	defer checker.Close()

	report, err := checker.Check(ctx, cfg.Database.Schema)
	if err != nil {
		return report, err
	}

	s.logger.Debug("database check passed",
		zap.String("version", report.ServerVersion),
		zap.Int("tables", len(report.Tables)),
	)
	s.printf("Postgres %s is reachable on %s:%d\n", report.ServerVersion, DatabaseHost, cfg.Database.Port)
	s.printf("Schema %q has %d tables\n", report.Schema, len(report.Tables))
	return report, nil
}
