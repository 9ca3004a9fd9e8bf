package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// SentinelTable is checked before migrating; its presence means the schema is current.
const SentinelTable = "screenshot_activity"

var steps = []migrationStep{
	{
		Name: "create_table_screenshot_activity",
		SQL: `CREATE TABLE IF NOT EXISTS screenshot_activity (
  id          UUID        PRIMARY KEY,
  action      TEXT        NOT NULL,
  actor       TEXT        NOT NULL,
  object_key  TEXT        NOT NULL DEFAULT '',
  detail      TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_screenshot_activity_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_screenshot_activity_created_at ON screenshot_activity (created_at DESC);`,
	},
	{
		Name: "create_index_screenshot_activity_object_key",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_screenshot_activity_object_key ON screenshot_activity (object_key);`,
	},
}

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db migration check", zap.String("event", "db_migration_check"), zap.String("status", "starting"))

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('public.%s') IS NOT NULL", SentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db migration failed",
			zap.String("event", "db_migration_failed"),
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			zap.String("event", "db_migration_skip"),
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db migration start", zap.String("event", "db_migration_start"), zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db migration failed",
				zap.String("event", "db_migration_failed"),
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db migration step",
			zap.String("event", "db_migration_step"),
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db migration success",
		zap.String("event", "db_migration_success"),
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
