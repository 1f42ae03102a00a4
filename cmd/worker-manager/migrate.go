// cmd/worker-manager/migrate.go
package main

import (
	"context"
	"fmt"
	"time"

	"chatnil-workers/internal/common/database"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			return runMigrate(cmd.Context(), direction)
		},
	}
	return cmd
}

func runMigrate(ctx context.Context, direction string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	switch direction {
	case "down":
		return migrations.Down(ctx, pg.DB, log)
	case "status":
		return migrations.Status(ctx, pg.DB, log)
	default:
		return migrations.Up(ctx, pg.DB, log)
	}
}
