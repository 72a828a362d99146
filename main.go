package main

import (
	"flag"
	"log"

	"github.com/malharwork/agneez-poc/internal/app"
	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	forceMigrate := flag.Bool("migrate", false, "run database migrations before starting")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ForceMigrate = *forceMigrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if cfg.MigrateOnly {
		logger.Log.Info("migration complete, exiting")
		return
	}

	application.Run()
}
