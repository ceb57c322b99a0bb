package main

import (
	"context"
	"log"

	"invoice-import-backend/internal/config"
	"invoice-import-backend/internal/logger"
	"invoice-import-backend/internal/routes"
	service "invoice-import-backend/internal/services/importer"
)

func main() {
	// Load .env, environment and defaults
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zlog := logger.WithComponent("main")

	db, err := config.InitDB(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("database connection failed")
	}
	defer config.Close(db)

	if err := config.Migrate(context.Background(), db, cfg.Vendor); err != nil {
		zlog.Error().Err(err).Msg("migration failed")
		return
	}

	r := routes.NewRouter(cfg.CORSOrigins, service.New(db))

	zlog.Info().Str("addr", cfg.Addr()).Msg("starting server")
	if err := r.Run(cfg.Addr()); err != nil {
		zlog.Error().Err(err).Msg("server stopped")
	}
}
