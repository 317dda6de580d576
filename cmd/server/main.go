// Package main provides the tavernkeep binary: the MCP stdio server backed by
// PostgreSQL campaign storage.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/tavernkeep/tavernkeep/internal/config"
	"github.com/tavernkeep/tavernkeep/internal/game/combat"
	"github.com/tavernkeep/tavernkeep/internal/game/dice"
	"github.com/tavernkeep/tavernkeep/internal/mcpserver"
	"github.com/tavernkeep/tavernkeep/internal/observability"
	"github.com/tavernkeep/tavernkeep/internal/server"
	"github.com/tavernkeep/tavernkeep/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	characters := postgres.NewCharacterRepository(pool.DB())
	templates := postgres.NewBestiaryRepository(pool.DB())
	combats := postgres.NewCombatRepository(pool.DB())
	campaigns := postgres.NewCampaignRepository(pool.DB())

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
	engine := combat.NewEngine(characters, templates, combats, campaigns, roller, logger)
	mcpSrv := mcpserver.New(cfg.Server, engine, characters, templates, combats, campaigns, logger)

	logger.Info("server initialized",
		zap.String("name", cfg.Server.Name),
		zap.String("version", cfg.Server.Version),
		zap.Duration("startup", time.Since(start)),
	)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("mcp", &server.FuncService{
		StartFn: func() error {
			return mcpSrv.Serve(ctx)
		},
		StopFn: func() {
			cancel()
		},
	})

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(30 * time.Second):
				}
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
