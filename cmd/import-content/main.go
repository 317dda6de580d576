// Package main provides the import-content binary: it loads campaign seed
// YAML files into the PostgreSQL stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/tavernkeep/tavernkeep/internal/config"
	"github.com/tavernkeep/tavernkeep/internal/importer"
	"github.com/tavernkeep/tavernkeep/internal/observability"
	"github.com/tavernkeep/tavernkeep/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	dir := flag.String("dir", "", "content directory (defaults to content.dir from the config)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *dir == "" {
		*dir = cfg.Content.Dir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	characters := postgres.NewCharacterRepository(pool.DB())
	templates := postgres.NewBestiaryRepository(pool.DB())
	campaigns := postgres.NewCampaignRepository(pool.DB())

	imp := importer.New(characters, templates, campaigns, logger)
	sum, err := imp.Run(ctx, *dir)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("import complete in %s: %d files, %d campaigns, %d characters, %d bestiary templates\n",
		time.Since(start).Round(time.Millisecond),
		sum.Files, sum.Campaigns, sum.Characters, sum.Templates,
	)
}
