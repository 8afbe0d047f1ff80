package main

import (
	"context"
	"flag"
	"os"

	"github.com/oggyb/moviematch/internal/config"
	"github.com/oggyb/moviematch/internal/db"
	"github.com/oggyb/moviematch/internal/logger"
)

func main() {
	demo := flag.Bool("demo", false, "also reset users and create the demo couple")
	flag.Parse()

	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()
	ctx := context.Background()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if *demo {
		if err := db.SeedTestData(ctx, database, log); err != nil {
			log.Error("failed to seed", "err", err)
			os.Exit(1)
		}
		log.Info("seeding completed")
		return
	}

	movies, err := db.Catalog()
	if err != nil {
		log.Error("failed to read catalog", "err", err)
		os.Exit(1)
	}
	inserted, skipped, err := db.SeedCatalog(ctx, database, movies, log)
	if err != nil {
		log.Error("failed to seed catalog", "err", err)
		os.Exit(1)
	}
	log.Info("catalog seeded", "inserted", inserted, "skipped", skipped)
}
