package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/logger"
	"github.com/Rrens/talent-chat/internal/repository"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	source := flag.String("source", "", "migration source URL (defaults to file://migrations/<driver>)")
	steps := flag.Int("steps", 0, "number of migrations to apply, negative to roll back (0 applies all)")
	showVersion := flag.Bool("version", false, "print the applied schema version and exit")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Setup(cfg.Logging, os.Getenv("ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if *source != "" {
		cfg.Database.Migrations = *source
	}

	if *showVersion {
		version, dirty, err := repository.MigrationVersion(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read schema version")
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return
	}

	log.Info().
		Str("driver", cfg.Database.Driver).
		Str("source", cfg.Database.MigrationsSource()).
		Int("steps", *steps).
		Msg("Applying migrations")

	if err := repository.MigrateSteps(cfg.Database, *steps); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
