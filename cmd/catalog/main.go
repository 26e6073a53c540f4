package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/logger"
	"github.com/Rrens/talent-chat/internal/repository"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the interview question catalog",
	Long: `Import and inspect the questions drawn during interview chats.

Examples:
  catalog import questions.yaml
  catalog list --age 6`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		_, err := logger.Setup(config.LoggingConfig{Level: level, Format: "console"}, os.Getenv("ENV"))
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.AddCommand(importCmd, listCmd)
}

// openBackend loads configuration and connects to the configured database
func openBackend(ctx context.Context) (*config.Config, *repository.Backend, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, backend, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
