package main

import (
	"fmt"
	"os"

	"github.com/Rrens/talent-chat/internal/catalog"
	"github.com/Rrens/talent-chat/internal/repository"
	"github.com/Rrens/talent-chat/internal/repository/redis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import questions from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()

		items, err := catalog.Parse(f)
		if err != nil {
			return err
		}
		if importDryRun {
			fmt.Println(countStyle.Render(fmt.Sprintf("%d question(s) valid", len(items))))
			return nil
		}

		ctx := cmd.Context()
		cfg, backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := repository.Migrate(cfg.Database); err != nil {
			return err
		}

		created, err := catalog.Import(ctx, backend.Questions, items, cfg.Session.DefaultAge)
		if err != nil {
			return err
		}

		// drop the cached catalog so the server draws from the new set
		if cfg.Redis.Host != "" {
			client, err := redis.NewClient(cfg.Redis)
			if err != nil {
				log.Warn().Err(err).Msg("Could not invalidate question cache")
			} else {
				defer client.Close()
				if err := redis.NewQuestionCache(client, cfg.Redis.CacheTTL).Invalidate(ctx); err != nil {
					log.Warn().Err(err).Msg("Could not invalidate question cache")
				}
			}
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Imported %d question(s)", len(created))))
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without writing")
}
