package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/talent-chat/internal/api"
	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/logger"
	"github.com/Rrens/talent-chat/internal/media"
	"github.com/Rrens/talent-chat/internal/repository"
	"github.com/Rrens/talent-chat/internal/repository/redis"
	"github.com/Rrens/talent-chat/internal/speech"
	googlespeech "github.com/Rrens/talent-chat/internal/speech/google"
	openaispeech "github.com/Rrens/talent-chat/internal/speech/openai"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = true
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logger.Setup(cfg.Logging, os.Getenv("ENV"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if !envLoaded {
		log.Debug().Msg(".env file not found in any standard location")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("media", cfg.Media.Driver).
		Msg("Starting talent chat API server")

	ctx := context.Background()

	// Initialize database
	backend, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer backend.Close()

	if err := repository.Migrate(cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	mediaStore, err := media.New(ctx, cfg.Media)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open media storage")
	}
	defer mediaStore.Close()

	synthesizer, err := newSynthesizer(ctx, cfg.Speech)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create speech synthesizer")
	}
	log.Info().Str("provider", synthesizer.Name()).Msg("Speech synthesizer ready")

	router := api.NewRouter(cfg, api.Dependencies{
		Stores:      backend,
		Redis:       redisClient,
		Media:       mediaStore,
		Synthesizer: synthesizer,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func newSynthesizer(ctx context.Context, cfg config.SpeechConfig) (speech.Synthesizer, error) {
	switch cfg.Provider {
	case "", "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("speech.openai.api_key is required for the openai speech provider")
		}
		return openaispeech.NewSynthesizer(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.Voice), nil
	case "google":
		return googlespeech.NewSynthesizer(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", cfg.Provider)
	}
}
