// Package repository opens the storage backend selected by database.driver.
package repository

import (
	"context"
	"fmt"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/repository/memory"
	"github.com/Rrens/talent-chat/internal/repository/postgres"
	"github.com/Rrens/talent-chat/internal/repository/sqlstore"
	"github.com/rs/zerolog/log"
)

// Backend bundles the repositories of one database
type Backend struct {
	Sessions     domain.SessionStore
	Participants domain.ParticipantRepository
	Questions    domain.QuestionRepository
	Summaries    domain.SummaryRepository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the database connection
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases the database connection
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// NewMemoryBackend wraps an in-memory store
func NewMemoryBackend(store *memory.Store) *Backend {
	return &Backend{
		Sessions:     store,
		Participants: store.Participants(),
		Questions:    store.Questions(),
		Summaries:    store.Summaries(),
		ping:         store.Ping,
	}
}

// Open connects to the configured database
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Sessions:     postgres.NewSessionStore(db, cfg.LockTimeout),
			Participants: postgres.NewParticipantRepository(db),
			Questions:    postgres.NewQuestionRepository(db),
			Summaries:    postgres.NewSummaryRepository(db),
			ping:         db.Ping,
			close:        db.Close,
		}, nil

	case sqlstore.DriverMySQL, sqlstore.DriverSQLite:
		db, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN(), int(cfg.MaxConns))
		if err != nil {
			return nil, err
		}
		return &Backend{
			Sessions:     sqlstore.NewSessionStore(db),
			Participants: sqlstore.NewParticipantRepository(db),
			Questions:    sqlstore.NewQuestionRepository(db),
			Summaries:    sqlstore.NewSummaryRepository(db),
			ping:         db.Ping,
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close database")
				}
			},
		}, nil

	case "memory":
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		return NewMemoryBackend(memory.New()), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
