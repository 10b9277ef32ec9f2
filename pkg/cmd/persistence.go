package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/persistence/file"
	"github.com/rustpress-net/flowstudio/pkg/persistence/postgresql"
	"github.com/rustpress-net/flowstudio/pkg/persistence/redis"
)

// NewPersistence creates the persistence layer for the database URL. The URL
// scheme selects the backend, anything without a recognized scheme is treated
// as a directory for file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return p
	case "redis", "rediss":
		p, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create Redis persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
