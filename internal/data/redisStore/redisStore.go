package redisStore

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// Store is a thin wrapper over one logical Redis database. Each concern
// (jobs, conversations) gets its own Store from the composition root;
// there is no process-wide instance.
type Store struct {
	client *redis.Client
	logger *logger_i.Logger
}

// Connect dials the configured Redis and pings it. A nil error means the
// store is usable; callers decide whether to fall back to an in-memory
// store when it is not.
func Connect(ctx context.Context, db int) (*Store, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = config.RedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              config.RedisPassword,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Store{
		client: client,
		logger: logger_i.NewLogger("redisStore"),
	}, nil
}

func (s *Store) Close() error {
	s.logger.Info("closing redis store")
	return s.client.Close()
}

// NewTestStore wires a Store around a pre-built client (miniredis in tests).
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("test redis"),
	}
}
