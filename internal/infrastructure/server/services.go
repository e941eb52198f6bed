package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stickyboard/core/internal/adapters/cache"
	"github.com/stickyboard/core/internal/adapters/repository"
	"github.com/stickyboard/core/internal/application/services"
	"github.com/stickyboard/core/internal/domain/access"
	"github.com/stickyboard/core/internal/infrastructure/config"
	"github.com/stickyboard/core/internal/infrastructure/database"
	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/infrastructure/metrics"
	"github.com/stickyboard/core/internal/ports"
)

// Services is the wired application graph shared by the HTTP server and
// the CLI commands.
type Services struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Board   *services.BoardService
	Metrics *metrics.Metrics

	redis *redis.Client
}

// NewServices builds repositories, the position cache and the services on
// top of db. The Redis cache is only used when a URL is configured.
func NewServices(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Services, error) {
	svc := &Services{Metrics: metrics.New()}

	var positions ports.PositionCache = cache.NopPositionCache{}
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		svc.redis = client
		positions = cache.NewRedisPositionCache(client, cfg.Redis.KeyPrefix)
		appLogger.Infow("Position cache enabled", "backend", "redis", "ttl", cfg.Board.PositionTTL)
	}

	userRepo := repository.NewUserRepository(db.DB)
	noteRepo := services.NewNoteRepository(
		repository.NewNoteStore(db),
		repository.NewNoteMetaStore(db),
		repository.NewUserMetaStore(db.DB),
		cfg.Board.DefaultColor,
	)
	order := services.NewOrderManager(noteRepo, positions, cfg.Board.PositionTTL, appLogger)

	svc.Auth = services.NewAuthService(userRepo, cfg.JWT, appLogger)
	svc.Users = services.NewUserService(userRepo, appLogger)
	svc.Board = services.NewBoardService(noteRepo, order, access.CapabilityAuthorizer{}, svc.Metrics, services.BoardOptions{
		Policy:       access.NewPolicy(cfg.Board.Capability),
		DefaultTitle: cfg.Board.DefaultTitle,
		DefaultColor: cfg.Board.DefaultColor,
	}, appLogger)

	return svc, nil
}

// PingCache checks the Redis connection when one is configured.
func (s *Services) PingCache(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Ping(ctx).Err()
}

// CacheEnabled reports whether a Redis position cache is in use.
func (s *Services) CacheEnabled() bool {
	return s.redis != nil
}

// Close releases the Redis connection.
func (s *Services) Close() error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Close()
}
