package services

import (
	"context"
	"time"

	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/ports"
)

// OrderManager hands out and rewrites board positions.
//
// Two callers racing through NextPosition may receive the same value.
// That is tolerated: ties sort by creation time and then id.
type OrderManager struct {
	repo   *NoteRepository
	cache  ports.PositionCache
	ttl    time.Duration
	logger *logger.Logger
}

// NewOrderManager creates a new order manager. A nil cache disables caching.
func NewOrderManager(repo *NoteRepository, cache ports.PositionCache, ttl time.Duration, logger *logger.Logger) *OrderManager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OrderManager{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.WithComponent("order_manager"),
	}
}

// NextPosition returns one more than the highest stored position, or 1 on
// an empty board.
func (m *OrderManager) NextPosition(ctx context.Context) (int64, error) {
	if m.cache != nil {
		max, ok, err := m.cache.Max(ctx)
		if err != nil {
			m.logger.Warnw("Position cache read failed, scanning", "error", err)
		} else if ok {
			return max + 1, nil
		}
	}

	max, err := m.repo.MaxPosition(ctx)
	if err != nil {
		return 0, err
	}

	if m.cache != nil {
		if err := m.cache.Store(ctx, max, m.ttl); err != nil {
			m.logger.Warnw("Position cache write failed", "error", err)
		}
	}
	return max + 1, nil
}

// Observe tells the cache a note now holds position. The cached maximum
// is only ever raised here; a miss is left alone.
func (m *OrderManager) Observe(ctx context.Context, position int64) {
	if m.cache == nil {
		return
	}
	max, ok, err := m.cache.Max(ctx)
	if err != nil || !ok || position <= max {
		return
	}
	if err := m.cache.Store(ctx, position, m.ttl); err != nil {
		m.logger.Warnw("Position cache write failed", "error", err)
	}
}

// Forget drops the cached maximum after positions shrink or move.
func (m *OrderManager) Forget(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx); err != nil {
		m.logger.Warnw("Position cache invalidate failed", "error", err)
	}
}

// Reindex assigns positions 1..n to ids in order. Ids that do not name a
// stored note are skipped without consuming a position, repeated ids keep
// their first slot, and notes missing from ids keep their position. It
// returns how many notes were positioned; a note deleted while the order is
// being written is skipped.
func (m *OrderManager) Reindex(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	existing, err := m.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	positions := make(map[int64]int64, len(existing))
	var next int64
	for _, id := range ids {
		if !existing[id] {
			continue
		}
		if _, seen := positions[id]; seen {
			continue
		}
		next++
		positions[id] = next
	}

	written, err := m.repo.SetPositions(ctx, positions)
	if err != nil {
		return 0, err
	}
	m.Forget(ctx)

	return written, nil
}
