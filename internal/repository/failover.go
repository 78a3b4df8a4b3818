package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"nestflow/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCache routes to primary until it errors, then to fallback, probing
// primary again once recoveryInterval has passed. Keys deleted while primary
// is unreachable are deleted there before it serves reads again.
type FailoverCache struct {
	primary   domain.CacheStore
	fallback  domain.CacheStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewFailoverCache(primary, fallback domain.CacheStore, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}
}

func (r *FailoverCache) usePrimary(ctx context.Context) bool {
	if !r.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(0, r.lastCheck.Load())) <= recoveryInterval {
		return false
	}
	if err := r.replayDeletes(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("Primary cache still unavailable")
		r.lastCheck.Store(time.Now().UnixNano())
		return false
	}
	return true
}

func (r *FailoverCache) markPending(key string) {
	r.mu.Lock()
	r.pending[key] = struct{}{}
	r.mu.Unlock()
}

// replayDeletes pushes invalidations missed during an outage to primary.
func (r *FailoverCache) replayDeletes(ctx context.Context) error {
	r.mu.Lock()
	keys := make([]string, 0, len(r.pending))
	for key := range r.pending {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	for _, key := range keys {
		if err := r.primary.Delete(ctx, key); err != nil {
			return err
		}
		r.mu.Lock()
		delete(r.pending, key)
		r.mu.Unlock()
	}
	if len(keys) > 0 {
		r.logger.Info().Int("keys", len(keys)).Msg("Replayed cache invalidations")
	}
	return nil
}

func (r *FailoverCache) observe(err error) {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Msg("Primary cache recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary cache failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.usePrimary(ctx) {
		val, ok, err := r.primary.Get(ctx, key)
		r.observe(err)
		if err == nil {
			return val, ok, nil
		}
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.usePrimary(ctx) {
		err := r.primary.Set(ctx, key, value, ttl)
		r.observe(err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.Set(ctx, key, value, ttl)
}

// Delete clears the fallback even while primary is healthy. A delete primary
// could not take is remembered and replayed on recovery.
func (r *FailoverCache) Delete(ctx context.Context, key string) error {
	if err := r.fallback.Delete(ctx, key); err != nil {
		return err
	}
	if r.usePrimary(ctx) {
		err := r.primary.Delete(ctx, key)
		r.observe(err)
		if err == nil {
			return nil
		}
	}
	r.markPending(key)
	return nil
}

func (r *FailoverCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary(ctx) {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		r.observe(err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
