package lot

import (
	"context"

	"go.uber.org/zap"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// CacheInvalidationHandler drops the cached availability of a lot whenever
// the coordinator changes it, so the catalog read never serves a stale state
// past the cache TTL.
type CacheInvalidationHandler struct {
	cache  AvailabilityCache
	logger *zap.Logger
}

// NewCacheInvalidationHandler creates a new CacheInvalidationHandler
func NewCacheInvalidationHandler(cache AvailabilityCache, logger *zap.Logger) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler processes
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{"LotStatusChanged"}
}

// Handle invalidates the availability cache entry of the changed lot
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	statusEvent, ok := event.(*lot.LotStatusChangedEvent)
	if !ok {
		return nil
	}
	if err := h.cache.Invalidate(ctx, statusEvent.LotID); err != nil {
		h.logger.Error("failed to invalidate availability cache",
			zap.String("lot_id", statusEvent.LotID.String()),
			zap.Error(err),
		)
		return err
	}
	h.logger.Debug("availability cache invalidated",
		zap.String("lot_id", statusEvent.LotID.String()),
		zap.String("availability", statusEvent.NewAvailability.String()),
	)
	return nil
}

var _ shared.EventHandler = (*CacheInvalidationHandler)(nil)
