package cache

import (
	"context"

	"github.com/google/uuid"

	applot "github.com/inmobiliaria/backend/internal/application/lot"
	"github.com/inmobiliaria/backend/internal/domain/lot"
)

// NoopAvailabilityCache is used when caching is disabled. Every read is a
// miss, so availability always comes from the database.
type NoopAvailabilityCache struct{}

// NewNoopAvailabilityCache creates a new NoopAvailabilityCache
func NewNoopAvailabilityCache() *NoopAvailabilityCache {
	return &NoopAvailabilityCache{}
}

func (NoopAvailabilityCache) Get(ctx context.Context, lotID uuid.UUID) (lot.Availability, bool, error) {
	return "", false, nil
}

func (NoopAvailabilityCache) Set(ctx context.Context, lotID uuid.UUID, availability lot.Availability) error {
	return nil
}

func (NoopAvailabilityCache) Invalidate(ctx context.Context, lotID uuid.UUID) error {
	return nil
}

var _ applot.AvailabilityCache = (*NoopAvailabilityCache)(nil)
