package lot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// AvailabilityCache is the read-through cache for the catalog availability
// lookup. Implementations must treat a miss as (zero, false, nil).
type AvailabilityCache interface {
	Get(ctx context.Context, lotID uuid.UUID) (lot.Availability, bool, error)
	Set(ctx context.Context, lotID uuid.UUID, availability lot.Availability) error
	Invalidate(ctx context.Context, lotID uuid.UUID) error
}

// LotService manages the lot records the ledger sells against. Availability
// is read-only here; it only moves through the sale-side coordinator.
type LotService struct {
	lotRepo lot.LotRepository
	cache   AvailabilityCache
	logger  *zap.Logger
}

// NewLotService creates a new LotService
func NewLotService(lotRepo lot.LotRepository, cache AvailabilityCache, logger *zap.Logger) *LotService {
	return &LotService{
		lotRepo: lotRepo,
		cache:   cache,
		logger:  logger,
	}
}

// Create registers a new lot, initially available
func (s *LotService) Create(ctx context.Context, req CreateLotRequest) (*LotResponse, error) {
	l, err := lot.NewLot(req.LotNumber, req.Project, req.Stage, req.Block, req.AreaM2, req.ListPrice)
	if err != nil {
		return nil, err
	}
	l.Price12 = req.Price12
	l.Price24 = req.Price24
	l.Price36 = req.Price36
	l.PriceUSD = req.PriceUSD

	if err := s.lotRepo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}
	resp := ToLotResponse(l)
	return &resp, nil
}

// Update changes the descriptive fields of a lot. The availability field is
// never writable through this path.
func (s *LotService) Update(ctx context.Context, id uuid.UUID, req UpdateLotRequest) (*LotResponse, error) {
	l, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.UpdateDetails(req.Project, req.Stage, req.Block, req.AreaM2,
		req.ListPrice, req.Price12, req.Price24, req.Price36, req.PriceUSD); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}
	resp := ToLotResponse(l)
	return &resp, nil
}

// GetByID retrieves a lot
func (s *LotService) GetByID(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	l, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLotResponse(l)
	return &resp, nil
}

// List retrieves lots matching the filter
func (s *LotService) List(ctx context.Context, filter LotListFilter) ([]LotResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := lot.LotFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "lot_number",
			OrderDir: "asc",
		},
	}
	if filter.Project != "" {
		domainFilter.Project = &filter.Project
	}
	if filter.Availability != "" {
		availability := lot.Availability(filter.Availability)
		domainFilter.Availability = &availability
	}

	lots, err := s.lotRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.lotRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LotResponse, len(lots))
	for i := range lots {
		responses[i] = ToLotResponse(&lots[i])
	}
	return responses, total, nil
}

// GetAvailability serves the catalog availability read through the cache.
// Cache failures degrade to the database; the read never fails on cache
// trouble alone.
func (s *LotService) GetAvailability(ctx context.Context, id uuid.UUID) (*AvailabilityResponse, error) {
	if availability, ok, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("availability cache read failed",
			zap.String("lot_id", id.String()),
			zap.Error(err),
		)
	} else if ok {
		return &AvailabilityResponse{LotID: id.String(), Availability: availability.String(), Cached: true}, nil
	}

	l, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, id, l.Availability); err != nil {
		s.logger.Warn("availability cache write failed",
			zap.String("lot_id", id.String()),
			zap.Error(err),
		)
	}
	return &AvailabilityResponse{LotID: id.String(), Availability: l.Availability.String()}, nil
}
