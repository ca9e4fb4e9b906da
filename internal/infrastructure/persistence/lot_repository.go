package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GORM lot repository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var model models.LotModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a lot under an exclusive row lock. Callers lock
// the sale first; taking locks in the other order can deadlock.
func (r *GormLotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var model models.LotModel
	if err := lockForUpdate(db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns lots matching the filter
func (r *GormLotRepository) FindAll(ctx context.Context, filter lot.LotFilter) ([]lot.Lot, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := applyLotFilter(db.Model(&models.LotModel{}), filter)
	query = applyPagination(query, filter.Filter, LotSortFields, "lot_number")

	var lotModels []models.LotModel
	if err := query.Find(&lotModels).Error; err != nil {
		return nil, err
	}

	result := make([]lot.Lot, 0, len(lotModels))
	for i := range lotModels {
		result = append(result, *lotModels[i].ToDomain())
	}
	return result, nil
}

// Count counts lots matching the filter
func (r *GormLotRepository) Count(ctx context.Context, filter lot.LotFilter) (int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var count int64
	err := applyLotFilter(db.Model(&models.LotModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a lot with optimistic conflict detection
func (r *GormLotRepository) Save(ctx context.Context, l *lot.Lot) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	model := models.LotModelFromDomain(l)

	var existing int64
	if err := db.Model(&models.LotModel{}).Where("id = ?", l.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check lot existence: %w", err)
	}

	if existing == 0 {
		if err := db.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create lot: %w", err)
		}
		return nil
	}

	model.Version = l.Version + 1
	result := db.Model(&models.LotModel{}).
		Where("id = ? AND version = ?", l.ID, l.Version).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update lot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	l.Version++
	return nil
}

// Delete removes a lot
func (r *GormLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	result := db.Where("id = ?", id).Delete(&models.LotModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func applyLotFilter(db *gorm.DB, filter lot.LotFilter) *gorm.DB {
	if filter.Project != nil {
		db = db.Where("project = ?", *filter.Project)
	}
	if filter.Availability != nil {
		db = db.Where("availability = ?", filter.Availability.String())
	}
	if filter.Search != "" {
		db = db.Where("LOWER(lot_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return db
}

// Ensure GormLotRepository implements LotRepository
var _ lot.LotRepository = (*GormLotRepository)(nil)
