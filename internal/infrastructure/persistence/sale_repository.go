package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GORM sale repository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its plan and installments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var model models.SaleModel
	err := preloadPlan(db).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a sale under an exclusive row lock. Only the sale
// row is locked; plan and installment rows are only ever written while the
// sale lock is held.
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var model models.SaleModel
	err := preloadPlan(lockForUpdate(db)).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLotID returns all sales referencing a lot
func (r *GormSaleRepository) FindByLotID(ctx context.Context, lotID uuid.UUID) ([]sales.Sale, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var saleModels []models.SaleModel
	err := preloadPlan(db).
		Where("lot_id = ?", lotID).
		Order("sale_date ASC").
		Find(&saleModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainSales(saleModels), nil
}

// FindAll returns sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]sales.Sale, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := applySaleFilter(db.Model(&models.SaleModel{}), filter)
	query = applyPagination(query, filter.Filter, SaleSortFields, "created_at")

	var saleModels []models.SaleModel
	if err := query.Preload("Plan").Find(&saleModels).Error; err != nil {
		return nil, err
	}
	return toDomainSales(saleModels), nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter sales.SaleFilter) (int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var count int64
	err := applySaleFilter(db.Model(&models.SaleModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a sale together with its plan and installments.
// Updates guard on the version column; a mismatch means another transaction
// committed first and the caller must reload and retry.
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	model := models.SaleModelFromDomain(sale)

	var existing int64
	if err := db.Model(&models.SaleModel{}).Where("id = ?", sale.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check sale existence: %w", err)
	}

	if existing == 0 {
		if err := db.Omit("Plan").Create(model).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
	} else {
		model.Version = sale.Version + 1
		result := db.Model(&models.SaleModel{}).
			Where("id = ? AND version = ?", sale.ID, sale.Version).
			Select("*").Omit("id", "created_at", "Plan").
			Updates(model)
		if result.Error != nil {
			return fmt.Errorf("failed to update sale: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		sale.Version++
	}

	return r.savePlan(db, sale)
}

// savePlan replaces the persisted plan with the in-memory one. Allocation
// replays rewrite most installment rows anyway, so the rows are swapped
// wholesale instead of diffed.
func (r *GormSaleRepository) savePlan(db *gorm.DB, sale *sales.Sale) error {
	planIDs := db.Model(&models.InstallmentPlanModel{}).Select("id").Where("sale_id = ?", sale.ID)
	if err := db.Where("plan_id IN (?)", planIDs).Delete(&models.InstallmentModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear installments: %w", err)
	}
	if err := db.Where("sale_id = ?", sale.ID).Delete(&models.InstallmentPlanModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear installment plan: %w", err)
	}
	if sale.Plan == nil {
		return nil
	}
	if err := db.Create(models.PlanModelFromDomain(sale.Plan)).Error; err != nil {
		return fmt.Errorf("failed to save installment plan: %w", err)
	}
	return nil
}

// Delete removes a sale together with its plan and installments
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	planIDs := db.Model(&models.InstallmentPlanModel{}).Select("id").Where("sale_id = ?", id)
	if err := db.Where("plan_id IN (?)", planIDs).Delete(&models.InstallmentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete installments: %w", err)
	}
	if err := db.Where("sale_id = ?", id).Delete(&models.InstallmentPlanModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete installment plan: %w", err)
	}

	result := db.Where("id = ?", id).Delete(&models.SaleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextSaleNumber issues the next sequential sale number (V-xxxxx)
func (r *GormSaleRepository) NextSaleNumber(ctx context.Context) (string, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var maxNumber int64
	err := db.Model(&models.SaleModel{}).
		Select("COALESCE(MAX(CAST(SUBSTR(sale_number, 3) AS INTEGER)), 0)").
		Scan(&maxNumber).Error
	if err != nil {
		return "", fmt.Errorf("failed to compute next sale number: %w", err)
	}
	return fmt.Sprintf("V-%05d", maxNumber+1), nil
}

// preloadPlan attaches the plan and its installments in number order
func preloadPlan(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Plan").
		Preload("Plan.Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		})
}

// lockForUpdate adds a row lock on engines that support it. SQLite has no
// SELECT ... FOR UPDATE; its transactions serialize writers already.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// applyPagination applies ordering and pagination from the common filter
func applyPagination(db *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	orderDir := ValidateSortOrder(filter.OrderDir)
	db = db.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return db
}

func applySaleFilter(db *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.LotID != nil {
		db = db.Where("lot_id = ?", *filter.LotID)
	}
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", filter.Status.String())
	}
	if filter.Type != nil {
		db = db.Where("type = ?", filter.Type.String())
	}
	if filter.FromDate != nil {
		db = db.Where("sale_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		db = db.Where("sale_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		db = db.Where("LOWER(sale_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return db
}

func toDomainSales(saleModels []models.SaleModel) []sales.Sale {
	result := make([]sales.Sale, 0, len(saleModels))
	for i := range saleModels {
		result = append(result, *saleModels[i].ToDomain())
	}
	return result
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
