package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Payment, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var model models.PaymentModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySaleID returns the complete payment history of a sale in
// (payment date, payment number) order. The replay pipeline depends on
// this ordering being stable.
func (r *GormPaymentRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]*sales.Payment, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var paymentModels []models.PaymentModel
	err := db.
		Where("sale_id = ?", saleID).
		Order("payment_date ASC, payment_number ASC").
		Find(&paymentModels).Error
	if err != nil {
		return nil, err
	}

	payments := make([]*sales.Payment, 0, len(paymentModels))
	for i := range paymentModels {
		payments = append(payments, paymentModels[i].ToDomain())
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *sales.Payment) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	return savePaymentModel(db, payment)
}

// SaveAll persists pin changes made by the allocator during a replay
func (r *GormPaymentRepository) SaveAll(ctx context.Context, payments []*sales.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	for _, payment := range payments {
		if err := savePaymentModel(db, payment); err != nil {
			return err
		}
	}
	return nil
}

func savePaymentModel(db *gorm.DB, payment *sales.Payment) error {
	model := models.PaymentModelFromDomain(payment)

	var existing int64
	if err := db.Model(&models.PaymentModel{}).Where("id = ?", payment.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check payment existence: %w", err)
	}

	if existing == 0 {
		if err := db.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	}

	result := db.Model(&models.PaymentModel{}).
		Where("id = ?", payment.ID).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	return nil
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	result := db.Where("id = ?", id).Delete(&models.PaymentModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteBySaleID removes the full payment history of a sale
func (r *GormPaymentRepository) DeleteBySaleID(ctx context.Context, saleID uuid.UUID) error {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	if err := db.Where("sale_id = ?", saleID).Delete(&models.PaymentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	return nil
}

// NextPaymentNumber issues the next sequential payment number (PG-xxxx)
func (r *GormPaymentRepository) NextPaymentNumber(ctx context.Context) (string, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var maxNumber int64
	err := db.Model(&models.PaymentModel{}).
		Select("COALESCE(MAX(CAST(SUBSTR(payment_number, 4) AS INTEGER)), 0)").
		Scan(&maxNumber).Error
	if err != nil {
		return "", fmt.Errorf("failed to compute next payment number: %w", err)
	}
	return fmt.Sprintf("PG-%04d", maxNumber+1), nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ sales.PaymentRepository = (*GormPaymentRepository)(nil)
