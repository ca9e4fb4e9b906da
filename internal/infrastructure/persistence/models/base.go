package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// BaseModel provides common fields for all database models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts the base model fields to a domain base entity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity fills the base model from a domain base entity
func (m *BaseModel) FromDomainBaseEntity(entity shared.BaseEntity) {
	m.ID = entity.ID
	m.CreatedAt = entity.CreatedAt
	m.UpdatedAt = entity.UpdatedAt
}

// AggregateModel provides common fields for aggregate root models,
// including the version column used for optimistic locking
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// ToDomainAggregateRoot converts the aggregate model fields to a domain aggregate root
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.ToDomain(),
		Version:    m.Version,
	}
}

// FromDomainAggregateRoot fills the aggregate model from a domain aggregate root
func (m *AggregateModel) FromDomainAggregateRoot(root shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(root.BaseEntity)
	m.Version = root.Version
}
