package repositories

import (
	"context"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditRepository implements AuditRepository
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create writes an audit row on the base connection, deliberately outside any
// context transaction, so failed use cases still leave an audit trail after
// their transaction rolls back.
func (r *auditRepository) Create(ctx context.Context, interaction *models.AuditedInteraction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}
