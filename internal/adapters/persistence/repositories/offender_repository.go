package repositories

import (
	"context"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// offenderRepository implements OffenderRepository
type offenderRepository struct {
	db *gorm.DB
}

// NewOffenderRepository creates a new offender repository
func NewOffenderRepository(db *gorm.DB) OffenderRepository {
	return &offenderRepository{db: db}
}

// GetByCRN gets an offender by CRN with the full event/disposal/requirement tree
func (r *offenderRepository) GetByCRN(ctx context.Context, crn string) (*models.Offender, error) {
	var offender models.Offender
	err := conn(ctx, r.db).
		Preload("Events.Disposals.Type").
		Preload("Events.Disposals.Requirements.TypeCategory").
		Where("crn = ?", crn).
		First(&offender).Error
	if err != nil {
		return nil, err
	}
	return &offender, nil
}
