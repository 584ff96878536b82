package repositories

import (
	"context"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// eventRepository implements EventRepository
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Update saves an event's breach and FTC state
func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return conn(ctx, r.db).Omit("Disposals").Save(event).Error
}

// UpdateRequirement saves a requirement's RAR count
func (r *eventRepository) UpdateRequirement(ctx context.Context, requirement *models.Requirement) error {
	return conn(ctx, r.db).Omit("TypeCategory").Save(requirement).Error
}

// ListActiveRarRequirements lists active, unterminated RAR-category requirements
// for the nightly count reconciliation
func (r *eventRepository) ListActiveRarRequirements(ctx context.Context) ([]*models.Requirement, error) {
	var reqs []*models.Requirement
	err := conn(ctx, r.db).
		Joins("JOIN r_rqmnt_type_main_category c ON c.id = rqmnt.type_category_id").
		Where("c.code = ?", models.RarRequirementTypeCategoryCode).
		Where("rqmnt.active = ?", true).
		Where("rqmnt.termination_date IS NULL").
		Find(&reqs).Error
	return reqs, err
}
