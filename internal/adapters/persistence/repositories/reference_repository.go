package repositories

import (
	"context"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// referenceRepository implements ReferenceRepository over the legacy reference tables
type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

// GetContactType gets a selectable contact type by code with its permitted
// outcomes, NSI types and requirement categories
func (r *referenceRepository) GetContactType(ctx context.Context, code string) (*models.ContactType, error) {
	var ct models.ContactType
	err := conn(ctx, r.db).
		Preload("OutcomeTypes").
		Preload("NsiTypes").
		Preload("RequirementTypeCategories").
		Where("code = ? AND selectable = ?", code, true).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// GetContactTypeByID gets a contact type by primary key, selectable or not.
// System-generated types are not selectable but are still recorded.
func (r *referenceRepository) GetContactTypeByID(ctx context.Context, id uint) (*models.ContactType, error) {
	var ct models.ContactType
	err := conn(ctx, r.db).
		Preload("OutcomeTypes").
		First(&ct, id).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// GetSystemContactType gets a contact type by code without the selectable
// filter. System-generated types are not user-selectable but are still recorded.
func (r *referenceRepository) GetSystemContactType(ctx context.Context, code string) (*models.ContactType, error) {
	var ct models.ContactType
	err := conn(ctx, r.db).Where("code = ?", code).First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// GetEnforcementAction gets an enforcement action by code with its system contact type
func (r *referenceRepository) GetEnforcementAction(ctx context.Context, code string) (*models.EnforcementAction, error) {
	var action models.EnforcementAction
	err := conn(ctx, r.db).
		Preload("ContactType").
		Where("code = ?", code).
		First(&action).Error
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// GetProvider gets a selectable provider by code with its teams, staff and locations
func (r *referenceRepository) GetProvider(ctx context.Context, code string) (*models.Provider, error) {
	var provider models.Provider
	err := conn(ctx, r.db).
		Preload("Teams.Staff").
		Preload("Teams.OfficeLocations").
		Where("code = ? AND selectable = ?", code, true).
		First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetNsiType gets a selectable NSI type by code with its sub-types and statuses
func (r *referenceRepository) GetNsiType(ctx context.Context, code string) (*models.NsiType, error) {
	var nt models.NsiType
	err := conn(ctx, r.db).
		Preload("SubTypes").
		Preload("Statuses.ContactType").
		Where("code = ? AND selectable = ?", code, true).
		First(&nt).Error
	if err != nil {
		return nil, err
	}
	return &nt, nil
}

// GetNsiOutcome gets an NSI outcome by code
func (r *referenceRepository) GetNsiOutcome(ctx context.Context, code string) (*models.NsiOutcome, error) {
	var outcome models.NsiOutcome
	err := conn(ctx, r.db).Where("code = ?", code).First(&outcome).Error
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}
