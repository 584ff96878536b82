package repositories

import (
	"context"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// nsiRepository implements NsiRepository
type nsiRepository struct {
	db *gorm.DB
}

// NewNsiRepository creates a new NSI repository
func NewNsiRepository(db *gorm.DB) NsiRepository {
	return &nsiRepository{db: db}
}

// Create creates a new NSI with its managers
func (r *nsiRepository) Create(ctx context.Context, nsi *models.Nsi) error {
	return conn(ctx, r.db).Create(nsi).Error
}

// GetByID gets an NSI by ID with the relations the rule engine reads
func (r *nsiRepository) GetByID(ctx context.Context, id uint) (*models.Nsi, error) {
	var nsi models.Nsi
	err := conn(ctx, r.db).
		Preload("Offender").
		Preload("Event").
		Preload("Requirement.TypeCategory").
		Preload("Type").
		Preload("SubType").
		Preload("Status").
		Preload("Outcome").
		Preload("IntendedProvider").
		Preload("Managers.Provider").
		Preload("Managers.Team").
		Preload("Managers.Staff").
		First(&nsi, id).Error
	if err != nil {
		return nil, err
	}
	return &nsi, nil
}

// Update saves an NSI's RAR count and lifecycle fields
func (r *nsiRepository) Update(ctx context.Context, nsi *models.Nsi) error {
	return conn(ctx, r.db).
		Omit("Offender", "Event", "Requirement", "Type", "SubType", "Status", "Outcome", "IntendedProvider", "Managers").
		Save(nsi).Error
}

// ListActiveRarNsis lists active NSIs attached to RAR-category requirements for
// the nightly count reconciliation
func (r *nsiRepository) ListActiveRarNsis(ctx context.Context) ([]*models.Nsi, error) {
	var nsis []*models.Nsi
	err := conn(ctx, r.db).
		Joins("JOIN rqmnt ON rqmnt.id = nsi.requirement_id").
		Joins("JOIN r_rqmnt_type_main_category c ON c.id = rqmnt.type_category_id").
		Where("c.code = ?", models.RarRequirementTypeCategoryCode).
		Where("nsi.active = ?", true).
		Find(&nsis).Error
	return nsis, err
}
