package repositories

import (
	"context"
	"time"

	"delius-api/internal/adapters/persistence/models"
)

// Transactioner runs a function inside a context-scoped transaction
type Transactioner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// OffenderRepository defines offender repository interface
// Read-only access to the offender aggregate
type OffenderRepository interface {
	GetByCRN(ctx context.Context, crn string) (*models.Offender, error)
}

// ContactRepository defines contact repository interface
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	CreateEnforcement(ctx context.Context, enforcement *models.Enforcement) error
	GetByID(ctx context.Context, id uint) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	DeleteAll(ctx context.Context, ids []uint) error
	GetLinkedContactIDs(ctx context.Context, rootIDs []uint) ([]uint, error)
	FindClashingAppointmentIDs(ctx context.Context, offenderID uint, date time.Time, startTime, endTime string, excludeContactID *uint) ([]uint, error)
	LatestContactOfTypes(ctx context.Context, eventID uint, typeCodes []string) (*models.Contact, error)
	CountFailuresToComply(ctx context.Context, eventID uint, since *time.Time) (int64, error)
	HasEnforcementUnderReview(ctx context.Context, eventID uint, reviewTypeCode string, since *time.Time) (bool, error)
	CountRarDaysByRequirement(ctx context.Context, requirementID uint) (int64, error)
	CountRarDaysByNsi(ctx context.Context, nsiID uint) (int64, error)
}

// EventRepository defines event repository interface
type EventRepository interface {
	Update(ctx context.Context, event *models.Event) error
	UpdateRequirement(ctx context.Context, requirement *models.Requirement) error
	ListActiveRarRequirements(ctx context.Context) ([]*models.Requirement, error)
}

// NsiRepository defines NSI repository interface
type NsiRepository interface {
	Create(ctx context.Context, nsi *models.Nsi) error
	GetByID(ctx context.Context, id uint) (*models.Nsi, error)
	Update(ctx context.Context, nsi *models.Nsi) error
	ListActiveRarNsis(ctx context.Context) ([]*models.Nsi, error)
}

// ReferenceRepository defines reference data repository interface
// Read-only access to the legacy reference tables
type ReferenceRepository interface {
	GetContactType(ctx context.Context, code string) (*models.ContactType, error)
	GetContactTypeByID(ctx context.Context, id uint) (*models.ContactType, error)
	GetSystemContactType(ctx context.Context, code string) (*models.ContactType, error)
	GetEnforcementAction(ctx context.Context, code string) (*models.EnforcementAction, error)
	GetProvider(ctx context.Context, code string) (*models.Provider, error)
	GetNsiType(ctx context.Context, code string) (*models.NsiType, error)
	GetNsiOutcome(ctx context.Context, code string) (*models.NsiOutcome, error)
}

// AuditRepository defines audit repository interface
// Writes must survive use-case rollback
type AuditRepository interface {
	Create(ctx context.Context, interaction *models.AuditedInteraction) error
}
