package repositories

import (
	"context"
	"errors"
	"time"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ErrVersionConflict is returned when an update addressed a row version that no
// longer exists, i.e. the contact changed under the caller.
var ErrVersionConflict = errors.New("row version conflict")

// contactPreloads are the relations every business rule needs to see on a
// loaded contact.
var contactPreloads = []string{
	"Offender",
	"Type.OutcomeTypes",
	"Type.NsiTypes",
	"Type.RequirementTypeCategories",
	"Outcome",
	"Provider",
	"Team",
	"Staff",
	"OfficeLocation",
	"Enforcement.Action",
	"Event.Disposals.Type",
	"Event.Disposals.Requirements.TypeCategory",
	"Requirement.TypeCategory",
	"Nsi.Type",
	"Nsi.Requirement.TypeCategory",
}

// contactRepository implements ContactRepository
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create creates a new contact
func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return conn(ctx, r.db).Create(contact).Error
}

// CreateEnforcement creates an enforcement row against a contact
func (r *contactRepository) CreateEnforcement(ctx context.Context, enforcement *models.Enforcement) error {
	return conn(ctx, r.db).Create(enforcement).Error
}

// GetByID gets a contact by ID with the relations the rule engine reads
func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	q := conn(ctx, r.db)
	for _, p := range contactPreloads {
		q = q.Preload(p)
	}
	if err := q.First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update saves a contact. The optimistic lock plugin adds the row version to
// the WHERE clause, so zero affected rows means the row moved on.
func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	result := conn(ctx, r.db).Save(contact)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// DeleteAll soft deletes the given contacts and their enforcements
func (r *contactRepository) DeleteAll(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	tx := conn(ctx, r.db)
	if err := tx.Where("contact_id IN ?", ids).Delete(&models.Enforcement{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Contact{}, ids).Error
}

// GetLinkedContactIDs walks the linked_contact_id chain from the given roots
// and returns every descendant, flattening system contacts spawned by system
// contacts.
func (r *contactRepository) GetLinkedContactIDs(ctx context.Context, rootIDs []uint) ([]uint, error) {
	var all []uint
	frontier := rootIDs
	for len(frontier) > 0 {
		var next []uint
		err := conn(ctx, r.db).Model(&models.Contact{}).
			Where("linked_contact_id IN ?", frontier).
			Pluck("id", &next).Error
		if err != nil {
			return nil, err
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}

// FindClashingAppointmentIDs returns the ids of attendance contacts for the
// offender on the same date whose [start, end) interval overlaps the given
// one. HH:MM strings compare correctly as text.
func (r *contactRepository) FindClashingAppointmentIDs(ctx context.Context, offenderID uint, date time.Time, startTime, endTime string, excludeContactID *uint) ([]uint, error) {
	var ids []uint
	q := conn(ctx, r.db).Model(&models.Contact{}).
		Joins("JOIN r_contact_type t ON t.id = contact.type_id").
		Where("contact.offender_id = ?", offenderID).
		Where("contact.date = ?", date.Format("2006-01-02")).
		Where("t.attendance_contact = ?", true).
		Where("contact.start_time < ? AND contact.end_time > ?", endTime, startTime)
	if excludeContactID != nil {
		q = q.Where("contact.id <> ?", *excludeContactID)
	}
	err := q.Order("contact.id").Pluck("contact.id", &ids).Error
	return ids, err
}

// LatestContactOfTypes returns the most recent contact on the event whose type
// code is in the given set, ordered by date then start time, or nil when the
// event has none.
func (r *contactRepository) LatestContactOfTypes(ctx context.Context, eventID uint, typeCodes []string) (*models.Contact, error) {
	var contact models.Contact
	err := conn(ctx, r.db).
		Preload("Type").
		Joins("JOIN r_contact_type t ON t.id = contact.type_id").
		Where("contact.event_id = ?", eventID).
		Where("t.code IN ?", typeCodes).
		Order("contact.date DESC, contact.start_time DESC, contact.id DESC").
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// CountFailuresToComply counts the event's national-standards contacts whose
// outcome is recorded as not acceptable and enforceable, optionally restricted
// to dates on or after `since` (the last breach end).
func (r *contactRepository) CountFailuresToComply(ctx context.Context, eventID uint, since *time.Time) (int64, error) {
	var count int64
	q := conn(ctx, r.db).Model(&models.Contact{}).
		Joins("JOIN r_contact_type t ON t.id = contact.type_id").
		Joins("JOIN r_contact_outcome_type o ON o.id = contact.outcome_id").
		Where("contact.event_id = ?", eventID).
		Where("t.national_standards_contact = ?", true).
		Where("o.compliant_acceptable = ?", false).
		Where("o.enforceable = ?", true)
	if since != nil {
		q = q.Where("contact.date >= ?", since.Format("2006-01-02"))
	}
	err := q.Count(&count).Error
	return count, err
}

// HasEnforcementUnderReview reports whether the event already has an
// outcome-less review contact of the given type, optionally restricted to
// dates on or after `since`.
func (r *contactRepository) HasEnforcementUnderReview(ctx context.Context, eventID uint, reviewTypeCode string, since *time.Time) (bool, error) {
	var count int64
	q := conn(ctx, r.db).Model(&models.Contact{}).
		Joins("JOIN r_contact_type t ON t.id = contact.type_id").
		Where("contact.event_id = ?", eventID).
		Where("t.code = ?", reviewTypeCode).
		Where("contact.outcome_id IS NULL")
	if since != nil {
		q = q.Where("contact.date >= ?", since.Format("2006-01-02"))
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// CountRarDaysByRequirement counts the distinct days on which the requirement
// has a RAR activity contact that is either outcome-less or attended.
func (r *contactRepository) CountRarDaysByRequirement(ctx context.Context, requirementID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Contact{}).
		Distinct("contact.date").
		Joins("LEFT JOIN r_contact_outcome_type o ON o.id = contact.outcome_id").
		Where("contact.requirement_id = ?", requirementID).
		Where("contact.rar_activity = ?", true).
		Where("contact.outcome_id IS NULL OR o.attendance = ?", true).
		Count(&count).Error
	return count, err
}

// CountRarDaysByNsi counts the distinct RAR activity days credited to an NSI.
func (r *contactRepository) CountRarDaysByNsi(ctx context.Context, nsiID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Contact{}).
		Distinct("contact.date").
		Joins("LEFT JOIN r_contact_outcome_type o ON o.id = contact.outcome_id").
		Where("contact.nsi_id = ?", nsiID).
		Where("contact.rar_activity = ?", true).
		Where("contact.outcome_id IS NULL OR o.attendance = ?", true).
		Count(&count).Error
	return count, err
}
