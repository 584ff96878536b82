package services

import (
	"context"
	"fmt"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
)

// SystemContactService creates the system-generated contacts the rule engine
// spawns: enforcement action records and enforcement status reviews. Each is
// chained to the contact that triggered it through linked_contact_id.
type SystemContactService struct {
	contactRepo   repositories.ContactRepository
	referenceRepo repositories.ReferenceRepository
	logger        *zap.SugaredLogger
	now           func() time.Time
}

// NewSystemContactService creates a new system contact service
func NewSystemContactService(
	contactRepo repositories.ContactRepository,
	referenceRepo repositories.ReferenceRepository,
	logger *zap.SugaredLogger,
) *SystemContactService {
	return &SystemContactService{
		contactRepo:   contactRepo,
		referenceRepo: referenceRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateEnforcementActionContact records the enforcement action against the
// offender as a contact of the action's own type, at the source contact's
// date and times.
func (s *SystemContactService) CreateEnforcementActionContact(ctx context.Context, action *models.EnforcementAction, source *models.Contact, userID uint) (*models.Contact, error) {
	if action.ContactType == nil {
		return nil, nil
	}
	notes := fmt.Sprintf("Enforcement action: %s", action.Description)
	contact := s.linkedContact(action.ContactType, source, &notes, userID)
	contact.StartTime = source.StartTime
	contact.EndTime = source.EndTime
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	// Attach type and event so the breach tracker can classify the new contact
	// without a reload.
	contact.Type = action.ContactType
	contact.Offender = source.Offender
	contact.Event = source.Event
	s.logger.Infow("created enforcement action contact",
		"type", action.ContactType.Code,
		"source_contact_id", source.ID,
		"contact_id", contact.ID,
	)
	return contact, nil
}

// CreateReviewContact raises the outcome-less enforcement review contact when
// an event reaches its failure-to-comply limit. Dated today: the review is
// raised now, whenever the triggering contact happened.
func (s *SystemContactService) CreateReviewContact(ctx context.Context, source *models.Contact, userID uint) (*models.Contact, error) {
	reviewType, err := s.referenceRepo.GetSystemContactType(ctx, ContactTypeReviewEnforcementStatus)
	if err != nil {
		return nil, err
	}
	today := s.now()
	notes := "Enforcement status requires review: failure to comply limit reached"
	contact := s.linkedContact(reviewType, source, &notes, userID)
	contact.Date = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	contact.Type = reviewType
	contact.Offender = source.Offender
	contact.Event = source.Event
	s.logger.Infow("created enforcement review contact",
		"source_contact_id", source.ID,
		"contact_id", contact.ID,
	)
	return contact, nil
}

// CreateNsiStatusContact records an NSI entering a status, when the status
// carries a system contact type. Dated from the status date.
func (s *SystemContactService) CreateNsiStatusContact(ctx context.Context, nsi *models.Nsi, status *models.NsiStatus, userID uint) (*models.Contact, error) {
	if status.ContactType == nil {
		return nil, nil
	}
	manager := nsi.Manager()
	if manager == nil {
		return nil, nil
	}
	statusTime := nsi.StatusDate.Format(models.TimeOfDayLayout)
	notes := fmt.Sprintf("NSI status: %s", status.Description)
	contact := &models.Contact{
		OffenderID:        nsi.OffenderID,
		NsiID:             &nsi.ID,
		EventID:           nsi.EventID,
		RequirementID:     nsi.RequirementID,
		TypeID:            status.ContactType.ID,
		ProviderID:        manager.ProviderID,
		TeamID:            manager.TeamID,
		StaffID:           manager.StaffID,
		Date:              time.Date(nsi.StatusDate.Year(), nsi.StatusDate.Month(), nsi.StatusDate.Day(), 0, 0, 0, 0, nsi.StatusDate.Location()),
		StartTime:         &statusTime,
		Alert:             status.ContactType.AlertFlag,
		Notes:             &notes,
		CreatedByUserID:   userID,
		LastUpdatedUserID: userID,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *SystemContactService) linkedContact(contactType *models.ContactType, source *models.Contact, notes *string, userID uint) *models.Contact {
	return &models.Contact{
		OffenderID:        source.OffenderID,
		NsiID:             source.NsiID,
		EventID:           source.EventID,
		RequirementID:     source.RequirementID,
		TypeID:            contactType.ID,
		ProviderID:        source.ProviderID,
		TeamID:            source.TeamID,
		StaffID:           source.StaffID,
		Date:              source.Date,
		Alert:             contactType.AlertFlag,
		Notes:             notes,
		LinkedContactID:   &source.ID,
		CreatedByUserID:   userID,
		LastUpdatedUserID: userID,
	}
}
