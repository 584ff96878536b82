package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"
	"delius-api/internal/core/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Principal identifies the authenticated user for authority checks and auditing.
type Principal struct {
	UserID    uint
	Role      string
	Providers []string
}

// HasProvider reports whether the principal has authority over the provider.
// Admins have authority everywhere.
func (p Principal) HasProvider(code string) bool {
	if p.Role == string(domain.RoleAdmin) {
		return true
	}
	for _, c := range p.Providers {
		if c == code {
			return true
		}
	}
	return false
}

// ContactService orchestrates the contact lifecycle: each use case runs as one
// transaction through validation and the downstream trackers, with an audit
// record written outside the transaction boundary.
type ContactService struct {
	tx          repositories.Transactioner
	contactRepo repositories.ContactRepository
	validation  *ContactValidationService
	enforcement *EnforcementService
	breach      *BreachService
	rar         *RarService
	audit       *AuditService
	logger      *zap.SugaredLogger
	now         func() time.Time
}

// NewContactService creates a new contact service
func NewContactService(
	tx repositories.Transactioner,
	contactRepo repositories.ContactRepository,
	validation *ContactValidationService,
	enforcement *EnforcementService,
	breach *BreachService,
	rar *RarService,
	audit *AuditService,
	logger *zap.SugaredLogger,
) *ContactService {
	return &ContactService{
		tx:          tx,
		contactRepo: contactRepo,
		validation:  validation,
		enforcement: enforcement,
		breach:      breach,
		rar:         rar,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}
}

// Get gets a contact by ID
func (s *ContactService) Get(ctx context.Context, id uint) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("contact with id %d not found", id))
		}
		return nil, err
	}
	return contact, nil
}

// Create creates a contact and runs the downstream trackers in one transaction
func (s *ContactService) Create(ctx context.Context, req *domain.NewContact, principal Principal) (*models.Contact, error) {
	var created *models.Contact
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		contact, err := s.createContactTx(ctx, req, principal)
		if err != nil {
			return err
		}
		created = contact
		return nil
	})

	ids := AuditIDs{}
	if created != nil {
		ids.OffenderID = &created.OffenderID
		ids.ContactID = &created.ID
	}
	s.audit.Record(ctx, InteractionAddContact, principal.UserID, ids, err == nil)

	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update updates a contact and runs the downstream trackers in one transaction
func (s *ContactService) Update(ctx context.Context, id uint, req *domain.UpdateContact, principal Principal) (*models.Contact, error) {
	var updated *models.Contact
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		contact, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = contact
		return s.updateContactTx(ctx, contact, req, principal)
	})

	s.audit.Record(ctx, InteractionUpdateContact, principal.UserID, contactAuditIDs(id, updated), err == nil)

	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft deletes a contact together with the system contacts it spawned,
// then recomputes the trackers the removal can move
func (s *ContactService) Delete(ctx context.Context, id uint, principal Principal) error {
	interaction := InteractionDeleteContact
	var deleted *models.Contact
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		contact, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		deleted = contact
		if contact.Date.Before(startOfDay(s.now())) {
			interaction = InteractionDeletePreviousContact
		}
		if !contact.Type.Editable {
			return domain.BadRequest(fmt.Sprintf("contacts of type '%s' cannot be deleted", contact.Type.Code))
		}
		if !principal.HasProvider(contact.Provider.Code) {
			return domain.Forbidden(fmt.Sprintf("user has no authority over provider '%s'", contact.Provider.Code))
		}

		linkedIDs, err := s.contactRepo.GetLinkedContactIDs(ctx, []uint{contact.ID})
		if err != nil {
			return err
		}
		// Load the linked contacts before they go: removing a breach contact
		// from the chain has to recompute the event's breach state.
		linked := make([]*models.Contact, 0, len(linkedIDs))
		for _, linkedID := range linkedIDs {
			linkedContact, err := s.contactRepo.GetByID(ctx, linkedID)
			if err != nil {
				return err
			}
			linked = append(linked, linkedContact)
		}
		if err := s.contactRepo.DeleteAll(ctx, append(linkedIDs, contact.ID)); err != nil {
			return err
		}
		s.logger.Infow("deleted contact",
			"contact_id", contact.ID,
			"linked_contacts", len(linkedIDs),
		)

		for _, c := range append([]*models.Contact{contact}, linked...) {
			if err := s.breach.UpdateBreachOnUpdate(ctx, c); err != nil {
				return err
			}
		}
		ftc := s.enforcement.ClassifyFtc(contact)
		if err := s.enforcement.UpdateFtcState(ctx, contact, ftc, principal.UserID); err != nil {
			return err
		}
		return s.rar.UpdateRarCounts(ctx, contact)
	})

	s.audit.Record(ctx, interaction, principal.UserID, contactAuditIDs(id, deleted), err == nil)
	return err
}

// Replace terminates an outcome-less appointment with the given outcome and
// books its replacement, as one transaction and one audited interaction
func (s *ContactService) Replace(ctx context.Context, id uint, req *domain.ReplaceContact, principal Principal) (*models.Contact, error) {
	var replaced *models.Contact
	var replacement *models.Contact
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		contact, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		replaced = contact
		if !contact.Type.AttendanceContact {
			return domain.BadRequest(fmt.Sprintf("contacts of type '%s' are not appointments and cannot be replaced", contact.Type.Code))
		}
		if contact.OutcomeID != nil {
			return domain.BadRequest(fmt.Sprintf("contact with id %d already has an outcome", contact.ID))
		}
		if req.OffenderCrn != contact.Offender.CRN {
			return domain.BadRequest(fmt.Sprintf("offender with crn '%s' does not match the contact's offender", req.OffenderCrn))
		}
		if req.EventID != nil && !equalUintPtr(req.EventID, contact.EventID) {
			return domain.BadRequest(fmt.Sprintf("event with id %d does not match the contact's event", *req.EventID))
		}
		if req.RequirementID != nil && !equalUintPtr(req.RequirementID, contact.RequirementID) {
			return domain.BadRequest(fmt.Sprintf("requirement with id %d does not match the contact's requirement", *req.RequirementID))
		}
		if req.NsiID != nil && !equalUintPtr(req.NsiID, contact.NsiID) {
			return domain.BadRequest(fmt.Sprintf("nsi with id %d does not match the contact's nsi", *req.NsiID))
		}

		outcome := req.Outcome
		if err := s.updateContactTx(ctx, contact, &domain.UpdateContact{Outcome: &outcome}, principal); err != nil {
			return err
		}

		newReq := &domain.NewContact{
			OffenderCrn:   contact.Offender.CRN,
			NsiID:         contact.NsiID,
			EventID:       contact.EventID,
			RequirementID: contact.RequirementID,
			Type:          contact.Type.Code,
			Date:          req.Date,
			StartTime:     &req.StartTime,
			EndTime:       &req.EndTime,
			Sensitive:     &contact.Sensitive,
			RarActivity:   contact.RarActivity,
			Manager: domain.ContactManager{
				Provider: contact.Provider.Code,
				Team:     contact.Team.Code,
				Staff:    contact.Staff.Code,
			},
		}
		newReq.OfficeLocation = req.OfficeLocation
		if newReq.OfficeLocation == nil && contact.OfficeLocation != nil {
			newReq.OfficeLocation = &contact.OfficeLocation.Code
		}
		replacement, err = s.createContactTx(ctx, newReq, principal)
		return err
	})

	s.audit.Record(ctx, InteractionReplaceContact, principal.UserID, contactAuditIDs(id, replaced), err == nil)

	if err != nil {
		return nil, err
	}
	return replacement, nil
}

// createContactTx is the create body, shared with Replace; it does not audit.
func (s *ContactService) createContactTx(ctx context.Context, req *domain.NewContact, principal Principal) (*models.Contact, error) {
	cc, err := s.validation.ResolveNewContact(ctx, req)
	if err != nil {
		return nil, err
	}
	if !principal.HasProvider(cc.Provider.Code) {
		return nil, domain.Forbidden(fmt.Sprintf("user has no authority over provider '%s'", cc.Provider.Code))
	}
	if err := s.validation.CheckForClashes(ctx, cc, req.Date, req.StartTime, req.EndTime, nil); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		OffenderID:        cc.Offender.ID,
		TypeID:            cc.Type.ID,
		ProviderID:        cc.Provider.ID,
		TeamID:            cc.Team.ID,
		StaffID:           cc.Staff.ID,
		Date:              req.Date,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Description:       req.Description,
		CreatedByUserID:   principal.UserID,
		LastUpdatedUserID: principal.UserID,
	}
	if cc.Nsi != nil {
		contact.NsiID = &cc.Nsi.ID
	}
	if cc.Event != nil {
		contact.EventID = &cc.Event.ID
	}
	if cc.Requirement != nil {
		contact.RequirementID = &cc.Requirement.ID
	}
	if cc.OfficeLocation != nil {
		contact.OfficeLocationID = &cc.OfficeLocation.ID
	}
	if req.Alert != nil {
		contact.Alert = *req.Alert
	}
	if req.Sensitive != nil {
		contact.Sensitive = *req.Sensitive
	}
	contact.AppendNotes(cc.Type.DefaultHeadings, req.Notes)
	s.validation.ApplyOutcomeMeta(contact, cc)
	contact.RarActivity = req.RarActivity

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	s.attachContext(contact, cc)
	s.logger.Infow("created contact",
		"contact_id", contact.ID,
		"type", cc.Type.Code,
		"offender_crn", cc.Offender.CRN,
	)

	if err := s.enforcement.ApplyEnforcement(ctx, contact, cc.Enforcement, principal.UserID); err != nil {
		return nil, err
	}
	if err := s.trackAfterInsert(ctx, contact, principal); err != nil {
		return nil, err
	}
	return contact, nil
}

// updateContactTx is the update body, shared with Replace; it does not audit.
func (s *ContactService) updateContactTx(ctx context.Context, contact *models.Contact, req *domain.UpdateContact, principal Principal) error {
	if !principal.HasProvider(contact.Provider.Code) {
		return domain.Forbidden(fmt.Sprintf("user has no authority over provider '%s'", contact.Provider.Code))
	}
	previousEnforcement := contact.Enforcement

	cc, err := s.validation.ResolveUpdateContact(ctx, contact, req)
	if err != nil {
		return err
	}

	if req.Date != nil {
		contact.Date = *req.Date
	}
	if req.StartTime != nil {
		contact.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		contact.EndTime = req.EndTime
	}
	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		excludeID := contact.ID
		if err := s.validation.CheckForClashes(ctx, cc, contact.Date, contact.StartTime, contact.EndTime, &excludeID); err != nil {
			return err
		}
	}
	if req.Alert != nil {
		contact.Alert = *req.Alert
	}
	if req.Sensitive != nil {
		contact.Sensitive = *req.Sensitive
	}
	if req.Description != nil {
		contact.Description = req.Description
	}
	if cc.OfficeLocation != nil {
		contact.OfficeLocationID = &cc.OfficeLocation.ID
		contact.OfficeLocation = cc.OfficeLocation
	}
	if req.RarActivity != nil {
		contact.RarActivity = req.RarActivity
	}
	contact.AppendNotes(req.Notes)
	s.validation.ApplyOutcomeMeta(contact, cc)
	contact.LastUpdatedUserID = principal.UserID

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return domain.Conflict(fmt.Sprintf("contact with id %d was updated by another user", contact.ID))
		}
		return err
	}

	// A re-save with the same action must not duplicate the enforcement row or
	// its system contact.
	if cc.Enforcement != nil && !sameEnforcementAction(previousEnforcement, cc.Enforcement) {
		if err := s.enforcement.ApplyEnforcement(ctx, contact, cc.Enforcement, principal.UserID); err != nil {
			return err
		}
	}
	return s.trackAfterUpdate(ctx, contact, principal)
}

// trackAfterInsert runs the breach, FTC and RAR trackers after a contact is
// created, inside the same transaction so each tracker reads the change.
func (s *ContactService) trackAfterInsert(ctx context.Context, contact *models.Contact, principal Principal) error {
	if err := s.breach.UpdateBreachOnInsert(ctx, contact); err != nil {
		return err
	}
	ftc := s.enforcement.ClassifyFtc(contact)
	if err := s.enforcement.UpdateFtcState(ctx, contact, ftc, principal.UserID); err != nil {
		return err
	}
	return s.rar.UpdateRarCounts(ctx, contact)
}

// trackAfterUpdate is the amendment counterpart: breach state is recomputed
// from the contact history rather than applied from the single contact.
func (s *ContactService) trackAfterUpdate(ctx context.Context, contact *models.Contact, principal Principal) error {
	if err := s.breach.UpdateBreachOnUpdate(ctx, contact); err != nil {
		return err
	}
	ftc := s.enforcement.ClassifyFtc(contact)
	if err := s.enforcement.UpdateFtcState(ctx, contact, ftc, principal.UserID); err != nil {
		return err
	}
	return s.rar.UpdateRarCounts(ctx, contact)
}

// sameEnforcementAction reports whether the stored enforcement already records
// the same action as the freshly resolved one.
func sameEnforcementAction(existing, proposed *models.Enforcement) bool {
	if existing == nil || proposed == nil {
		return false
	}
	return enforcementActionCode(existing) == enforcementActionCode(proposed)
}

func enforcementActionCode(e *models.Enforcement) string {
	if e.Action == nil {
		return ""
	}
	return e.Action.Code
}

// attachContext wires the resolved relations onto a freshly created contact so
// the trackers and the response mapper see them without a reload.
func (s *ContactService) attachContext(contact *models.Contact, cc *ContactContext) {
	contact.Offender = cc.Offender
	contact.Type = cc.Type
	contact.Event = cc.Event
	contact.Requirement = cc.Requirement
	contact.Nsi = cc.Nsi
	contact.Provider = cc.Provider
	contact.Team = cc.Team
	contact.Staff = cc.Staff
	contact.OfficeLocation = cc.OfficeLocation
}

func contactAuditIDs(id uint, contact *models.Contact) AuditIDs {
	ids := AuditIDs{ContactID: &id}
	if contact != nil {
		ids.OffenderID = &contact.OffenderID
	}
	return ids
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
