package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"
	"delius-api/internal/core/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContactContext carries every record a validated contact request resolved to.
// Enforcement is built, not yet persisted; the contact service attaches it.
type ContactContext struct {
	Offender       *models.Offender
	Type           *models.ContactType
	Event          *models.Event
	Requirement    *models.Requirement
	Nsi            *models.Nsi
	Outcome        *models.ContactOutcomeType
	Enforcement    *models.Enforcement
	Provider       *models.Provider
	Team           *models.Team
	Staff          *models.Staff
	OfficeLocation *models.OfficeLocation
}

// ContactValidationService resolves and validates contact requests against the
// reference data and the offender's sentence structure.
type ContactValidationService struct {
	offenderRepo  repositories.OffenderRepository
	referenceRepo repositories.ReferenceRepository
	nsiRepo       repositories.NsiRepository
	contactRepo   repositories.ContactRepository
	logger        *zap.SugaredLogger
	now           func() time.Time
}

// NewContactValidationService creates a new contact validation service
func NewContactValidationService(
	offenderRepo repositories.OffenderRepository,
	referenceRepo repositories.ReferenceRepository,
	nsiRepo repositories.NsiRepository,
	contactRepo repositories.ContactRepository,
	logger *zap.SugaredLogger,
) *ContactValidationService {
	return &ContactValidationService{
		offenderRepo:  offenderRepo,
		referenceRepo: referenceRepo,
		nsiRepo:       nsiRepo,
		contactRepo:   contactRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// ResolveNewContact validates a create request and resolves everything it
// references.
func (s *ContactValidationService) ResolveNewContact(ctx context.Context, req *domain.NewContact) (*ContactContext, error) {
	cc := &ContactContext{}

	offender, err := s.offenderRepo.GetByCRN(ctx, req.OffenderCrn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("offender with crn '%s' not found", req.OffenderCrn))
		}
		return nil, err
	}
	cc.Offender = offender

	contactType, err := s.referenceRepo.GetContactType(ctx, req.Type)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.BadRequest(fmt.Sprintf("contact type '%s' not found", req.Type))
		}
		return nil, err
	}
	cc.Type = contactType

	if err := s.resolveAssociations(ctx, cc, req.NsiID, req.EventID, req.RequirementID, req.Date); err != nil {
		return nil, err
	}
	if err := s.validateRarRequirement(cc, req.RarActivity, req.Date); err != nil {
		return nil, err
	}

	if err := s.validateTimes(cc.Type, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	outcome, err := s.validateOutcome(cc.Type, req.Outcome, req.Date)
	if err != nil {
		return nil, err
	}
	cc.Outcome = outcome

	if err := s.resolveEnforcement(ctx, cc, req.Enforcement); err != nil {
		return nil, err
	}

	if err := s.resolveManager(ctx, cc, req.Manager, req.OfficeLocation); err != nil {
		return nil, err
	}

	if req.Alert != nil && *req.Alert && !cc.Type.AlertFlag {
		return nil, domain.BadRequest(fmt.Sprintf("contact type '%s' cannot raise an alert", cc.Type.Code))
	}

	return cc, nil
}

// ResolveUpdateContact validates an update request against the loaded contact
// and resolves the fields it changes. The contact's type never changes.
func (s *ContactValidationService) ResolveUpdateContact(ctx context.Context, contact *models.Contact, req *domain.UpdateContact) (*ContactContext, error) {
	cc := &ContactContext{
		Offender:    contact.Offender,
		Type:        contact.Type,
		Event:       contact.Event,
		Requirement: contact.Requirement,
		Nsi:         contact.Nsi,
		Provider:    contact.Provider,
		Team:        contact.Team,
		Staff:       contact.Staff,
	}

	if !contact.Type.Editable {
		return nil, domain.BadRequest(fmt.Sprintf("contacts of type '%s' cannot be modified", contact.Type.Code))
	}

	date := contact.Date
	if req.Date != nil {
		date = *req.Date
	}
	startTime := coalesce(req.StartTime, contact.StartTime)
	endTime := coalesce(req.EndTime, contact.EndTime)

	rarActivity := req.RarActivity
	if rarActivity == nil {
		rarActivity = contact.RarActivity
	}
	if err := s.validateRarRequirement(cc, rarActivity, date); err != nil {
		return nil, err
	}

	if err := s.validateTimes(cc.Type, startTime, endTime); err != nil {
		return nil, err
	}

	outcomeCode := req.Outcome
	if outcomeCode == nil && contact.Outcome != nil {
		outcomeCode = &contact.Outcome.Code
	}
	outcome, err := s.validateOutcome(cc.Type, outcomeCode, date)
	if err != nil {
		return nil, err
	}
	cc.Outcome = outcome

	enforcementCode := req.Enforcement
	if enforcementCode == nil && contact.Enforcement != nil && contact.Enforcement.Action != nil {
		enforcementCode = &contact.Enforcement.Action.Code
	}
	if err := s.resolveEnforcement(ctx, cc, enforcementCode); err != nil {
		return nil, err
	}

	locationCode := req.OfficeLocation
	if locationCode == nil && contact.OfficeLocation != nil {
		locationCode = &contact.OfficeLocation.Code
	}
	if err := s.resolveLocation(cc, locationCode); err != nil {
		return nil, err
	}

	if req.Alert != nil && *req.Alert && !cc.Type.AlertFlag {
		return nil, domain.BadRequest(fmt.Sprintf("contact type '%s' cannot raise an alert", cc.Type.Code))
	}

	return cc, nil
}

// CheckForClashes rejects a future attendance appointment that overlaps another
// on the same day. Intervals are half-open: back-to-back appointments do not
// clash. Appointments already in the past are recorded as they happened and
// are never clash-checked.
func (s *ContactValidationService) CheckForClashes(ctx context.Context, cc *ContactContext, date time.Time, startTime, endTime *string, excludeContactID *uint) error {
	if !cc.Type.AttendanceContact || startTime == nil || endTime == nil {
		return nil
	}
	if startDateTime(date, startTime).Before(s.now()) {
		return nil
	}
	ids, err := s.contactRepo.FindClashingAppointmentIDs(ctx, cc.Offender.ID, date, *startTime, *endTime, excludeContactID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return domain.Conflict(fmt.Sprintf(
			"attendance contact of type '%s' must not clash with other attendance contacts but clashes with contacts with ids %s",
			cc.Type.Code, joinContactIDs(ids),
		))
	}
	return nil
}

// resolveAssociations resolves the NSI, event and requirement a contact is
// recorded against, then checks the contact type is permitted at the resulting
// association level.
func (s *ContactValidationService) resolveAssociations(ctx context.Context, cc *ContactContext, nsiID, eventID, requirementID *uint, date time.Time) error {
	if nsiID != nil {
		nsi, err := s.nsiRepo.GetByID(ctx, *nsiID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound(fmt.Sprintf("nsi with id %d not found", *nsiID))
			}
			return err
		}
		if nsi.OffenderID != cc.Offender.ID {
			return domain.BadRequest(fmt.Sprintf("nsi with id %d does not belong to offender '%s'", *nsiID, cc.Offender.CRN))
		}
		// An event-level NSI determines the event; an explicit eventId that
		// disagrees is ignored.
		if nsi.EventID != nil {
			if eventID != nil && *eventID != *nsi.EventID {
				s.logger.Warnw("event id differs from nsi event, nsi event takes precedence",
					"requested_event_id", *eventID,
					"nsi_event_id", *nsi.EventID,
				)
			}
			eventID = nsi.EventID
		}
		cc.Nsi = nsi
	}

	if eventID != nil {
		event := cc.Offender.FindEvent(*eventID)
		if event == nil {
			return domain.BadRequest(fmt.Sprintf("event with id %d does not belong to offender '%s'", *eventID, cc.Offender.CRN))
		}
		if !event.Active {
			return domain.BadRequest(fmt.Sprintf("event with id %d is not active", *eventID))
		}
		cc.Event = event
	}

	if requirementID != nil {
		if cc.Event == nil {
			return domain.BadRequest("a requirement can only be referenced together with its event")
		}
		requirement := cc.Offender.FindRequirement(cc.Event, *requirementID)
		if requirement == nil {
			return domain.BadRequest(fmt.Sprintf("requirement with id %d does not belong to event %d", *requirementID, cc.Event.ID))
		}
		if !requirement.Active {
			return domain.BadRequest(fmt.Sprintf("requirement with id %d is not active", *requirementID))
		}
		cc.Requirement = requirement
	}

	return s.validateAssociatedEntity(cc)
}

// validateAssociatedEntity checks the contact type against the association
// level the request resolved to. Exactly one level applies: NSI wins over
// requirement, requirement over event, and a contact with none of them is an
// offender-level contact.
func (s *ContactValidationService) validateAssociatedEntity(cc *ContactContext) error {
	switch {
	case cc.Nsi != nil:
		if !cc.Type.SupportsNsiType(cc.Nsi.TypeID) {
			return domain.BadRequest(fmt.Sprintf("contact type '%s' is not valid for nsi type '%s'", cc.Type.Code, cc.Nsi.Type.Code))
		}
	case cc.Requirement != nil:
		// A whole-order type is valid against any requirement; otherwise the
		// requirement's category must be among the type's permitted categories.
		if !cc.Type.WholeOrderLevel &&
			(cc.Requirement.TypeCategoryID == nil || !cc.Type.SupportsRequirementCategory(*cc.Requirement.TypeCategoryID)) {
			return domain.BadRequest(fmt.Sprintf("contact type '%s' is not valid for requirement category '%s'", cc.Type.Code, requirementCategoryCode(cc.Requirement)))
		}
	case cc.Event != nil:
		// Pre/post CJA 2003 checks are independent; a disposal can trip both.
		if disposal := cc.Event.Disposal(); disposal != nil && disposal.Type != nil {
			if disposal.Type.LegacyOrder && !cc.Type.LegacyOrderLevel {
				return domain.BadRequest(fmt.Sprintf("contact type '%s' is not permitted on pre-CJA orders", cc.Type.Code))
			}
			if disposal.Type.Cja2003Order && !cc.Type.CjaOrderLevel {
				return domain.BadRequest(fmt.Sprintf("contact type '%s' is not permitted on CJA 2003 orders", cc.Type.Code))
			}
		}
	default:
		if !cc.Type.OffenderLevel {
			return domain.BadRequest(fmt.Sprintf("contact type '%s' is not permitted at offender level", cc.Type.Code))
		}
	}
	return nil
}

// validateRarRequirement enforces the RAR activity flag rule: the flag must be
// supplied exactly when the contact sits under a live RAR requirement
// (directly or through its NSI) and the type records RAR activity, or the
// contact is an attendance against an NSI.
func (s *ContactValidationService) validateRarRequirement(cc *ContactContext, rarActivity *bool, date time.Time) error {
	linked := cc.Requirement
	if linked == nil && cc.Nsi != nil {
		linked = cc.Nsi.Requirement
	}
	rarRequired := linked != nil &&
		linked.IsRehabilitationActivityRequirement() &&
		!linked.IsTerminated(date) &&
		(cc.Type.RarActivity || (cc.Nsi != nil && cc.Type.AttendanceContact))

	if rarRequired {
		if rarActivity == nil {
			return domain.BadRequest(fmt.Sprintf("a rar activity flag is required for contacts of type '%s' against a rar requirement", cc.Type.Code))
		}
		return nil
	}
	if rarActivity != nil {
		return domain.BadRequest(fmt.Sprintf("a rar activity flag cannot be recorded for contacts of type '%s'", cc.Type.Code))
	}
	return nil
}

// validateOutcome enforces the contact type's outcome mode against the contact
// date: a required outcome may only be omitted until the contact day has
// passed, and only an acceptable absence can be recorded ahead of it.
func (s *ContactValidationService) validateOutcome(contactType *models.ContactType, code *string, date time.Time) (*models.ContactOutcomeType, error) {
	today := startOfDay(s.now())
	day := startOfDay(date)
	if code == nil {
		if contactType.OutcomeFlag == models.Required && day.Before(today) {
			return nil, domain.BadRequest(fmt.Sprintf("an outcome is required for past contacts of type '%s'", contactType.Code))
		}
		return nil, nil
	}
	if contactType.OutcomeFlag == models.NotAllowed {
		return nil, domain.BadRequest(fmt.Sprintf("contact type '%s' does not allow an outcome", contactType.Code))
	}
	outcome := contactType.FindOutcome(*code)
	if outcome == nil {
		return nil, domain.BadRequest(fmt.Sprintf("outcome '%s' is not valid for contact type '%s'", *code, contactType.Code))
	}
	if day.After(today) && !outcome.IsPermissibleAbsence() {
		return nil, domain.BadRequest("only an acceptable absence can be recorded against a future contact")
	}
	return outcome, nil
}

// resolveEnforcement builds the enforcement a non-compliant outcome carries.
// An outcome that is non-compliant and enforceable always gets an enforcement
// record; the action on it is resolved only when the outcome demands one, and
// a supplied action code is otherwise ignored.
func (s *ContactValidationService) resolveEnforcement(ctx context.Context, cc *ContactContext, code *string) error {
	if cc.Outcome == nil {
		if code == nil {
			return nil
		}
		return domain.BadRequest("an enforcement action cannot be recorded without an outcome")
	}
	outcome := cc.Outcome
	if outcome.CompliantAcceptable == nil || *outcome.CompliantAcceptable ||
		outcome.Enforceable == nil || !*outcome.Enforceable {
		if code == nil {
			return nil
		}
		return domain.BadRequest(fmt.Sprintf("outcome '%s' is not an enforceable failure to comply, an enforcement action cannot be recorded", outcome.Code))
	}

	now := s.now()
	enforcement := &models.Enforcement{
		ActionTakenDate: startOfDay(now),
		ActionTakenTime: now.Format(models.TimeOfDayLayout),
	}
	if outcome.ActionRequired {
		if code == nil {
			return domain.BadRequest(fmt.Sprintf("outcome '%s' requires an enforcement action", outcome.Code))
		}
		action, err := s.referenceRepo.GetEnforcementAction(ctx, *code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.BadRequest(fmt.Sprintf("enforcement action '%s' does not exist", *code))
			}
			return err
		}
		enforcement.ActionID = &action.ID
		enforcement.Action = action
		if action.ResponseByPeriod != nil {
			responseBy := enforcement.ActionTakenDate.AddDate(0, 0, int(*action.ResponseByPeriod))
			enforcement.ResponseDate = &responseBy
		}
	}
	cc.Enforcement = enforcement
	return nil
}

// resolveManager resolves the provider/team/staff recording the contact, then
// the office location within the team.
func (s *ContactValidationService) resolveManager(ctx context.Context, cc *ContactContext, manager domain.ContactManager, locationCode *string) error {
	provider, err := s.referenceRepo.GetProvider(ctx, manager.Provider)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BadRequest(fmt.Sprintf("provider '%s' not found", manager.Provider))
		}
		return err
	}
	team := provider.FindTeam(manager.Team)
	if team == nil {
		return domain.BadRequest(fmt.Sprintf("team '%s' not found in provider '%s'", manager.Team, manager.Provider))
	}
	staff := team.FindStaff(manager.Staff)
	if staff == nil {
		return domain.BadRequest(fmt.Sprintf("staff '%s' not found in team '%s'", manager.Staff, manager.Team))
	}
	cc.Provider = provider
	cc.Team = team
	cc.Staff = staff
	return s.resolveLocation(cc, locationCode)
}

// resolveLocation enforces the contact type's location mode against the team's
// office locations.
func (s *ContactValidationService) resolveLocation(cc *ContactContext, locationCode *string) error {
	switch cc.Type.LocationFlag {
	case models.Required:
		if locationCode == nil {
			return domain.BadRequest(fmt.Sprintf("a location is required for contacts of type '%s'", cc.Type.Code))
		}
	case models.NotAllowed:
		if locationCode != nil {
			return domain.BadRequest(fmt.Sprintf("contact type '%s' does not allow a location", cc.Type.Code))
		}
	}
	if locationCode == nil {
		return nil
	}
	location := cc.Team.FindOfficeLocation(*locationCode)
	if location == nil {
		return domain.BadRequest(fmt.Sprintf("location '%s' not found in team '%s'", *locationCode, cc.Team.Code))
	}
	cc.OfficeLocation = location
	return nil
}

// validateTimes enforces time presence and ordering rules.
func (s *ContactValidationService) validateTimes(contactType *models.ContactType, startTime, endTime *string) error {
	if contactType.AttendanceContact && (startTime == nil || endTime == nil) {
		return domain.BadRequest(fmt.Sprintf("start and end times are required for attendance contacts of type '%s'", contactType.Code))
	}
	if contactType.RecordedHoursCredited && endTime == nil {
		return domain.BadRequest(fmt.Sprintf("an end time is required for contacts of type '%s'", contactType.Code))
	}
	if endTime != nil && startTime == nil {
		return domain.BadRequest("an end time requires a start time")
	}
	var start, end time.Time
	if startTime != nil {
		t, err := models.ParseTimeOfDay(*startTime)
		if err != nil {
			return domain.BadRequest(fmt.Sprintf("invalid start time '%s'", *startTime))
		}
		start = t
	}
	if endTime != nil {
		t, err := models.ParseTimeOfDay(*endTime)
		if err != nil {
			return domain.BadRequest(fmt.Sprintf("invalid end time '%s'", *endTime))
		}
		end = t
	}
	if startTime != nil && endTime != nil && !end.After(start) {
		return domain.BadRequest("end time must be after start time")
	}
	return nil
}

// ApplyOutcomeMeta derives the outcome-dependent fields: attendance,
// compliance, and credited hours when the type records them and the offender
// both attended and complied.
func (s *ContactValidationService) ApplyOutcomeMeta(contact *models.Contact, cc *ContactContext) {
	if cc.Outcome == nil {
		contact.OutcomeID = nil
		contact.Outcome = nil
		contact.Attended = nil
		contact.Complied = nil
		contact.HoursCredited = nil
		return
	}
	contact.OutcomeID = &cc.Outcome.ID
	contact.Outcome = cc.Outcome
	contact.Attended = cc.Outcome.Attendance
	contact.Complied = cc.Outcome.CompliantAcceptable

	contact.HoursCredited = nil
	if cc.Type.RecordedHoursCredited &&
		contact.Attended != nil && *contact.Attended &&
		contact.Complied != nil && *contact.Complied {
		if d := contact.Duration(); d > 0 {
			hours, _ := decimal.NewFromInt(int64(d.Minutes())).
				Div(decimal.NewFromInt(60)).
				Round(2).
				Float64()
			contact.HoursCredited = &hours
		}
	}
}

func requirementCategoryCode(requirement *models.Requirement) string {
	if requirement.TypeCategory == nil {
		return ""
	}
	return requirement.TypeCategory.Code
}

func joinContactIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("'%d'", id)
	}
	return strings.Join(parts, ", ")
}

func startDateTime(date time.Time, startTime *string) time.Time {
	if startTime != nil {
		if t, err := models.ParseTimeOfDay(*startTime); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

func coalesce(override, current *string) *string {
	if override != nil {
		return override
	}
	return current
}
