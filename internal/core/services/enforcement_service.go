package services

import (
	"context"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
)

// FtcAction is what a contact change means for the event's failure-to-comply
// state.
type FtcAction int

const (
	// FtcNone - the change cannot move the FTC count
	FtcNone FtcAction = iota
	// FtcUpdate - recount, but the new outcome cannot open a breach
	FtcUpdate
	// FtcUpdateAndCheckBreach - recount and check the breach threshold
	FtcUpdateAndCheckBreach
)

// enforcementBreachKind is the breach significance of a contact's enforcement
// action, derived from the action's own contact type.
type enforcementBreachKind int

const (
	enforcementBreachNone enforcementBreachKind = iota
	enforcementBreachStart
	enforcementBreachEnd
)

// EnforcementService owns the enforcement side of the contact lifecycle:
// persisting the enforcement a non-compliant outcome carries, and maintaining
// each event's failure-to-comply count and review state.
type EnforcementService struct {
	contactRepo    repositories.ContactRepository
	eventRepo      repositories.EventRepository
	systemContacts *SystemContactService
	breach         *BreachService
	logger         *zap.SugaredLogger
	now            func() time.Time
}

// NewEnforcementService creates a new enforcement service
func NewEnforcementService(
	contactRepo repositories.ContactRepository,
	eventRepo repositories.EventRepository,
	systemContacts *SystemContactService,
	breach *BreachService,
	logger *zap.SugaredLogger,
) *EnforcementService {
	return &EnforcementService{
		contactRepo:    contactRepo,
		eventRepo:      eventRepo,
		systemContacts: systemContacts,
		breach:         breach,
		logger:         logger,
		now:            time.Now,
	}
}

// ApplyEnforcement persists the enforcement resolved for the contact's
// outcome. When the enforcement carries an action, a linked system contact of
// the action's own type is generated and fed through the breach tracker, so an
// action that itself initiates breach proceedings opens the breach here.
// Enforcement is only ever added, never removed; withdrawing an action is
// itself a recorded action.
func (s *EnforcementService) ApplyEnforcement(ctx context.Context, contact *models.Contact, enforcement *models.Enforcement, userID uint) error {
	if enforcement == nil {
		return nil
	}
	enforcement.ContactID = contact.ID
	if err := s.contactRepo.CreateEnforcement(ctx, enforcement); err != nil {
		return err
	}
	contact.Enforcement = enforcement

	if enforcement.Action == nil {
		return nil
	}
	actionContact, err := s.systemContacts.CreateEnforcementActionContact(ctx, enforcement.Action, contact, userID)
	if err != nil {
		return err
	}
	if actionContact == nil {
		return nil
	}
	return s.breach.UpdateBreachOnInsert(ctx, actionContact)
}

// ClassifyFtc decides what a contact change means for the FTC count. Only
// national-standards contacts count towards failures to comply; release from
// custody is the one non-NS type that still moves the count, because it closes
// the counting window.
func (s *EnforcementService) ClassifyFtc(contact *models.Contact) FtcAction {
	if contact.Event == nil {
		return FtcNone
	}
	if contact.Type == nil || !contact.Type.NationalStandardsContact {
		if contact.Type != nil && contact.Type.Code == ContactTypeReleaseFromCustody {
			return FtcUpdate
		}
		return FtcNone
	}
	return FtcUpdateAndCheckBreach
}

// UpdateFtcState recounts the event's failures to comply and, when the change
// can open a breach, raises the enforcement review once the disposal's limit
// is reached. The count window starts after the last concluded breach.
func (s *EnforcementService) UpdateFtcState(ctx context.Context, contact *models.Contact, action FtcAction, userID uint) error {
	if action == FtcNone {
		return nil
	}
	event := contact.Event

	if action == FtcUpdate {
		return s.recountFtc(ctx, event)
	}

	// The contact's own enforcement action can carry breach significance: an
	// action whose contact type concludes a breach resets the count itself, so
	// recounting here would use the stale window.
	kind := s.enforcementBreachKind(contact)
	if kind != enforcementBreachEnd {
		if err := s.recountFtc(ctx, event); err != nil {
			return err
		}
	}

	outcome := contact.Outcome
	if outcome == nil {
		return nil
	}
	if outcome.CompliantAcceptable == nil || *outcome.CompliantAcceptable {
		return nil
	}
	if kind == enforcementBreachStart {
		// The enforcement action already initiates breach proceedings; raising
		// a review on top of it would duplicate the response.
		return nil
	}
	if event.IsInBreachOn(contact.Date) {
		return nil
	}
	disposal := event.Disposal()
	if disposal == nil || disposal.Type == nil || disposal.Type.SentenceType == nil {
		return nil
	}
	if disposal.Type.FailureToComplyLimit == nil || event.FtcCount < *disposal.Type.FailureToComplyLimit {
		return nil
	}
	underReview, err := s.contactRepo.HasEnforcementUnderReview(ctx, event.ID, ContactTypeReviewEnforcementStatus, event.BreachEnd)
	if err != nil {
		return err
	}
	if underReview {
		return nil
	}

	s.logger.Infow("failure to comply limit reached, raising enforcement review",
		"event_id", event.ID,
		"ftc_count", event.FtcCount,
		"limit", *disposal.Type.FailureToComplyLimit,
	)
	reviewContact, err := s.systemContacts.CreateReviewContact(ctx, contact, userID)
	if err != nil {
		return err
	}
	return s.breach.UpdateBreachOnInsert(ctx, reviewContact)
}

func (s *EnforcementService) recountFtc(ctx context.Context, event *models.Event) error {
	count, err := s.contactRepo.CountFailuresToComply(ctx, event.ID, event.BreachEnd)
	if err != nil {
		return err
	}
	if count == event.FtcCount {
		return nil
	}
	event.FtcCount = count
	return s.eventRepo.Update(ctx, event)
}

func (s *EnforcementService) enforcementBreachKind(contact *models.Contact) enforcementBreachKind {
	if contact.Outcome == nil || !contact.Outcome.ActionRequired {
		return enforcementBreachNone
	}
	if contact.Enforcement == nil || contact.Enforcement.Action == nil || contact.Enforcement.Action.ContactType == nil {
		return enforcementBreachNone
	}
	code := contact.Enforcement.Action.ContactType.Code
	switch {
	case isBreachStartType(code):
		return enforcementBreachStart
	case isBreachEndSideEffect(code) || code == ContactTypeBreachEnd:
		return enforcementBreachEnd
	default:
		return enforcementBreachNone
	}
}

func equalUintPtr(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
