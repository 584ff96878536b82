package services

import (
	"context"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
)

// BreachService maintains an event's breach state from its breach contacts.
// Inserting a breach contact applies that contact to the event directly;
// amending or deleting one recomputes the state from the contacts that remain.
type BreachService struct {
	contactRepo repositories.ContactRepository
	eventRepo   repositories.EventRepository
	logger      *zap.SugaredLogger
}

// NewBreachService creates a new breach service
func NewBreachService(
	contactRepo repositories.ContactRepository,
	eventRepo repositories.EventRepository,
	logger *zap.SugaredLogger,
) *BreachService {
	return &BreachService{
		contactRepo: contactRepo,
		eventRepo:   eventRepo,
		logger:      logger,
	}
}

// UpdateBreachOnInsert applies a newly inserted breach contact to its event.
// A breach start opens a breach unless an end contact already sits after it;
// a breach end concludes the breach, resets the failure-to-comply count over
// the old breach window and stamps the breach end date.
func (s *BreachService) UpdateBreachOnInsert(ctx context.Context, contact *models.Contact) error {
	event := contact.Event
	if event == nil || contact.Type == nil || !IsBreachType(contact.Type.Code) {
		return nil
	}
	contactStart := contact.StartDateTime()

	if isBreachStartType(contact.Type.Code) {
		latestEnd, err := s.contactRepo.LatestContactOfTypes(ctx, event.ID, BreachEndTypeCodes)
		if err != nil {
			return err
		}
		var boundary *time.Time
		if latestEnd != nil {
			t := latestEnd.StartDateTime()
			boundary = &t
		} else if event.BreachEnd != nil {
			t := startOfDay(*event.BreachEnd)
			boundary = &t
		}
		if boundary == nil || !contactStart.Before(*boundary) {
			event.InBreach = true
			s.logger.Infow("breach opened", "event_id", event.ID, "contact_id", contact.ID)
			return s.eventRepo.Update(ctx, event)
		}
		return nil
	}

	latestStart, err := s.contactRepo.LatestContactOfTypes(ctx, event.ID, BreachStartTypeCodes)
	if err != nil {
		return err
	}
	formsEnd := latestStart != nil && latestStart.StartDateTime().Before(contactStart)
	// Prison recall and post-sentence starts only end a breach as a side
	// effect; recorded on the day the breach opened, they leave it standing.
	sideEffect := isBreachEndSideEffect(contact.Type.Code) &&
		latestStart != nil && sameDay(latestStart.Date, contact.Date)
	if formsEnd && !sideEffect {
		event.InBreach = false
	}
	// Recount over the window up to the previous breach end, then move the
	// window boundary to this contact.
	count, err := s.contactRepo.CountFailuresToComply(ctx, event.ID, event.BreachEnd)
	if err != nil {
		return err
	}
	event.FtcCount = count
	end := startOfDay(contact.Date)
	event.BreachEnd = &end
	s.logger.Infow("breach concluded",
		"event_id", event.ID,
		"contact_id", contact.ID,
		"in_breach", event.InBreach,
		"ftc_count", count,
	)
	return s.eventRepo.Update(ctx, event)
}

// UpdateBreachOnUpdate recomputes the event's breach state after a breach
// contact was amended or deleted. The event is in breach while a start contact
// exists; the breach end date is the latest end contact strictly after it.
func (s *BreachService) UpdateBreachOnUpdate(ctx context.Context, contact *models.Contact) error {
	event := contact.Event
	if event == nil || contact.Type == nil || !IsBreachType(contact.Type.Code) {
		return nil
	}
	latestStart, err := s.contactRepo.LatestContactOfTypes(ctx, event.ID, BreachStartTypeCodes)
	if err != nil {
		return err
	}
	latestEnd, err := s.contactRepo.LatestContactOfTypes(ctx, event.ID, BreachEndTypeCodes)
	if err != nil {
		return err
	}

	inBreach := latestStart != nil
	var breachEnd *time.Time
	if latestStart != nil && latestEnd != nil &&
		latestEnd.StartDateTime().After(latestStart.StartDateTime()) {
		end := startOfDay(latestEnd.Date)
		breachEnd = &end
	}

	if event.InBreach == inBreach && equalDatePtr(event.BreachEnd, breachEnd) {
		return nil
	}
	event.InBreach = inBreach
	event.BreachEnd = breachEnd
	count, err := s.contactRepo.CountFailuresToComply(ctx, event.ID, event.BreachEnd)
	if err != nil {
		return err
	}
	event.FtcCount = count
	s.logger.Infow("breach state recomputed",
		"event_id", event.ID,
		"in_breach", inBreach,
		"ftc_count", count,
	)
	return s.eventRepo.Update(ctx, event)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func equalDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return sameDay(*a, *b)
}
