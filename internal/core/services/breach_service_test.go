package services

import (
	"context"
	"testing"
	"time"

	"delius-api/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breachContact(typeCode string, date time.Time, startTime string) *models.Contact {
	return &models.Contact{
		Date:      date,
		StartTime: &startTime,
		Type:      &models.ContactType{Code: typeCode},
	}
}

func eventBreachContact(event *models.Event, typeCode string, date time.Time, startTime string) *models.Contact {
	contact := breachContact(typeCode, date, startTime)
	contact.EventID = &event.ID
	contact.Event = event
	return contact
}

func TestUpdateBreachOnInsert(t *testing.T) {
	ctx := context.Background()
	day := func(offset int) time.Time { return startOfDay(testNow).AddDate(0, 0, offset) }

	t.Run("non breach type is a no-op", func(t *testing.T) {
		h := newContactHarness()
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, "APAT", day(-1), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.False(t, event.InBreach)
		assert.Empty(t, h.eventRepo.updatedEvents)
	})

	t.Run("start with no prior end opens the breach", func(t *testing.T) {
		h := newContactHarness()
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, ContactTypeBreachStart, day(-1), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.True(t, event.InBreach)
		assert.Len(t, h.eventRepo.updatedEvents, 1)
	})

	t.Run("start at the exact latest end timestamp opens the breach", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestEnd = breachContact(ContactTypeBreachEnd, day(-2), "09:00")
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, ContactTypeBreachStart, day(-2), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.True(t, event.InBreach)
	})

	t.Run("start before the latest end changes nothing", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestEnd = breachContact(ContactTypeBreachEnd, day(-2), "09:00")
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, ContactTypeBreachStart, day(-5), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.False(t, event.InBreach)
		assert.Empty(t, h.eventRepo.updatedEvents)
	})

	t.Run("without end contacts the event's own breach end date decides", func(t *testing.T) {
		h := newContactHarness()
		breachEnd := day(-2)
		event := &models.Event{ID: 1, BreachEnd: &breachEnd}
		early := eventBreachContact(event, ContactTypeBreachStart, day(-5), "09:00")
		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, early))
		assert.False(t, event.InBreach)

		late := eventBreachContact(event, ContactTypeBreachStart, day(-1), "09:00")
		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, late))
		assert.True(t, event.InBreach)
	})

	t.Run("end after the start concludes the breach and recounts", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-5), "09:00")
		h.contactRepo.ftcCount = 2
		event := &models.Event{ID: 1, InBreach: true, FtcCount: 5}
		contact := eventBreachContact(event, ContactTypeBreachEnd, day(-1), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.False(t, event.InBreach)
		require.NotNil(t, event.BreachEnd)
		assert.True(t, event.BreachEnd.Equal(day(-1)))
		assert.EqualValues(t, 2, event.FtcCount)
		assert.Len(t, h.eventRepo.updatedEvents, 1)
	})

	t.Run("same day end by time ordering concludes the breach", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-1), "09:00")
		event := &models.Event{ID: 1, InBreach: true}
		contact := eventBreachContact(event, ContactTypeBreachEnd, day(-1), "15:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.False(t, event.InBreach)
	})

	t.Run("prison recall on the day the breach opened leaves it standing", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-1), "09:00")
		event := &models.Event{ID: 1, InBreach: true}
		contact := eventBreachContact(event, ContactTypePrisonRecall, day(-1), "15:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.True(t, event.InBreach)
		// The end date and count still move: the recall bounds the window.
		require.NotNil(t, event.BreachEnd)
		assert.Len(t, h.eventRepo.updatedEvents, 1)
	})

	t.Run("prison recall on a later day concludes the breach", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-5), "09:00")
		event := &models.Event{ID: 1, InBreach: true}
		contact := eventBreachContact(event, ContactTypePrisonRecall, day(-1), "15:00")

		require.NoError(t, h.breach.UpdateBreachOnInsert(ctx, contact))

		assert.False(t, event.InBreach)
	})
}

func TestUpdateBreachOnUpdate(t *testing.T) {
	ctx := context.Background()
	day := func(offset int) time.Time { return startOfDay(testNow).AddDate(0, 0, offset) }

	t.Run("surviving start keeps the breach open", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-5), "09:00")
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, ContactTypeBreachStart, day(-5), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnUpdate(ctx, contact))

		assert.True(t, event.InBreach)
		assert.Nil(t, event.BreachEnd)
		assert.Len(t, h.eventRepo.updatedEvents, 1)
	})

	t.Run("end strictly after the start records the end date", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-5), "09:00")
		h.contactRepo.latestEnd = breachContact(ContactTypeBreachEnd, day(-1), "09:00")
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, ContactTypeBreachEnd, day(-1), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnUpdate(ctx, contact))

		require.NotNil(t, event.BreachEnd)
		assert.True(t, event.BreachEnd.Equal(day(-1)))
	})

	t.Run("end at the exact start timestamp does not bound the breach", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.latestStart = breachContact(ContactTypeBreachStart, day(-5), "09:00")
		h.contactRepo.latestEnd = breachContact(ContactTypeBreachEnd, day(-5), "09:00")
		event := &models.Event{ID: 1}
		contact := eventBreachContact(event, ContactTypeBreachEnd, day(-5), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnUpdate(ctx, contact))

		assert.True(t, event.InBreach)
		assert.Nil(t, event.BreachEnd)
	})

	t.Run("no remaining start closes the breach and recounts", func(t *testing.T) {
		h := newContactHarness()
		h.contactRepo.ftcCount = 1
		event := &models.Event{ID: 1, InBreach: true, FtcCount: 5}
		contact := eventBreachContact(event, ContactTypeBreachStart, day(-5), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnUpdate(ctx, contact))

		assert.False(t, event.InBreach)
		assert.EqualValues(t, 1, event.FtcCount)
		assert.Len(t, h.eventRepo.updatedEvents, 1)
	})

	t.Run("unchanged state skips the save", func(t *testing.T) {
		h := newContactHarness()
		event := &models.Event{ID: 1, InBreach: false}
		contact := eventBreachContact(event, ContactTypeBreachEnd, day(-1), "09:00")

		require.NoError(t, h.breach.UpdateBreachOnUpdate(ctx, contact))

		assert.Empty(t, h.eventRepo.updatedEvents)
	})
}
