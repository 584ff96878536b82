package services

import (
	"context"
	"testing"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNewContact(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown offender returns not found", func(t *testing.T) {
		h := newContactHarness()
		req := h.newAppointment()
		req.OffenderCrn = "Z999999"

		_, err := h.validation.ResolveNewContact(ctx, req)

		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Contains(t, err.Error(), "Z999999")
	})

	t.Run("unknown contact type returns bad request", func(t *testing.T) {
		h := newContactHarness()
		req := h.newAppointment()
		req.Type = "NOPE"

		_, err := h.validation.ResolveNewContact(ctx, req)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("valid request resolves the full context", func(t *testing.T) {
		h := newContactHarness()
		req := h.newAppointment()
		req.OfficeLocation = strPtr("N01OFFA")

		cc, err := h.validation.ResolveNewContact(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, h.offender.ID, cc.Offender.ID)
		assert.Equal(t, "APAT", cc.Type.Code)
		require.NotNil(t, cc.Event)
		require.NotNil(t, cc.Requirement)
		assert.Equal(t, "ATTC", cc.Outcome.Code)
		assert.Nil(t, cc.Enforcement)
		assert.Equal(t, "N01", cc.Provider.Code)
		assert.Equal(t, "N01UAT", cc.Team.Code)
		assert.Equal(t, "N01UATU", cc.Staff.Code)
		require.NotNil(t, cc.OfficeLocation)
		assert.Equal(t, "N01OFFA", cc.OfficeLocation.Code)
	})

	t.Run("event from another offender is rejected", func(t *testing.T) {
		h := newContactHarness()
		req := h.newAppointment()
		req.EventID = uintPtr(99)
		req.RequirementID = nil
		req.RarActivity = nil

		_, err := h.validation.ResolveNewContact(ctx, req)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("requirement without its event is rejected", func(t *testing.T) {
		h := newContactHarness()
		req := h.newAppointment()
		req.EventID = nil

		_, err := h.validation.ResolveNewContact(ctx, req)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "requirement")
	})
}

func TestValidateAssociatedEntity(t *testing.T) {
	h := newContactHarness()
	requirement := func() *models.Requirement {
		return &h.offender.Events[0].Disposals[0].Requirements[0]
	}
	event := func() *models.Event { return &h.offender.Events[0] }

	t.Run("nsi context checks the nsi type only", func(t *testing.T) {
		nsiType := &models.NsiType{ID: 3, Code: "BRE"}
		nsi := &models.Nsi{ID: 1, TypeID: 3, Type: nsiType}
		supported := appointmentType()
		supported.NsiTypes = []models.NsiType{*nsiType}
		// Requirement category would not match, but the NSI level wins.
		cc := &ContactContext{Type: supported, Nsi: nsi, Requirement: requirement(), Event: event()}
		assert.NoError(t, h.validation.validateAssociatedEntity(cc))

		unsupported := appointmentType()
		cc = &ContactContext{Type: unsupported, Nsi: nsi}
		var badRequest *domain.BadRequestError
		require.ErrorAs(t, h.validation.validateAssociatedEntity(cc), &badRequest)
	})

	t.Run("whole order type is valid against any requirement", func(t *testing.T) {
		other := &models.RequirementTypeCategory{ID: 5, Code: "W"}
		unclassified := &models.Requirement{ID: 2, TypeCategoryID: &other.ID, TypeCategory: other}
		wholeOrder := appointmentType() // WholeOrderLevel is set
		cc := &ContactContext{Type: wholeOrder, Requirement: unclassified, Event: event()}

		assert.NoError(t, h.validation.validateAssociatedEntity(cc))
	})

	t.Run("requirement category must match a non whole order type", func(t *testing.T) {
		other := &models.RequirementTypeCategory{ID: 5, Code: "W"}
		unclassified := &models.Requirement{ID: 2, TypeCategoryID: &other.ID, TypeCategory: other}
		narrow := appointmentType()
		narrow.WholeOrderLevel = false
		cc := &ContactContext{Type: narrow, Requirement: unclassified, Event: event()}

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, h.validation.validateAssociatedEntity(cc), &badRequest)
	})

	t.Run("event context checks the order era regardless of whole order level", func(t *testing.T) {
		notCja := appointmentType() // WholeOrderLevel set, CjaOrderLevel about to be cleared
		notCja.CjaOrderLevel = false
		cc := &ContactContext{Type: notCja, Event: event()}

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, h.validation.validateAssociatedEntity(cc), &badRequest)
		assert.Contains(t, badRequest.Error(), "CJA 2003")
	})

	t.Run("offender level contact requires an offender level type", func(t *testing.T) {
		eventOnly := appointmentType()
		eventOnly.OffenderLevel = false
		cc := &ContactContext{Type: eventOnly}

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, h.validation.validateAssociatedEntity(cc), &badRequest)

		cc = &ContactContext{Type: appointmentType()}
		assert.NoError(t, h.validation.validateAssociatedEntity(cc))
	})
}

func TestValidateRarRequirement(t *testing.T) {
	h := newContactHarness()
	requirement := func() *models.Requirement {
		return &h.offender.Events[0].Disposals[0].Requirements[0]
	}

	t.Run("rar flag accepted against a live rar requirement", func(t *testing.T) {
		cc := &ContactContext{Type: appointmentType(), Requirement: requirement()}
		assert.NoError(t, h.validation.validateRarRequirement(cc, boolPtr(true), testNow))
		assert.NoError(t, h.validation.validateRarRequirement(cc, boolPtr(false), testNow))
	})

	t.Run("rar flag required against a live rar requirement", func(t *testing.T) {
		cc := &ContactContext{Type: appointmentType(), Requirement: requirement()}

		err := h.validation.validateRarRequirement(cc, nil, testNow)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("rar flag rejected without a rar requirement", func(t *testing.T) {
		cc := &ContactContext{Type: appointmentType()}

		err := h.validation.validateRarRequirement(cc, boolPtr(true), testNow)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "cannot")
	})

	t.Run("terminated requirement takes no rar flag", func(t *testing.T) {
		terminated := *requirement()
		endDate := testNow.AddDate(0, 0, -30)
		terminated.TerminationDate = &endDate
		cc := &ContactContext{Type: appointmentType(), Requirement: &terminated}

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, h.validation.validateRarRequirement(cc, boolPtr(true), testNow), &badRequest)
		assert.NoError(t, h.validation.validateRarRequirement(cc, nil, testNow))
	})

	t.Run("attendance against an nsi on a rar requirement requires the flag", func(t *testing.T) {
		attendance := &models.ContactType{Code: "CITA", AttendanceContact: true}
		nsi := &models.Nsi{ID: 1, Requirement: requirement()}
		cc := &ContactContext{Type: attendance, Nsi: nsi}

		err := h.validation.validateRarRequirement(cc, nil, testNow)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})
}

func TestValidateOutcome(t *testing.T) {
	h := newContactHarness()
	apptType := appointmentType()
	past := testNow.AddDate(0, 0, -1)
	future := testNow.AddDate(0, 0, 1)

	t.Run("outcome required for past contacts", func(t *testing.T) {
		_, err := h.validation.validateOutcome(apptType, nil, past)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("no outcome needed on the contact day itself", func(t *testing.T) {
		outcome, err := h.validation.validateOutcome(apptType, nil, testNow)

		require.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("no outcome accepted on future contacts", func(t *testing.T) {
		outcome, err := h.validation.validateOutcome(apptType, nil, future)

		require.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("outcome rejected when type does not allow one", func(t *testing.T) {
		noOutcomeType := &models.ContactType{Code: "AIBR", OutcomeFlag: models.NotAllowed}

		_, err := h.validation.validateOutcome(noOutcomeType, strPtr("ATTC"), past)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("outcome outside the type's permitted set is rejected", func(t *testing.T) {
		_, err := h.validation.validateOutcome(apptType, strPtr("XXXX"), past)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("attended outcome rejected on a future contact", func(t *testing.T) {
		_, err := h.validation.validateOutcome(apptType, strPtr("ATTC"), future)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "acceptable absence")
	})

	t.Run("attended outcome accepted later the same day", func(t *testing.T) {
		outcome, err := h.validation.validateOutcome(apptType, strPtr("ATTC"), testNow.Add(4*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, "ATTC", outcome.Code)
	})

	t.Run("acceptable absence accepted on a future contact", func(t *testing.T) {
		outcome, err := h.validation.validateOutcome(apptType, strPtr("AACB"), future)

		require.NoError(t, err)
		assert.Equal(t, "AACB", outcome.Code)
	})
}

func TestResolveEnforcement(t *testing.T) {
	ctx := context.Background()
	outcomes := testOutcomes()

	setup := func() (*contactHarness, *ContactContext) {
		h := newContactHarness()
		h.refRepo.actions["WLS"] = &models.EnforcementAction{
			ID:               1,
			Code:             "WLS",
			Description:      "Warning Letter Sent",
			ResponseByPeriod: int64Ptr(7),
		}
		return h, &ContactContext{Type: appointmentType()}
	}

	t.Run("action without an outcome is rejected", func(t *testing.T) {
		h, cc := setup()

		err := h.validation.resolveEnforcement(ctx, cc, strPtr("WLS"))

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("action against a compliant outcome is rejected", func(t *testing.T) {
		h, cc := setup()
		cc.Outcome = &outcomes[0]

		err := h.validation.resolveEnforcement(ctx, cc, strPtr("WLS"))

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "not an enforceable failure to comply")
	})

	t.Run("non enforceable failure carries no enforcement", func(t *testing.T) {
		h, cc := setup()
		cc.Outcome = &models.ContactOutcomeType{Code: "UNEN", CompliantAcceptable: boolPtr(false), Enforceable: boolPtr(false)}

		require.NoError(t, h.validation.resolveEnforcement(ctx, cc, nil))
		assert.Nil(t, cc.Enforcement)
	})

	t.Run("enforceable failure without required action builds a bare enforcement", func(t *testing.T) {
		h, cc := setup()
		cc.Outcome = &models.ContactOutcomeType{Code: "NOAC", CompliantAcceptable: boolPtr(false), Enforceable: boolPtr(true)}

		require.NoError(t, h.validation.resolveEnforcement(ctx, cc, nil))

		require.NotNil(t, cc.Enforcement)
		assert.Nil(t, cc.Enforcement.ActionID)
		assert.True(t, cc.Enforcement.ActionTakenDate.Equal(startOfDay(testNow)))
		assert.Equal(t, "14:00", cc.Enforcement.ActionTakenTime)
	})

	t.Run("action required but missing is rejected", func(t *testing.T) {
		h, cc := setup()
		cc.Outcome = &outcomes[1] // AFTC demands an action

		err := h.validation.resolveEnforcement(ctx, cc, nil)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "requires an enforcement action")
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		h, cc := setup()
		cc.Outcome = &outcomes[1]

		err := h.validation.resolveEnforcement(ctx, cc, strPtr("NOPE"))

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("required action resolves with the response deadline", func(t *testing.T) {
		h, cc := setup()
		cc.Outcome = &outcomes[1]

		require.NoError(t, h.validation.resolveEnforcement(ctx, cc, strPtr("WLS")))

		require.NotNil(t, cc.Enforcement)
		require.NotNil(t, cc.Enforcement.Action)
		assert.Equal(t, "WLS", cc.Enforcement.Action.Code)
		require.NotNil(t, cc.Enforcement.ResponseDate)
		assert.True(t, cc.Enforcement.ResponseDate.Equal(startOfDay(testNow).AddDate(0, 0, 7)))
	})
}

func TestValidateTimes(t *testing.T) {
	h := newContactHarness()
	apptType := appointmentType()
	noteType := &models.ContactType{Code: "CTOB"}

	t.Run("attendance contact requires both times", func(t *testing.T) {
		err := h.validation.validateTimes(apptType, strPtr("10:00"), nil)
		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("hours credited type requires an end time", func(t *testing.T) {
		creditType := &models.ContactType{Code: "UPW", RecordedHoursCredited: true}

		err := h.validation.validateTimes(creditType, strPtr("10:00"), nil)

		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
		assert.Contains(t, err.Error(), "end time")
	})

	t.Run("end time without start time is rejected", func(t *testing.T) {
		err := h.validation.validateTimes(noteType, nil, strPtr("11:00"))
		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("end must be after start", func(t *testing.T) {
		err := h.validation.validateTimes(apptType, strPtr("11:00"), strPtr("11:00"))
		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("malformed time is rejected", func(t *testing.T) {
		err := h.validation.validateTimes(apptType, strPtr("25:99"), strPtr("11:00"))
		var badRequest *domain.BadRequestError
		require.ErrorAs(t, err, &badRequest)
	})

	t.Run("valid interval passes", func(t *testing.T) {
		assert.NoError(t, h.validation.validateTimes(apptType, strPtr("10:00"), strPtr("11:00")))
	})
}

func TestCheckForClashes(t *testing.T) {
	ctx := context.Background()
	tomorrow := startOfDay(testNow).AddDate(0, 0, 1)

	seedBooked := func(h *contactHarness) {
		h.contactRepo.contacts[1] = &models.Contact{
			ID:         1,
			OffenderID: h.offender.ID,
			Type:       appointmentType(),
			Date:       tomorrow,
			StartTime:  strPtr("10:00"),
			EndTime:    strPtr("11:00"),
		}
	}

	t.Run("overlap returns conflict naming the clashing contacts", func(t *testing.T) {
		h := newContactHarness()
		seedBooked(h)
		cc := &ContactContext{Offender: h.offender, Type: appointmentType()}

		err := h.validation.CheckForClashes(ctx, cc, tomorrow, strPtr("10:30"), strPtr("11:30"), nil)

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Contains(t, err.Error(), "'1'")
	})

	t.Run("back to back appointments do not clash", func(t *testing.T) {
		h := newContactHarness()
		seedBooked(h)
		cc := &ContactContext{Offender: h.offender, Type: appointmentType()}

		assert.NoError(t, h.validation.CheckForClashes(ctx, cc, tomorrow, strPtr("11:00"), strPtr("12:00"), nil))
		assert.NoError(t, h.validation.CheckForClashes(ctx, cc, tomorrow, strPtr("09:00"), strPtr("10:00"), nil))
	})

	t.Run("past appointments are not clash checked", func(t *testing.T) {
		h := newContactHarness()
		yesterday := startOfDay(testNow).AddDate(0, 0, -1)
		h.contactRepo.contacts[1] = &models.Contact{
			ID:         1,
			OffenderID: h.offender.ID,
			Type:       appointmentType(),
			Date:       yesterday,
			StartTime:  strPtr("10:00"),
			EndTime:    strPtr("11:00"),
		}
		cc := &ContactContext{Offender: h.offender, Type: appointmentType()}

		assert.NoError(t, h.validation.CheckForClashes(ctx, cc, yesterday, strPtr("10:00"), strPtr("11:00"), nil))
	})

	t.Run("a contact never clashes with itself", func(t *testing.T) {
		h := newContactHarness()
		seedBooked(h)
		cc := &ContactContext{Offender: h.offender, Type: appointmentType()}

		assert.NoError(t, h.validation.CheckForClashes(ctx, cc, tomorrow, strPtr("10:00"), strPtr("11:00"), uintPtr(1)))
	})

	t.Run("non-attendance contacts never clash", func(t *testing.T) {
		h := newContactHarness()
		seedBooked(h)
		cc := &ContactContext{Offender: h.offender, Type: &models.ContactType{Code: "CTOB"}}

		assert.NoError(t, h.validation.CheckForClashes(ctx, cc, tomorrow, strPtr("10:00"), strPtr("11:00"), nil))
	})
}

func TestApplyOutcomeMeta(t *testing.T) {
	h := newContactHarness()
	apptType := appointmentType()

	t.Run("attended and complied credits hours from the duration", func(t *testing.T) {
		contact := &models.Contact{StartTime: strPtr("10:00"), EndTime: strPtr("11:30")}
		outcome := apptType.FindOutcome("ATTC")
		cc := &ContactContext{Type: apptType, Outcome: outcome}

		h.validation.ApplyOutcomeMeta(contact, cc)

		require.NotNil(t, contact.Attended)
		assert.True(t, *contact.Attended)
		require.NotNil(t, contact.HoursCredited)
		assert.InDelta(t, 1.5, *contact.HoursCredited, 0.001)
	})

	t.Run("attended without compliance credits no hours", func(t *testing.T) {
		contact := &models.Contact{StartTime: strPtr("10:00"), EndTime: strPtr("11:30")}
		cc := &ContactContext{Type: apptType, Outcome: apptType.FindOutcome("AFTC")}

		h.validation.ApplyOutcomeMeta(contact, cc)

		require.NotNil(t, contact.Attended)
		assert.True(t, *contact.Attended)
		assert.Nil(t, contact.HoursCredited)
	})

	t.Run("absence credits no hours", func(t *testing.T) {
		contact := &models.Contact{StartTime: strPtr("10:00"), EndTime: strPtr("11:30")}
		cc := &ContactContext{Type: apptType, Outcome: apptType.FindOutcome("AACB")}

		h.validation.ApplyOutcomeMeta(contact, cc)

		assert.Nil(t, contact.HoursCredited)
		require.NotNil(t, contact.Attended)
		assert.False(t, *contact.Attended)
	})

	t.Run("clearing the outcome clears the derived fields", func(t *testing.T) {
		contact := &models.Contact{OutcomeID: uintPtr(1), Attended: boolPtr(true), HoursCredited: new(float64)}
		cc := &ContactContext{Type: apptType}

		h.validation.ApplyOutcomeMeta(contact, cc)

		assert.Nil(t, contact.OutcomeID)
		assert.Nil(t, contact.Attended)
		assert.Nil(t, contact.Complied)
		assert.Nil(t, contact.HoursCredited)
	})
}
