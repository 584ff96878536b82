package services

import (
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/core/domain"

	"go.uber.org/zap"
)

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
func uintPtr(v uint) *uint       { return &v }
func int64Ptr(v int64) *int64    { return &v }

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func rarCategory() *models.RequirementTypeCategory {
	return &models.RequirementTypeCategory{ID: 1, Code: models.RarRequirementTypeCategoryCode, Description: "RAR"}
}

func testOutcomes() []models.ContactOutcomeType {
	return []models.ContactOutcomeType{
		{ID: 1, Code: "ATTC", Description: "Attended - Complied", Attendance: boolPtr(true), CompliantAcceptable: boolPtr(true)},
		{ID: 2, Code: "AFTC", Description: "Attended - Failed to Comply", Attendance: boolPtr(true), CompliantAcceptable: boolPtr(false), ActionRequired: true, Enforceable: boolPtr(true)},
		{ID: 3, Code: "AACB", Description: "Acceptable Absence", Attendance: boolPtr(false), CompliantAcceptable: boolPtr(true)},
		{ID: 4, Code: "UAAB", Description: "Unacceptable Absence", Attendance: boolPtr(false), CompliantAcceptable: boolPtr(false), ActionRequired: true, Enforceable: boolPtr(true)},
	}
}

// appointmentType is a selectable national-standards appointment type that
// accepts every test outcome.
func appointmentType() *models.ContactType {
	return &models.ContactType{
		ID:                       1,
		Code:                     "APAT",
		Description:              "Planned Office Visit (NS)",
		Selectable:               true,
		OutcomeFlag:              models.Required,
		LocationFlag:             models.Optional,
		AttendanceContact:        true,
		NationalStandardsContact: true,
		RecordedHoursCredited:    true,
		RarActivity:              true,
		Editable:                 true,
		OffenderLevel:            true,
		CjaOrderLevel:            true,
		WholeOrderLevel:          true,
		DefaultHeadings:          strPtr("Purpose of contact"),
		OutcomeTypes:             testOutcomes(),
		RequirementTypeCategories: []models.RequirementTypeCategory{*rarCategory()},
	}
}

func testProvider() *models.Provider {
	return &models.Provider{
		ID:          1,
		Code:        "N01",
		Description: "NPS North West",
		Teams: []models.Team{{
			ID:          1,
			ProviderID:  1,
			Code:        "N01UAT",
			Description: "Unallocated Team",
			Staff: []models.Staff{
				{ID: 1, TeamID: 1, Code: "N01UATU", FirstName: "Joe", LastName: "Bloggs"},
			},
			OfficeLocations: []models.OfficeLocation{
				{ID: 1, Code: "N01OFFA", Description: "Main Office"},
			},
		}},
	}
}

// testOffender has one active CJA event carrying a RAR requirement.
func testOffender() *models.Offender {
	category := rarCategory()
	return &models.Offender{
		ID:        1,
		CRN:       "X123456",
		FirstName: "Sam",
		LastName:  "Smith",
		Events: []models.Event{{
			ID:         1,
			OffenderID: 1,
			Active:     true,
			Disposals: []models.Disposal{{
				ID:      1,
				EventID: 1,
				TypeID:  1,
				Type: &models.DisposalType{
					ID:                   1,
					Code:                 "307",
					Description:          "ORA Community Order",
					SentenceType:         strPtr("SC"),
					FailureToComplyLimit: int64Ptr(2),
					Cja2003Order:         true,
				},
				Requirements: []models.Requirement{{
					ID:             1,
					DisposalID:     1,
					OffenderID:     1,
					Active:         true,
					TypeCategoryID: uintPtr(category.ID),
					TypeCategory:   category,
				}},
			}},
		}},
	}
}

// contactHarness wires the full service graph over the fakes.
type contactHarness struct {
	contactRepo *fakeContactRepo
	eventRepo   *fakeEventRepo
	nsiRepo     *fakeNsiRepo
	refRepo     *fakeReferenceRepo
	offRepo     *fakeOffenderRepo
	auditRepo   *fakeAuditRepo

	validation  *ContactValidationService
	enforcement *EnforcementService
	breach      *BreachService
	rar         *RarService
	system      *SystemContactService
	service     *ContactService

	offender *models.Offender
}

func newContactHarness() *contactHarness {
	h := &contactHarness{
		contactRepo: newFakeContactRepo(),
		eventRepo:   &fakeEventRepo{},
		nsiRepo:     newFakeNsiRepo(),
		refRepo:     newFakeReferenceRepo(),
		offRepo:     &fakeOffenderRepo{offenders: map[string]*models.Offender{}},
		auditRepo:   &fakeAuditRepo{},
	}
	logger := testLogger()

	h.offender = testOffender()
	h.offRepo.offenders[h.offender.CRN] = h.offender
	apptType := appointmentType()
	h.refRepo.contactTypes[apptType.Code] = apptType
	h.refRepo.providers["N01"] = testProvider()

	h.validation = NewContactValidationService(h.offRepo, h.refRepo, h.nsiRepo, h.contactRepo, logger)
	h.validation.now = func() time.Time { return testNow }
	h.system = NewSystemContactService(h.contactRepo, h.refRepo, logger)
	h.system.now = func() time.Time { return testNow }
	h.breach = NewBreachService(h.contactRepo, h.eventRepo, logger)
	h.enforcement = NewEnforcementService(h.contactRepo, h.eventRepo, h.system, h.breach, logger)
	h.enforcement.now = func() time.Time { return testNow }
	h.rar = NewRarService(h.contactRepo, h.eventRepo, h.nsiRepo, logger)
	audit := NewAuditService(h.auditRepo, logger)
	h.service = NewContactService(fakeTx{}, h.contactRepo, h.validation, h.enforcement, h.breach, h.rar, audit, logger)
	h.service.now = func() time.Time { return testNow }
	return h
}

// newAppointment builds a valid create request against the test offender's
// event and RAR requirement, dated yesterday with an attended outcome.
func (h *contactHarness) newAppointment() *domain.NewContact {
	return &domain.NewContact{
		OffenderCrn:   h.offender.CRN,
		EventID:       uintPtr(1),
		RequirementID: uintPtr(1),
		Type:          "APAT",
		Outcome:       strPtr("ATTC"),
		Date:          testNow.AddDate(0, 0, -1),
		StartTime:     strPtr("10:00"),
		EndTime:       strPtr("11:00"),
		RarActivity:   boolPtr(true),
		Manager:       domain.ContactManager{Provider: "N01", Team: "N01UAT", Staff: "N01UATU"},
	}
}
