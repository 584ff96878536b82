package config

import (
	"log"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Reference tables belong to the legacy schema and
// are only populated here for development; in production they already exist.
func (s *Seeder) Run(devMode bool) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if devMode {
		if err := s.seedReferenceData(); err != nil {
			return err
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:      "admin",
		Email:         "admin@delius.local",
		Password:      hashedPassword,
		Role:          "ADMIN",
		ProviderCodes: "N01",
		IsActive:      true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedReferenceData populates a minimal but coherent set of reference rows so
// a fresh development database can exercise every endpoint.
func (s *Seeder) seedReferenceData() error {
	var count int64
	s.db.Model(&models.ContactType{}).Count(&count)
	if count > 0 {
		return nil // Reference data already present
	}

	log.Println("🌱 Seeding development reference data...")

	boolPtr := func(b bool) *bool { return &b }
	int64Ptr := func(n int64) *int64 { return &n }
	strPtr := func(v string) *string { return &v }

	// Outcome types first; contact types reference them through the join table.
	outcomes := []models.ContactOutcomeType{
		{Code: "ATTC", Description: "Attended - Complied", Attendance: boolPtr(true), CompliantAcceptable: boolPtr(true)},
		{Code: "AFTC", Description: "Attended - Failed to Comply", Attendance: boolPtr(true), CompliantAcceptable: boolPtr(false), ActionRequired: true, Enforceable: boolPtr(true)},
		{Code: "AACB", Description: "Acceptable Absence - Childcare", Attendance: boolPtr(false), CompliantAcceptable: boolPtr(true)},
		{Code: "UAAB", Description: "Unacceptable Absence", Attendance: boolPtr(false), CompliantAcceptable: boolPtr(false), ActionRequired: true, Enforceable: boolPtr(true)},
	}
	if err := s.db.Create(&outcomes).Error; err != nil {
		return err
	}

	category := models.RequirementTypeCategory{
		Code:        models.RarRequirementTypeCategoryCode,
		Description: "Rehabilitation Activity Requirement (RAR)",
	}
	if err := s.db.Create(&category).Error; err != nil {
		return err
	}

	// Appointment types a practitioner can book, plus the system-generated
	// types the services raise behind the scenes.
	contactTypes := []models.ContactType{
		{
			Code: "APAT", Description: "Planned Office Visit (NS)",
			OutcomeFlag: models.Required, LocationFlag: models.Required,
			AttendanceContact: true, NationalStandardsContact: true,
			RecordedHoursCredited: true, RarActivity: true,
			CjaOrderLevel: true, WholeOrderLevel: true, OffenderLevel: true,
			OutcomeTypes:              outcomes,
			RequirementTypeCategories: []models.RequirementTypeCategory{category},
			DefaultHeadings:           strPtr("Purpose of contact"),
		},
		{
			Code: "CRSAPT", Description: "Commissioned Rehabilitation Services Appointment",
			OutcomeFlag: models.Required, LocationFlag: models.Optional,
			AttendanceContact: true, NationalStandardsContact: true, RarActivity: true,
			CjaOrderLevel: true, WholeOrderLevel: true, OffenderLevel: true,
			OutcomeTypes:              outcomes,
			RequirementTypeCategories: []models.RequirementTypeCategory{category},
		},
		{
			Code: "CTOB", Description: "Phone Contact to Offender",
			OutcomeFlag: models.Optional, LocationFlag: models.NotAllowed,
			OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true,
		},
		{Code: "AIBR", Description: "Breach Process Commenced", Selectable: false, SystemGenerated: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "AIBE", Description: "Breach Concluded", Selectable: false, SystemGenerated: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "AIPR", Description: "Recalled to Prison", Selectable: false, SystemGenerated: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "APSS", Description: "Start of Post Sentence Supervision", Selectable: false, SystemGenerated: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "ARWS", Description: "Review Enforcement Status", Selectable: false, SystemGenerated: true, AlertFlag: true, OutcomeFlag: models.Optional, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "EREL", Description: "Released from Custody", Selectable: false, SystemGenerated: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "NCON", Description: "NSI Commenced", Selectable: false, SystemGenerated: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
		{Code: "AWLI", Description: "Enforcement Letter Requested", Selectable: false, SystemGenerated: true, AlertFlag: true, OutcomeFlag: models.NotAllowed, LocationFlag: models.NotAllowed, OffenderLevel: true, CjaOrderLevel: true, WholeOrderLevel: true},
	}
	if err := s.db.Create(&contactTypes).Error; err != nil {
		return err
	}

	var letterType models.ContactType
	if err := s.db.Where("code = ?", "AWLI").First(&letterType).Error; err != nil {
		return err
	}
	actions := []models.EnforcementAction{
		{Code: "WLS", Description: "Warning Letter Sent", ResponseByPeriod: int64Ptr(7), ContactTypeID: &letterType.ID},
		{Code: "ROM", Description: "Refer to Offender Manager", ResponseByPeriod: int64Ptr(1), ContactTypeID: &letterType.ID},
	}
	if err := s.db.Create(&actions).Error; err != nil {
		return err
	}

	disposalTypes := []models.DisposalType{
		{Code: "307", Description: "ORA Community Order", SentenceType: strPtr("SC"), FailureToComplyLimit: int64Ptr(2), Cja2003Order: true},
		{Code: "329", Description: "ORA Suspended Sentence Order", SentenceType: strPtr("SC"), FailureToComplyLimit: int64Ptr(1), Cja2003Order: true},
	}
	if err := s.db.Create(&disposalTypes).Error; err != nil {
		return err
	}

	provider := models.Provider{
		Code: "N01", Description: "NPS North West",
		Teams: []models.Team{{
			Code: "N01UAT", Description: "Unallocated Team",
			Staff: []models.Staff{
				{Code: "N01UATU", FirstName: "Unallocated", LastName: "Staff"},
				{Code: "N01P001", FirstName: "Joe", LastName: "Bloggs"},
			},
			OfficeLocations: []models.OfficeLocation{
				{Code: "N01OFFA", Description: "Main Probation Office"},
			},
		}},
	}
	if err := s.db.Create(&provider).Error; err != nil {
		return err
	}

	var statusContact models.ContactType
	if err := s.db.Where("code = ?", "NCON").First(&statusContact).Error; err != nil {
		return err
	}
	nsiStatuses := []models.NsiStatus{
		{Code: "INPROG", Description: "In Progress", ContactTypeID: &statusContact.ID},
		{Code: "COMP", Description: "Completed", ContactTypeID: &statusContact.ID},
	}
	if err := s.db.Create(&nsiStatuses).Error; err != nil {
		return err
	}

	nsiTypes := []models.NsiType{
		{
			Code: "BRE", Description: "Breach Request", EventLevel: true,
			SubTypes: []models.NsiSubType{
				{Code: "BRE01", Description: "Breach Requested - Community Order"},
			},
			Statuses: nsiStatuses,
		},
		{
			Code: "KSS021", Description: "RAR Activity", EventLevel: true, AllowsLength: true,
			Statuses: nsiStatuses,
		},
	}
	if err := s.db.Create(&nsiTypes).Error; err != nil {
		return err
	}

	nsiOutcomes := []models.NsiOutcome{
		{Code: "COMP", Description: "Completed Successfully"},
		{Code: "WDN", Description: "Withdrawn"},
	}
	if err := s.db.Create(&nsiOutcomes).Error; err != nil {
		return err
	}

	log.Println("✅ Development reference data seeded")
	return nil
}
