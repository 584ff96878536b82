package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/optimisticlock"
)

// TimeOfDay layout used for contact start/end times ("HH:MM", zero padded so the
// values also compare correctly as strings in SQL).
const TimeOfDayLayout = "15:04"

// ParseTimeOfDay parses an "HH:MM" wall-clock value.
func ParseTimeOfDay(value string) (time.Time, error) {
	return time.Parse(TimeOfDayLayout, value)
}

// ContactNotesSeparator joins appended note sections. Notes are append-only.
const ContactNotesSeparator = "\n\n---------\n\n"

// ============================================================
// Contact & Enforcement - legacy Delius schema, never migrated
// ============================================================

// Contact represents the contact table: an appointment or interaction between an
// offender and probation staff. A contact links to at most one of
// {requirement, NSI, event} as its primary context.
type Contact struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	OffenderID uint  `gorm:"not null;index" json:"offender_id"`
	NsiID      *uint `gorm:"index" json:"nsi_id"`
	EventID    *uint `gorm:"index" json:"event_id"`

	RequirementID    *uint `gorm:"index" json:"requirement_id"`
	TypeID           uint  `gorm:"not null" json:"type_id"`
	OutcomeID        *uint `json:"outcome_id"`
	ProviderID       uint  `gorm:"not null" json:"provider_id"`
	TeamID           uint  `gorm:"not null" json:"team_id"`
	StaffID          uint  `gorm:"not null" json:"staff_id"`
	OfficeLocationID *uint `json:"office_location_id"`

	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime   *string   `gorm:"size:5" json:"start_time"`
	EndTime     *string   `gorm:"size:5" json:"end_time"`
	Alert       bool      `json:"alert"`
	Sensitive   bool      `json:"sensitive"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	Description *string   `gorm:"size:200" json:"description"`

	// Derived outcome meta
	RarActivity   *bool    `json:"rar_activity"`
	Attended      *bool    `json:"attended"`
	Complied      *bool    `json:"complied"`
	HoursCredited *float64 `gorm:"type:decimal(10,2)" json:"hours_credited"`

	// System-generated contacts chain back to the contact that triggered them.
	LinkedContactID *uint `gorm:"index" json:"linked_contact_id"`

	RowVersion        optimisticlock.Version `json:"row_version"`
	CreatedByUserID   uint                   `json:"created_by_user_id"`
	LastUpdatedUserID uint                   `json:"last_updated_user_id"`
	CreatedAt         time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt         `gorm:"index" json:"-"`

	// Relations
	Offender       *Offender           `gorm:"foreignKey:OffenderID" json:"offender,omitempty"`
	Nsi            *Nsi                `gorm:"foreignKey:NsiID" json:"nsi,omitempty"`
	Event          *Event              `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Requirement    *Requirement        `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
	Type           *ContactType        `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	Outcome        *ContactOutcomeType `gorm:"foreignKey:OutcomeID" json:"outcome,omitempty"`
	Provider       *Provider           `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Team           *Team               `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Staff          *Staff              `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	OfficeLocation *OfficeLocation     `gorm:"foreignKey:OfficeLocationID" json:"office_location,omitempty"`
	Enforcement    *Enforcement        `gorm:"foreignKey:ContactID" json:"enforcement,omitempty"`
}

func (Contact) TableName() string {
	return "contact"
}

// Duration returns the contact duration, or zero when either time is missing.
func (c *Contact) Duration() time.Duration {
	if c.StartTime == nil || c.EndTime == nil {
		return 0
	}
	start, err := ParseTimeOfDay(*c.StartTime)
	if err != nil {
		return 0
	}
	end, err := ParseTimeOfDay(*c.EndTime)
	if err != nil {
		return 0
	}
	return end.Sub(start)
}

// StartDateTime combines the contact date with its start time (midnight when the
// contact has no start time).
func (c *Contact) StartDateTime() time.Time {
	d := c.Date
	if c.StartTime != nil {
		if t, err := ParseTimeOfDay(*c.StartTime); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// AppendNotes appends note sections; existing notes are never replaced or removed.
func (c *Contact) AppendNotes(sections ...*string) {
	joined := ""
	if c.Notes != nil {
		joined = *c.Notes
	}
	for _, s := range sections {
		if s == nil || *s == "" {
			continue
		}
		if joined == "" {
			joined = *s
		} else {
			joined += ContactNotesSeparator + *s
		}
	}
	if joined != "" {
		c.Notes = &joined
	}
}

// ContactResponse DTO
type ContactResponse struct {
	ID                         uint     `json:"id"`
	OffenderCrn                string   `json:"offender_crn"`
	NsiID                      *uint    `json:"nsi_id,omitempty"`
	EventID                    *uint    `json:"event_id,omitempty"`
	RequirementID              *uint    `json:"requirement_id,omitempty"`
	Type                       string   `json:"type"`
	TypeDescription            string   `json:"type_description"`
	Outcome                    *string  `json:"outcome,omitempty"`
	OutcomeDescription         *string  `json:"outcome_description,omitempty"`
	Enforcement                *string  `json:"enforcement,omitempty"`
	EnforcementDescription     *string  `json:"enforcement_description,omitempty"`
	Provider                   string   `json:"provider"`
	ProviderDescription        string   `json:"provider_description"`
	Team                       string   `json:"team"`
	TeamDescription            string   `json:"team_description"`
	Staff                      string   `json:"staff"`
	StaffFirstName             string   `json:"staff_first_name"`
	StaffLastName              string   `json:"staff_last_name"`
	OfficeLocation             *string  `json:"office_location,omitempty"`
	OfficeLocationDescription  *string  `json:"office_location_description,omitempty"`
	Date                       string   `json:"date"`
	StartTime                  *string  `json:"start_time,omitempty"`
	EndTime                    *string  `json:"end_time,omitempty"`
	Alert                      bool     `json:"alert"`
	Sensitive                  bool     `json:"sensitive"`
	Notes                      *string  `json:"notes,omitempty"`
	Description                *string  `json:"description,omitempty"`
	RarActivity                *bool    `json:"rar_activity,omitempty"`
	HoursCredited              *float64 `json:"hours_credited,omitempty"`
}

func (c *Contact) ToResponse() *ContactResponse {
	resp := &ContactResponse{
		ID:            c.ID,
		NsiID:         c.NsiID,
		EventID:       c.EventID,
		RequirementID: c.RequirementID,
		Date:          c.Date.Format("2006-01-02"),
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
		Alert:         c.Alert,
		Sensitive:     c.Sensitive,
		Notes:         c.Notes,
		Description:   c.Description,
		RarActivity:   c.RarActivity,
		HoursCredited: c.HoursCredited,
	}

	if c.Offender != nil {
		resp.OffenderCrn = c.Offender.CRN
	}
	if c.Type != nil {
		resp.Type = c.Type.Code
		resp.TypeDescription = c.Type.Description
	}
	if c.Outcome != nil {
		resp.Outcome = &c.Outcome.Code
		resp.OutcomeDescription = &c.Outcome.Description
	}
	if c.Enforcement != nil && c.Enforcement.Action != nil {
		resp.Enforcement = &c.Enforcement.Action.Code
		resp.EnforcementDescription = &c.Enforcement.Action.Description
	}
	if c.Provider != nil {
		resp.Provider = c.Provider.Code
		resp.ProviderDescription = c.Provider.Description
	}
	if c.Team != nil {
		resp.Team = c.Team.Code
		resp.TeamDescription = c.Team.Description
	}
	if c.Staff != nil {
		resp.Staff = c.Staff.Code
		resp.StaffFirstName = c.Staff.FirstName
		resp.StaffLastName = c.Staff.LastName
	}
	if c.OfficeLocation != nil {
		resp.OfficeLocation = &c.OfficeLocation.Code
		resp.OfficeLocationDescription = &c.OfficeLocation.Description
	}

	return resp
}

// Enforcement is attached to a contact whose outcome is non-compliant and enforceable.
type Enforcement struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	ContactID       uint               `gorm:"not null;uniqueIndex" json:"contact_id"`
	ActionID        *uint              `json:"action_id"`
	Action          *EnforcementAction `gorm:"foreignKey:ActionID" json:"action,omitempty"`
	ResponseDate    *time.Time         `gorm:"type:date" json:"response_date"`
	ActionTakenDate time.Time          `gorm:"type:date;not null" json:"action_taken_date"`
	ActionTakenTime string             `gorm:"size:5;not null" json:"action_taken_time"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (Enforcement) TableName() string {
	return "enforcement"
}

// ============================================================
// Audit Table (owned by this API)
// ============================================================

// AuditedInteraction records one use-case invocation; written outside the use-case
// transaction so failure records survive rollback.
type AuditedInteraction struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Interaction string    `gorm:"size:50;not null;index" json:"interaction"`
	Success     bool      `json:"success"`
	UserID      uint      `json:"user_id"`
	OffenderID  *uint     `json:"offender_id"`
	ContactID   *uint     `json:"contact_id"`
	NsiID       *uint     `json:"nsi_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditedInteraction) TableName() string {
	return "audited_interactions"
}

// AutoMigrate runs auto migration for the tables this API owns.
// Legacy Delius tables (contact, event, rqmnt, nsi, reference data, ...) are
// mapped but must never be migrated from here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&AuditedInteraction{},
	)
}
