package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ContactManager addresses the provider/team/staff recording a contact.
type ContactManager struct {
	Provider string `json:"provider" validate:"required"`
	Team     string `json:"team" validate:"required"`
	Staff    string `json:"staff" validate:"required"`
}

// NewContact is the command to create a contact.
type NewContact struct {
	OffenderCrn    string         `json:"offender_crn" validate:"required"`
	NsiID          *uint          `json:"nsi_id"`
	EventID        *uint          `json:"event_id"`
	RequirementID  *uint          `json:"requirement_id"`
	Type           string         `json:"type" validate:"required"`
	Outcome        *string        `json:"outcome"`
	Enforcement    *string        `json:"enforcement"`
	Date           time.Time      `json:"date" validate:"required"`
	StartTime      *string        `json:"start_time"`
	EndTime        *string        `json:"end_time"`
	Alert          *bool          `json:"alert"`
	Sensitive      *bool          `json:"sensitive"`
	RarActivity    *bool          `json:"rar_activity"`
	Notes          *string        `json:"notes"`
	Description    *string        `json:"description"`
	OfficeLocation *string        `json:"office_location"`
	Manager        ContactManager `json:"manager" validate:"required"`
}

// UpdateContact is the command to update an existing contact. The addressed
// contact keeps its type; everything else may change.
type UpdateContact struct {
	Outcome        *string    `json:"outcome"`
	Enforcement    *string    `json:"enforcement"`
	Date           *time.Time `json:"date"`
	StartTime      *string    `json:"start_time"`
	EndTime        *string    `json:"end_time"`
	Alert          *bool      `json:"alert"`
	Sensitive      *bool      `json:"sensitive"`
	RarActivity    *bool      `json:"rar_activity"`
	Notes          *string    `json:"notes"`
	Description    *string    `json:"description"`
	OfficeLocation *string    `json:"office_location"`
}

// ReplaceContact is the command to terminate a contact with an outcome and
// re-book it at a new date and time. The identifiers address the contact the
// caller believes they are replacing; any supplied identifier that disagrees
// with the stored contact is rejected.
type ReplaceContact struct {
	OffenderCrn    string    `json:"offender_crn" validate:"required"`
	EventID        *uint     `json:"event_id"`
	RequirementID  *uint     `json:"requirement_id"`
	NsiID          *uint     `json:"nsi_id"`
	Outcome        string    `json:"outcome" validate:"required"`
	OfficeLocation *string   `json:"office_location"`
	Date           time.Time `json:"date" validate:"required"`
	StartTime      string    `json:"start_time" validate:"required"`
	EndTime        string    `json:"end_time" validate:"required"`
}

// NewNsi is the command to create a non-statutory intervention.
type NewNsi struct {
	Type              string          `json:"type" validate:"required"`
	SubType           *string         `json:"sub_type"`
	OffenderCrn       string          `json:"offender_crn" validate:"required"`
	EventID           *uint           `json:"event_id"`
	RequirementID     *uint           `json:"requirement_id"`
	ReferralDate      time.Time       `json:"referral_date" validate:"required"`
	ExpectedStartDate *time.Time      `json:"expected_start_date"`
	ExpectedEndDate   *time.Time      `json:"expected_end_date"`
	StartDate         *time.Time      `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	Length            *int64          `json:"length"`
	Status            string          `json:"status" validate:"required"`
	StatusDate        *time.Time      `json:"status_date"`
	Outcome           *string         `json:"outcome"`
	Notes             *string         `json:"notes"`
	IntendedProvider  *string         `json:"intended_provider"`
	Manager           *ContactManager `json:"manager"`
}
