package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// NSI Tables - legacy Delius schema, never migrated
// ============================================================

// NsiType describes a non-statutory intervention type and the levels (offender,
// event) it may be created at.
type NsiType struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Code          string `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description   string `gorm:"size:200;not null" json:"description"`
	Selectable    bool   `gorm:"default:true" json:"selectable"`
	OffenderLevel bool   `json:"offender_level"`
	EventLevel    bool   `json:"event_level"`
	AllowsLength  bool   `json:"allows_length"`
	UnitsCode     *string `gorm:"size:10" json:"units_code"`

	SubTypes []NsiSubType `gorm:"foreignKey:NsiTypeID" json:"sub_types,omitempty"`
	Statuses []NsiStatus  `gorm:"many2many:r_nsi_type_status" json:"statuses,omitempty"`
}

func (NsiType) TableName() string {
	return "r_nsi_type"
}

// FindSubType returns the sub-type with the given code, or nil.
func (t *NsiType) FindSubType(code string) *NsiSubType {
	for i := range t.SubTypes {
		if t.SubTypes[i].Code == code {
			return &t.SubTypes[i]
		}
	}
	return nil
}

// FindStatus returns the permitted status with the given code, or nil.
func (t *NsiType) FindStatus(code string) *NsiStatus {
	for i := range t.Statuses {
		if t.Statuses[i].Code == code {
			return &t.Statuses[i]
		}
	}
	return nil
}

// NsiSubType refines an NSI type.
type NsiSubType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	NsiTypeID   uint   `gorm:"not null;index" json:"nsi_type_id"`
	Code        string `gorm:"size:10;not null" json:"code"`
	Description string `gorm:"size:200;not null" json:"description"`
	Selectable  bool   `gorm:"default:true" json:"selectable"`
}

func (NsiSubType) TableName() string {
	return "r_nsi_sub_type"
}

// NsiStatus is a lifecycle state of an NSI. A status may carry the system contact
// type that is recorded when the NSI enters it.
type NsiStatus struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Code          string       `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description   string       `gorm:"size:200;not null" json:"description"`
	ContactTypeID *uint        `json:"contact_type_id"`
	ContactType   *ContactType `gorm:"foreignKey:ContactTypeID" json:"contact_type,omitempty"`
}

func (NsiStatus) TableName() string {
	return "r_nsi_status"
}

// NsiOutcome is a reference outcome recorded when an NSI terminates.
type NsiOutcome struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:200;not null" json:"description"`
}

func (NsiOutcome) TableName() string {
	return "r_nsi_outcome"
}

// Nsi represents the nsi table: a non-statutory intervention against an offender,
// optionally scoped to an event and a requirement.
type Nsi struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	OffenderID    uint  `gorm:"not null;index" json:"offender_id"`
	EventID       *uint `gorm:"index" json:"event_id"`
	RequirementID *uint `gorm:"index" json:"requirement_id"`
	TypeID        uint  `gorm:"not null" json:"type_id"`
	SubTypeID     *uint `json:"sub_type_id"`
	StatusID      uint  `gorm:"not null" json:"status_id"`
	OutcomeID     *uint `json:"outcome_id"`

	ReferralDate      time.Time  `gorm:"type:date;not null" json:"referral_date"`
	ExpectedStartDate *time.Time `gorm:"type:date" json:"expected_start_date"`
	ExpectedEndDate   *time.Time `gorm:"type:date" json:"expected_end_date"`
	ActualStartDate   *time.Time `gorm:"type:date" json:"actual_start_date"`
	ActualEndDate     *time.Time `gorm:"type:date" json:"actual_end_date"`
	StatusDate        time.Time  `gorm:"not null" json:"status_date"`
	Length            *int64     `json:"length"`
	Notes             *string    `gorm:"type:text" json:"notes"`
	Active            bool       `gorm:"default:true" json:"active"`
	RarCount          *int64     `json:"rar_count"`

	IntendedProviderID *uint `json:"intended_provider_id"`

	CreatedByUserID   uint           `json:"created_by_user_id"`
	LastUpdatedUserID uint           `json:"last_updated_user_id"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Offender         *Offender    `gorm:"foreignKey:OffenderID" json:"offender,omitempty"`
	Event            *Event       `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Requirement      *Requirement `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
	Type             *NsiType     `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	SubType          *NsiSubType  `gorm:"foreignKey:SubTypeID" json:"sub_type,omitempty"`
	Status           *NsiStatus   `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Outcome          *NsiOutcome  `gorm:"foreignKey:OutcomeID" json:"outcome,omitempty"`
	IntendedProvider *Provider    `gorm:"foreignKey:IntendedProviderID" json:"intended_provider,omitempty"`
	Managers         []NsiManager `gorm:"foreignKey:NsiID" json:"managers,omitempty"`
}

func (Nsi) TableName() string {
	return "nsi"
}

// Manager returns the current (latest started) manager, or nil.
func (n *Nsi) Manager() *NsiManager {
	var current *NsiManager
	for i := range n.Managers {
		m := &n.Managers[i]
		if current == nil || m.StartDate.After(current.StartDate) {
			current = m
		}
	}
	return current
}

// IsRarNsi reports whether the NSI is attached to a rehabilitation activity
// requirement, making its contacts eligible for RAR counting.
func (n *Nsi) IsRarNsi() bool {
	return n.Requirement != nil && n.Requirement.IsRehabilitationActivityRequirement()
}

// NsiManager assigns a provider/team/staff to manage an NSI from a start date.
type NsiManager struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NsiID      uint      `gorm:"not null;index" json:"nsi_id"`
	ProviderID uint      `gorm:"not null" json:"provider_id"`
	TeamID     uint      `gorm:"not null" json:"team_id"`
	StaffID    uint      `gorm:"not null" json:"staff_id"`
	StartDate  time.Time `gorm:"type:date;not null" json:"start_date"`

	Provider *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Team     *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Staff    *Staff    `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

func (NsiManager) TableName() string {
	return "nsi_manager"
}

// NsiResponse DTO
type NsiResponse struct {
	ID                uint    `json:"id"`
	OffenderCrn       string  `json:"offender_crn"`
	EventID           *uint   `json:"event_id,omitempty"`
	RequirementID     *uint   `json:"requirement_id,omitempty"`
	Type              string  `json:"type"`
	TypeDescription   string  `json:"type_description"`
	SubType           *string `json:"sub_type,omitempty"`
	Status            string  `json:"status"`
	StatusDate        string  `json:"status_date"`
	Outcome           *string `json:"outcome,omitempty"`
	ReferralDate      string  `json:"referral_date"`
	ExpectedStartDate *string `json:"expected_start_date,omitempty"`
	ExpectedEndDate   *string `json:"expected_end_date,omitempty"`
	StartDate         *string `json:"start_date,omitempty"`
	EndDate           *string `json:"end_date,omitempty"`
	Length            *int64  `json:"length,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	IntendedProvider  *string `json:"intended_provider,omitempty"`
	Active            bool    `json:"active"`
	RarCount          *int64  `json:"rar_count,omitempty"`
	Manager           *NsiManagerResponse `json:"manager,omitempty"`
}

// NsiManagerResponse DTO
type NsiManagerResponse struct {
	Provider string `json:"provider"`
	Team     string `json:"team"`
	Staff    string `json:"staff"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func (n *Nsi) ToResponse() *NsiResponse {
	resp := &NsiResponse{
		ID:                n.ID,
		EventID:           n.EventID,
		RequirementID:     n.RequirementID,
		StatusDate:        n.StatusDate.Format(time.RFC3339),
		ReferralDate:      n.ReferralDate.Format("2006-01-02"),
		ExpectedStartDate: formatDate(n.ExpectedStartDate),
		ExpectedEndDate:   formatDate(n.ExpectedEndDate),
		StartDate:         formatDate(n.ActualStartDate),
		EndDate:           formatDate(n.ActualEndDate),
		Length:            n.Length,
		Notes:             n.Notes,
		Active:            n.Active,
		RarCount:          n.RarCount,
	}

	if n.Offender != nil {
		resp.OffenderCrn = n.Offender.CRN
	}
	if n.Type != nil {
		resp.Type = n.Type.Code
		resp.TypeDescription = n.Type.Description
	}
	if n.SubType != nil {
		resp.SubType = &n.SubType.Code
	}
	if n.Status != nil {
		resp.Status = n.Status.Code
	}
	if n.Outcome != nil {
		resp.Outcome = &n.Outcome.Code
	}
	if n.IntendedProvider != nil {
		resp.IntendedProvider = &n.IntendedProvider.Code
	}
	if m := n.Manager(); m != nil && m.Provider != nil && m.Team != nil && m.Staff != nil {
		resp.Manager = &NsiManagerResponse{
			Provider: m.Provider.Code,
			Team:     m.Team.Code,
			Staff:    m.Staff.Code,
		}
	}

	return resp
}
