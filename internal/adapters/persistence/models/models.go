package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables (owned by this API)
// ============================================================

// User represents users table - staff users of the API
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email         string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password      string         `gorm:"size:255;not null" json:"-"`
	Role          string         `gorm:"size:20;default:'USER'" json:"role"`
	ProviderCodes string         `gorm:"size:255" json:"provider_codes"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Providers returns the list of provider codes this user has authority over.
func (u *User) Providers() []string {
	return splitCodes(u.ProviderCodes)
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Providers []string  `json:"providers"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Providers: u.Providers(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Reference (Master) Tables - legacy Delius schema, never migrated
// ============================================================

// ThreeState is the outcome/location requirement mode of a contact type.
// Stored as-is; the legacy Y/N/B column values are translated on seed/import.
type ThreeState string

const (
	Required   ThreeState = "REQUIRED"
	Optional   ThreeState = "OPTIONAL"
	NotAllowed ThreeState = "NOT_ALLOWED"
)

// ContactType describes what a contact of this type permits.
type ContactType struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	Code                     string     `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description              string     `gorm:"size:200;not null" json:"description"`
	Selectable               bool       `gorm:"default:true" json:"selectable"`
	AlertFlag                bool       `json:"alert_flag"`
	OutcomeFlag              ThreeState `gorm:"size:11;not null" json:"outcome_flag"`
	LocationFlag             ThreeState `gorm:"size:11;not null" json:"location_flag"`
	AttendanceContact        bool       `json:"attendance_contact"`
	NationalStandardsContact bool       `json:"national_standards_contact"`
	RecordedHoursCredited    bool       `json:"recorded_hours_credited"`
	RarActivity              bool       `json:"rar_activity"`
	Editable                 bool       `gorm:"default:true" json:"editable"`
	OffenderLevel            bool       `json:"offender_level"`
	LegacyOrderLevel         bool       `json:"legacy_order_level"`
	CjaOrderLevel            bool       `json:"cja_order_level"`
	WholeOrderLevel          bool       `json:"whole_order_level"`
	SystemGenerated          bool       `json:"system_generated"`
	DefaultHeadings          *string    `gorm:"size:200" json:"default_headings"`

	// Relations
	OutcomeTypes              []ContactOutcomeType      `gorm:"many2many:r_contact_type_outcome" json:"outcome_types,omitempty"`
	NsiTypes                  []NsiType                 `gorm:"many2many:r_contact_type_nsi_type" json:"nsi_types,omitempty"`
	RequirementTypeCategories []RequirementTypeCategory `gorm:"many2many:r_contact_type_rqmnt_cat" json:"requirement_type_categories,omitempty"`
}

func (ContactType) TableName() string {
	return "r_contact_type"
}

// FindOutcome returns the permitted outcome type with the given code, or nil.
func (t *ContactType) FindOutcome(code string) *ContactOutcomeType {
	for i := range t.OutcomeTypes {
		if t.OutcomeTypes[i].Code == code {
			return &t.OutcomeTypes[i]
		}
	}
	return nil
}

// SupportsNsiType reports whether the type permits contacts against NSIs of the given type.
func (t *ContactType) SupportsNsiType(nsiTypeID uint) bool {
	for _, nt := range t.NsiTypes {
		if nt.ID == nsiTypeID {
			return true
		}
	}
	return false
}

// SupportsRequirementCategory reports whether the type permits contacts against
// requirements in the given category.
func (t *ContactType) SupportsRequirementCategory(categoryID uint) bool {
	for _, cat := range t.RequirementTypeCategories {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

// ContactOutcomeType describes the recorded result of a contact.
type ContactOutcomeType struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Code                string `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description         string `gorm:"size:200;not null" json:"description"`
	Selectable          bool   `gorm:"default:true" json:"selectable"`
	CompliantAcceptable *bool  `json:"compliant_acceptable"`
	Attendance          *bool  `json:"attendance"`
	ActionRequired      bool   `gorm:"not null" json:"action_required"`
	Enforceable         *bool  `json:"enforceable"`
}

func (ContactOutcomeType) TableName() string {
	return "r_contact_outcome_type"
}

// IsPermissibleAbsence reports whether the outcome records an acceptable non-attendance,
// the only kind of outcome that may be pre-recorded against a future contact date.
func (o *ContactOutcomeType) IsPermissibleAbsence() bool {
	return o.Attendance != nil && !*o.Attendance &&
		o.CompliantAcceptable != nil && *o.CompliantAcceptable
}

// EnforcementAction is a reference enforcement action, optionally linked to the
// system contact type recorded when the action is taken.
type EnforcementAction struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	Code             string       `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description      string       `gorm:"size:200;not null" json:"description"`
	ResponseByPeriod *int64       `json:"response_by_period"`
	ContactTypeID    *uint        `json:"contact_type_id"`
	ContactType      *ContactType `gorm:"foreignKey:ContactTypeID" json:"contact_type,omitempty"`
}

func (EnforcementAction) TableName() string {
	return "r_enforcement_action"
}

// RequirementTypeCategory groups requirement types; category "F" denotes the
// Rehabilitation Activity Requirement whose delivered days are counted.
type RequirementTypeCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:200;not null" json:"description"`
}

func (RequirementTypeCategory) TableName() string {
	return "r_rqmnt_type_main_category"
}

// RarRequirementTypeCategoryCode is the category code denoting a Rehabilitation
// Activity Requirement.
const RarRequirementTypeCategoryCode = "F"

// DisposalType carries the sentence classification and breach policy of a disposal.
type DisposalType struct {
	ID                   uint    `gorm:"primaryKey" json:"id"`
	Code                 string  `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description          string  `gorm:"size:200;not null" json:"description"`
	SentenceType         *string `gorm:"size:10" json:"sentence_type"`
	FailureToComplyLimit *int64  `json:"failure_to_comply_limit"`
	LegacyOrder          bool    `json:"legacy_order"`
	Cja2003Order         bool    `json:"cja2003_order"`
}

func (DisposalType) TableName() string {
	return "r_disposal_type"
}

// ============================================================
// Provider / Team / Staff / Office Location
// ============================================================

// Provider represents a probation area
type Provider struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:200;not null" json:"description"`
	Selectable  bool   `gorm:"default:true" json:"selectable"`
	Teams       []Team `gorm:"foreignKey:ProviderID" json:"teams,omitempty"`
}

func (Provider) TableName() string {
	return "probation_area"
}

// FindTeam returns the provider's team with the given code, or nil.
func (p *Provider) FindTeam(code string) *Team {
	for i := range p.Teams {
		if p.Teams[i].Code == code {
			return &p.Teams[i]
		}
	}
	return nil
}

// Team represents a team within a provider
type Team struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ProviderID  uint   `gorm:"not null;index" json:"provider_id"`
	Code        string `gorm:"size:6;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:200;not null" json:"description"`

	Staff           []Staff          `gorm:"foreignKey:TeamID" json:"staff,omitempty"`
	OfficeLocations []OfficeLocation `gorm:"many2many:team_office_location" json:"office_locations,omitempty"`
}

func (Team) TableName() string {
	return "team"
}

// FindStaff returns the team member with the given code, or nil.
func (t *Team) FindStaff(code string) *Staff {
	for i := range t.Staff {
		if t.Staff[i].Code == code {
			return &t.Staff[i]
		}
	}
	return nil
}

// FindOfficeLocation returns the team's office location with the given code, or nil.
func (t *Team) FindOfficeLocation(code string) *OfficeLocation {
	for i := range t.OfficeLocations {
		if t.OfficeLocations[i].Code == code {
			return &t.OfficeLocations[i]
		}
	}
	return nil
}

// Staff represents a probation staff member
type Staff struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TeamID    uint   `gorm:"not null;index" json:"team_id"`
	Code      string `gorm:"size:7;uniqueIndex;not null" json:"code"`
	FirstName string `gorm:"size:35;not null" json:"first_name"`
	LastName  string `gorm:"size:35;not null" json:"last_name"`
}

func (Staff) TableName() string {
	return "staff"
}

// OfficeLocation represents a bookable office location
type OfficeLocation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:7;uniqueIndex;not null" json:"code"`
	Description string     `gorm:"size:200;not null" json:"description"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
}

func (OfficeLocation) TableName() string {
	return "office_location"
}

func splitCodes(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
