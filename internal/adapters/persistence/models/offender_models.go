package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Offender aggregate - legacy Delius schema, never migrated
// ============================================================

// Offender is the aggregate root; events (and transitively requirements) hang off it.
type Offender struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CRN       string         `gorm:"column:crn;size:7;uniqueIndex;not null" json:"crn"`
	FirstName string         `gorm:"size:35" json:"first_name"`
	LastName  string         `gorm:"size:35" json:"last_name"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Events []Event `gorm:"foreignKey:OffenderID" json:"events,omitempty"`
}

func (Offender) TableName() string {
	return "offender"
}

// FindEvent returns the offender's event with the given id, or nil.
func (o *Offender) FindEvent(eventID uint) *Event {
	for i := range o.Events {
		if o.Events[i].ID == eventID {
			return &o.Events[i]
		}
	}
	return nil
}

// FindRequirement returns the requirement with the given id within the event's
// disposals, provided it belongs to this offender, or nil.
func (o *Offender) FindRequirement(event *Event, requirementID uint) *Requirement {
	for i := range event.Disposals {
		reqs := event.Disposals[i].Requirements
		for j := range reqs {
			if reqs[j].ID == requirementID && reqs[j].OffenderID == o.ID {
				return &reqs[j]
			}
		}
	}
	return nil
}

// Event is a sentence/order aggregate carrying derived breach state.
type Event struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OffenderID uint           `gorm:"not null;index" json:"offender_id"`
	Active     bool           `gorm:"default:true" json:"active"`
	InBreach   bool           `json:"in_breach"`
	BreachEnd  *time.Time     `gorm:"type:date" json:"breach_end"`
	FtcCount   int64          `json:"ftc_count"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Disposals []Disposal `gorm:"foreignKey:EventID" json:"disposals,omitempty"`
}

func (Event) TableName() string {
	return "event"
}

// Disposal returns the event's disposal, or nil when the event is unsentenced.
func (e *Event) Disposal() *Disposal {
	if len(e.Disposals) == 0 {
		return nil
	}
	return &e.Disposals[0]
}

// IsInBreachOn reports whether the event is in breach as of the given date:
// breach has started and has not ended strictly after that date.
func (e *Event) IsInBreachOn(date time.Time) bool {
	return e.InBreach && (e.BreachEnd == nil || !e.BreachEnd.After(date))
}

// Disposal is the sentence imposed for an event.
type Disposal struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	EventID   uint           `gorm:"not null;index" json:"event_id"`
	TypeID    uint           `gorm:"not null" json:"type_id"`
	Type      *DisposalType  `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Requirements []Requirement `gorm:"foreignKey:DisposalID" json:"requirements,omitempty"`
}

func (Disposal) TableName() string {
	return "disposal"
}

// Requirement belongs to an event's disposal and carries the derived RAR count.
type Requirement struct {
	ID              uint                     `gorm:"primaryKey" json:"id"`
	DisposalID      uint                     `gorm:"not null;index" json:"disposal_id"`
	OffenderID      uint                     `gorm:"not null;index" json:"offender_id"`
	Active          bool                     `gorm:"default:true" json:"active"`
	TerminationDate *time.Time               `gorm:"type:date" json:"termination_date"`
	TypeCategoryID  *uint                    `json:"type_category_id"`
	TypeCategory    *RequirementTypeCategory `gorm:"foreignKey:TypeCategoryID" json:"type_category,omitempty"`
	RarCount        *int64                   `json:"rar_count"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt           `gorm:"index" json:"-"`
}

func (Requirement) TableName() string {
	return "rqmnt"
}

// IsRehabilitationActivityRequirement reports whether the requirement is in the
// RAR category.
func (r *Requirement) IsRehabilitationActivityRequirement() bool {
	return r.TypeCategory != nil && r.TypeCategory.Code == RarRequirementTypeCategoryCode
}

// IsTerminated reports whether the requirement was terminated on or before the
// reference date.
func (r *Requirement) IsTerminated(referenceDate time.Time) bool {
	return r.TerminationDate != nil && !r.TerminationDate.After(referenceDate)
}
