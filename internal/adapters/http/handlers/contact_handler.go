package handlers

import (
	"strconv"
	"time"

	"delius-api/internal/adapters/http/middleware"
	"delius-api/internal/core/domain"
	"delius-api/internal/core/services"
	"delius-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles contact endpoints
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// ManagerRequest addresses the provider/team/staff recording the contact
type ManagerRequest struct {
	Provider string `json:"provider"`
	Team     string `json:"team"`
	Staff    string `json:"staff"`
}

// CreateContactRequest represents create contact request
type CreateContactRequest struct {
	OffenderCrn    string         `json:"offender_crn"`
	NsiID          *uint          `json:"nsi_id,omitempty"`
	EventID        *uint          `json:"event_id,omitempty"`
	RequirementID  *uint          `json:"requirement_id,omitempty"`
	Type           string         `json:"type"`
	Outcome        *string        `json:"outcome,omitempty"`
	Enforcement    *string        `json:"enforcement,omitempty"`
	Date           string         `json:"date"`
	StartTime      *string        `json:"start_time,omitempty"`
	EndTime        *string        `json:"end_time,omitempty"`
	Alert          *bool          `json:"alert,omitempty"`
	Sensitive      *bool          `json:"sensitive,omitempty"`
	RarActivity    *bool          `json:"rar_activity,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	Description    *string        `json:"description,omitempty"`
	OfficeLocation *string        `json:"office_location,omitempty"`
	Manager        ManagerRequest `json:"manager"`
}

// UpdateContactRequest represents update contact request
type UpdateContactRequest struct {
	Outcome        *string `json:"outcome,omitempty"`
	Enforcement    *string `json:"enforcement,omitempty"`
	Date           *string `json:"date,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	Alert          *bool   `json:"alert,omitempty"`
	Sensitive      *bool   `json:"sensitive,omitempty"`
	RarActivity    *bool   `json:"rar_activity,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Description    *string `json:"description,omitempty"`
	OfficeLocation *string `json:"office_location,omitempty"`
}

// ReplaceContactRequest represents replace contact request. The identifiers
// restate which contact the caller believes they are replacing.
type ReplaceContactRequest struct {
	OffenderCrn    string  `json:"offender_crn"`
	EventID        *uint   `json:"event_id,omitempty"`
	RequirementID  *uint   `json:"requirement_id,omitempty"`
	NsiID          *uint   `json:"nsi_id,omitempty"`
	Outcome        string  `json:"outcome"`
	OfficeLocation *string `json:"office_location,omitempty"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
}

// Get gets a contact by ID
// @Summary Get contact
// @Description Get a contact by ID
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /v1/contact/{id} [get]
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contact id")
	}

	contact, err := h.contactService.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "", fiber.Map{
		"contact": contact.ToResponse(),
	})
}

// Create creates a new contact
// @Summary Create contact
// @Description Create a contact against an offender, optionally scoped to an event, requirement or NSI
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateContactRequest true "Contact data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /v1/contact [post]
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var req CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.OffenderCrn == "" {
		return response.BadRequest(c, "Offender CRN is required")
	}
	if req.Type == "" {
		return response.BadRequest(c, "Contact type is required")
	}
	if req.Manager.Provider == "" || req.Manager.Team == "" || req.Manager.Staff == "" {
		return response.BadRequest(c, "Manager provider, team and staff are required")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	newContact := &domain.NewContact{
		OffenderCrn:    req.OffenderCrn,
		NsiID:          req.NsiID,
		EventID:        req.EventID,
		RequirementID:  req.RequirementID,
		Type:           req.Type,
		Outcome:        req.Outcome,
		Enforcement:    req.Enforcement,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Alert:          req.Alert,
		Sensitive:      req.Sensitive,
		RarActivity:    req.RarActivity,
		Notes:          req.Notes,
		Description:    req.Description,
		OfficeLocation: req.OfficeLocation,
		Manager: domain.ContactManager{
			Provider: req.Manager.Provider,
			Team:     req.Manager.Team,
			Staff:    req.Manager.Staff,
		},
	}

	contact, err := h.contactService.Create(c.Context(), newContact, middleware.PrincipalFromContext(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Contact created successfully", fiber.Map{
		"contact": contact.ToResponse(),
	})
}

// Update updates a contact
// @Summary Update contact
// @Description Update a contact's outcome, schedule, notes or location
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param body body UpdateContactRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /v1/contact/{id} [patch]
func (h *ContactHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contact id")
	}

	var req UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	update := &domain.UpdateContact{
		Outcome:        req.Outcome,
		Enforcement:    req.Enforcement,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Alert:          req.Alert,
		Sensitive:      req.Sensitive,
		RarActivity:    req.RarActivity,
		Notes:          req.Notes,
		Description:    req.Description,
		OfficeLocation: req.OfficeLocation,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		}
		update.Date = &date
	}

	contact, err := h.contactService.Update(c.Context(), id, update, middleware.PrincipalFromContext(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Contact updated successfully", fiber.Map{
		"contact": contact.ToResponse(),
	})
}

// Delete deletes a contact
// @Summary Delete contact
// @Description Soft delete a contact and the system contacts it spawned
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /v1/contact/{id} [delete]
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contact id")
	}

	if err := h.contactService.Delete(c.Context(), id, middleware.PrincipalFromContext(c)); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Contact deleted successfully", nil)
}

// Replace terminates an appointment with an outcome and books its replacement
// @Summary Replace contact
// @Description Record an outcome against an outcome-less appointment and book a replacement
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param body body ReplaceContactRequest true "Replacement data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /v1/contact/{id}/replace [post]
func (h *ContactHandler) Replace(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contact id")
	}

	var req ReplaceContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OffenderCrn == "" {
		return response.BadRequest(c, "Offender CRN is required")
	}
	if req.Outcome == "" {
		return response.BadRequest(c, "Outcome is required")
	}
	if req.StartTime == "" || req.EndTime == "" {
		return response.BadRequest(c, "Start and end times are required")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	replace := &domain.ReplaceContact{
		OffenderCrn:    req.OffenderCrn,
		EventID:        req.EventID,
		RequirementID:  req.RequirementID,
		NsiID:          req.NsiID,
		Outcome:        req.Outcome,
		OfficeLocation: req.OfficeLocation,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}

	contact, err := h.contactService.Replace(c.Context(), id, replace, middleware.PrincipalFromContext(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Contact replaced successfully", fiber.Map{
		"contact": contact.ToResponse(),
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
