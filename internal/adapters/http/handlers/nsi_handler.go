package handlers

import (
	"time"

	"delius-api/internal/adapters/http/middleware"
	"delius-api/internal/core/domain"
	"delius-api/internal/core/services"
	"delius-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NsiHandler handles NSI endpoints
type NsiHandler struct {
	nsiService *services.NsiService
}

// NewNsiHandler creates a new NSI handler
func NewNsiHandler(nsiService *services.NsiService) *NsiHandler {
	return &NsiHandler{
		nsiService: nsiService,
	}
}

// CreateNsiRequest represents create NSI request
type CreateNsiRequest struct {
	Type              string          `json:"type"`
	SubType           *string         `json:"sub_type,omitempty"`
	OffenderCrn       string          `json:"offender_crn"`
	EventID           *uint           `json:"event_id,omitempty"`
	RequirementID     *uint           `json:"requirement_id,omitempty"`
	ReferralDate      string          `json:"referral_date"`
	ExpectedStartDate *string         `json:"expected_start_date,omitempty"`
	ExpectedEndDate   *string         `json:"expected_end_date,omitempty"`
	StartDate         *string         `json:"start_date,omitempty"`
	EndDate           *string         `json:"end_date,omitempty"`
	Length            *int64          `json:"length,omitempty"`
	Status            string          `json:"status"`
	StatusDate        *string         `json:"status_date,omitempty"`
	Outcome           *string         `json:"outcome,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	IntendedProvider  *string         `json:"intended_provider,omitempty"`
	Manager           *ManagerRequest `json:"manager,omitempty"`
}

// Get gets an NSI by ID
// @Summary Get NSI
// @Description Get a non-statutory intervention by ID
// @Tags NSIs
// @Produce json
// @Security BearerAuth
// @Param id path int true "NSI ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /v1/nsi/{id} [get]
func (h *NsiHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid nsi id")
	}

	nsi, err := h.nsiService.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "", fiber.Map{
		"nsi": nsi.ToResponse(),
	})
}

// Create creates a new NSI
// @Summary Create NSI
// @Description Create a non-statutory intervention against an offender or sentence
// @Tags NSIs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateNsiRequest true "NSI data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /v1/nsi [post]
func (h *NsiHandler) Create(c *fiber.Ctx) error {
	var req CreateNsiRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.OffenderCrn == "" {
		return response.BadRequest(c, "Offender CRN is required")
	}
	if req.Type == "" {
		return response.BadRequest(c, "NSI type is required")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}
	referralDate, err := parseDate(req.ReferralDate)
	if err != nil {
		return response.BadRequest(c, "Invalid referral date, expected YYYY-MM-DD")
	}

	newNsi := &domain.NewNsi{
		Type:             req.Type,
		SubType:          req.SubType,
		OffenderCrn:      req.OffenderCrn,
		EventID:          req.EventID,
		RequirementID:    req.RequirementID,
		ReferralDate:     referralDate,
		Length:           req.Length,
		Status:           req.Status,
		Outcome:          req.Outcome,
		Notes:            req.Notes,
		IntendedProvider: req.IntendedProvider,
	}
	if newNsi.ExpectedStartDate, err = parseDatePtr(req.ExpectedStartDate); err != nil {
		return response.BadRequest(c, "Invalid expected start date, expected YYYY-MM-DD")
	}
	if newNsi.ExpectedEndDate, err = parseDatePtr(req.ExpectedEndDate); err != nil {
		return response.BadRequest(c, "Invalid expected end date, expected YYYY-MM-DD")
	}
	if newNsi.StartDate, err = parseDatePtr(req.StartDate); err != nil {
		return response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
	}
	if newNsi.EndDate, err = parseDatePtr(req.EndDate); err != nil {
		return response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
	}
	if req.StatusDate != nil {
		statusDate, err := time.Parse(time.RFC3339, *req.StatusDate)
		if err != nil {
			return response.BadRequest(c, "Invalid status date, expected RFC 3339")
		}
		newNsi.StatusDate = &statusDate
	}
	if req.Manager != nil {
		newNsi.Manager = &domain.ContactManager{
			Provider: req.Manager.Provider,
			Team:     req.Manager.Team,
			Staff:    req.Manager.Staff,
		}
	}

	nsi, err := h.nsiService.Create(c.Context(), newNsi, middleware.PrincipalFromContext(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "NSI created successfully", fiber.Map{
		"nsi": nsi.ToResponse(),
	})
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
