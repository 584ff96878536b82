package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"
	"delius-api/internal/core/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NsiService creates non-statutory interventions: level and reference
// validation, manager resolution, the status system contact, and the initial
// RAR count.
type NsiService struct {
	tx             repositories.Transactioner
	nsiRepo        repositories.NsiRepository
	offenderRepo   repositories.OffenderRepository
	referenceRepo  repositories.ReferenceRepository
	rar            *RarService
	systemContacts *SystemContactService
	audit          *AuditService
	logger         *zap.SugaredLogger
	now            func() time.Time
}

// NewNsiService creates a new NSI service
func NewNsiService(
	tx repositories.Transactioner,
	nsiRepo repositories.NsiRepository,
	offenderRepo repositories.OffenderRepository,
	referenceRepo repositories.ReferenceRepository,
	rar *RarService,
	systemContacts *SystemContactService,
	audit *AuditService,
	logger *zap.SugaredLogger,
) *NsiService {
	return &NsiService{
		tx:             tx,
		nsiRepo:        nsiRepo,
		offenderRepo:   offenderRepo,
		referenceRepo:  referenceRepo,
		rar:            rar,
		systemContacts: systemContacts,
		audit:          audit,
		logger:         logger,
		now:            time.Now,
	}
}

// Get gets an NSI by ID
func (s *NsiService) Get(ctx context.Context, id uint) (*models.Nsi, error) {
	nsi, err := s.nsiRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("nsi with id %d not found", id))
		}
		return nil, err
	}
	return nsi, nil
}

// Create creates an NSI in one transaction and audits the interaction
func (s *NsiService) Create(ctx context.Context, req *domain.NewNsi, principal Principal) (*models.Nsi, error) {
	var created *models.Nsi
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		nsi, err := s.createNsiTx(ctx, req, principal)
		if err != nil {
			return err
		}
		created = nsi
		return nil
	})

	ids := AuditIDs{}
	if created != nil {
		ids.OffenderID = &created.OffenderID
		ids.NsiID = &created.ID
	}
	s.audit.Record(ctx, InteractionAddNsi, principal.UserID, ids, err == nil)

	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *NsiService) createNsiTx(ctx context.Context, req *domain.NewNsi, principal Principal) (*models.Nsi, error) {
	offender, err := s.offenderRepo.GetByCRN(ctx, req.OffenderCrn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("offender with crn '%s' not found", req.OffenderCrn))
		}
		return nil, err
	}

	nsiType, err := s.referenceRepo.GetNsiType(ctx, req.Type)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.BadRequest(fmt.Sprintf("nsi type '%s' not found", req.Type))
		}
		return nil, err
	}

	nsi := &models.Nsi{
		OffenderID:        offender.ID,
		TypeID:            nsiType.ID,
		ReferralDate:      req.ReferralDate,
		ExpectedStartDate: req.ExpectedStartDate,
		ExpectedEndDate:   req.ExpectedEndDate,
		ActualStartDate:   req.StartDate,
		ActualEndDate:     req.EndDate,
		Length:            req.Length,
		Notes:             req.Notes,
		Active:            req.EndDate == nil,
		CreatedByUserID:   principal.UserID,
		LastUpdatedUserID: principal.UserID,
	}

	// Level check: the type decides whether the NSI sits on the offender or on
	// a sentence.
	var event *models.Event
	if req.EventID != nil {
		if !nsiType.EventLevel {
			return nil, domain.BadRequest(fmt.Sprintf("nsi type '%s' cannot be created at event level", nsiType.Code))
		}
		event = offender.FindEvent(*req.EventID)
		if event == nil {
			return nil, domain.BadRequest(fmt.Sprintf("event with id %d does not belong to offender '%s'", *req.EventID, offender.CRN))
		}
		if !event.Active {
			return nil, domain.BadRequest(fmt.Sprintf("event with id %d is not active", *req.EventID))
		}
		nsi.EventID = &event.ID
		nsi.Event = event
	} else if !nsiType.OffenderLevel {
		return nil, domain.BadRequest(fmt.Sprintf("nsi type '%s' requires an event", nsiType.Code))
	}

	if req.RequirementID != nil {
		if event == nil {
			return nil, domain.BadRequest("a requirement can only be referenced together with its event")
		}
		requirement := offender.FindRequirement(event, *req.RequirementID)
		if requirement == nil {
			return nil, domain.BadRequest(fmt.Sprintf("requirement with id %d does not belong to event %d", *req.RequirementID, event.ID))
		}
		if !requirement.Active || requirement.IsTerminated(req.ReferralDate) {
			return nil, domain.BadRequest(fmt.Sprintf("requirement with id %d is not active", *req.RequirementID))
		}
		nsi.RequirementID = &requirement.ID
		nsi.Requirement = requirement
	}

	if req.SubType != nil {
		subType := nsiType.FindSubType(*req.SubType)
		if subType == nil {
			return nil, domain.BadRequest(fmt.Sprintf("sub-type '%s' is not valid for nsi type '%s'", *req.SubType, nsiType.Code))
		}
		nsi.SubTypeID = &subType.ID
	} else if len(nsiType.SubTypes) > 0 {
		return nil, domain.BadRequest(fmt.Sprintf("a sub-type is required for nsi type '%s'", nsiType.Code))
	}

	status := nsiType.FindStatus(req.Status)
	if status == nil {
		return nil, domain.BadRequest(fmt.Sprintf("status '%s' is not valid for nsi type '%s'", req.Status, nsiType.Code))
	}
	nsi.StatusID = status.ID
	if req.StatusDate != nil {
		nsi.StatusDate = *req.StatusDate
	} else {
		nsi.StatusDate = s.now()
	}

	if req.Outcome != nil {
		if req.EndDate == nil {
			return nil, domain.BadRequest("an nsi outcome can only be recorded with an end date")
		}
		outcome, err := s.referenceRepo.GetNsiOutcome(ctx, *req.Outcome)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.BadRequest(fmt.Sprintf("nsi outcome '%s' not found", *req.Outcome))
			}
			return nil, err
		}
		nsi.OutcomeID = &outcome.ID
	}

	if req.Length != nil && !nsiType.AllowsLength {
		return nil, domain.BadRequest(fmt.Sprintf("nsi type '%s' does not record a length", nsiType.Code))
	}
	if req.StartDate != nil && req.StartDate.Before(req.ReferralDate) {
		return nil, domain.BadRequest("start date cannot be before the referral date")
	}
	if req.EndDate != nil && req.StartDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, domain.BadRequest("end date cannot be before the start date")
	}

	if req.IntendedProvider != nil {
		provider, err := s.referenceRepo.GetProvider(ctx, *req.IntendedProvider)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.BadRequest(fmt.Sprintf("provider '%s' not found", *req.IntendedProvider))
			}
			return nil, err
		}
		nsi.IntendedProviderID = &provider.ID
	}

	if req.Manager != nil {
		provider, err := s.referenceRepo.GetProvider(ctx, req.Manager.Provider)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.BadRequest(fmt.Sprintf("provider '%s' not found", req.Manager.Provider))
			}
			return nil, err
		}
		team := provider.FindTeam(req.Manager.Team)
		if team == nil {
			return nil, domain.BadRequest(fmt.Sprintf("team '%s' not found in provider '%s'", req.Manager.Team, req.Manager.Provider))
		}
		staff := team.FindStaff(req.Manager.Staff)
		if staff == nil {
			return nil, domain.BadRequest(fmt.Sprintf("staff '%s' not found in team '%s'", req.Manager.Staff, req.Manager.Team))
		}
		if !principal.HasProvider(provider.Code) {
			return nil, domain.Forbidden(fmt.Sprintf("user has no authority over provider '%s'", provider.Code))
		}
		nsi.Managers = []models.NsiManager{{
			ProviderID: provider.ID,
			TeamID:     team.ID,
			StaffID:    staff.ID,
			StartDate:  req.ReferralDate,
		}}
	}

	if err := s.nsiRepo.Create(ctx, nsi); err != nil {
		return nil, err
	}
	nsi.Offender = offender
	nsi.Type = nsiType
	nsi.Status = status
	s.logger.Infow("created nsi",
		"nsi_id", nsi.ID,
		"type", nsiType.Code,
		"offender_crn", offender.CRN,
	)

	if _, err := s.systemContacts.CreateNsiStatusContact(ctx, nsi, status, principal.UserID); err != nil {
		return nil, err
	}
	if nsi.IsRarNsi() {
		if err := s.rar.RecomputeNsi(ctx, nsi); err != nil {
			return nil, err
		}
	}
	return nsi, nil
}
