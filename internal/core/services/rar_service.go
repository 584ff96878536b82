package services

import (
	"context"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
)

// RarService maintains the denormalised RAR day counts on requirements and
// NSIs. Counts are always fully recomputed from the contacts, never
// incremented, so any change converges on the right value.
type RarService struct {
	contactRepo repositories.ContactRepository
	eventRepo   repositories.EventRepository
	nsiRepo     repositories.NsiRepository
	logger      *zap.SugaredLogger
}

// NewRarService creates a new RAR counting service
func NewRarService(
	contactRepo repositories.ContactRepository,
	eventRepo repositories.EventRepository,
	nsiRepo repositories.NsiRepository,
	logger *zap.SugaredLogger,
) *RarService {
	return &RarService{
		contactRepo: contactRepo,
		eventRepo:   eventRepo,
		nsiRepo:     nsiRepo,
		logger:      logger,
	}
}

// UpdateRarCounts recomputes the counts a contact can influence: its
// requirement's when that is a RAR requirement, and its NSI's when the NSI
// hangs off one.
func (s *RarService) UpdateRarCounts(ctx context.Context, contact *models.Contact) error {
	if contact.Requirement != nil && contact.Requirement.IsRehabilitationActivityRequirement() {
		if err := s.RecomputeRequirement(ctx, contact.Requirement); err != nil {
			return err
		}
	}
	if contact.Nsi != nil && contact.Nsi.IsRarNsi() {
		if err := s.RecomputeNsi(ctx, contact.Nsi); err != nil {
			return err
		}
		// RAR days through an NSI also count against its parent requirement.
		if contact.Nsi.Requirement != nil && contact.Nsi.Requirement.IsRehabilitationActivityRequirement() {
			if err := s.RecomputeRequirement(ctx, contact.Nsi.Requirement); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecomputeRequirement recounts a requirement's distinct RAR days and saves
// the count when it moved.
func (s *RarService) RecomputeRequirement(ctx context.Context, requirement *models.Requirement) error {
	count, err := s.contactRepo.CountRarDaysByRequirement(ctx, requirement.ID)
	if err != nil {
		return err
	}
	if requirement.RarCount != nil && *requirement.RarCount == count {
		return nil
	}
	requirement.RarCount = &count
	return s.eventRepo.UpdateRequirement(ctx, requirement)
}

// RecomputeNsi recounts an NSI's distinct RAR days and saves the count when it
// moved.
func (s *RarService) RecomputeNsi(ctx context.Context, nsi *models.Nsi) error {
	count, err := s.contactRepo.CountRarDaysByNsi(ctx, nsi.ID)
	if err != nil {
		return err
	}
	if nsi.RarCount != nil && *nsi.RarCount == count {
		return nil
	}
	nsi.RarCount = &count
	return s.nsiRepo.Update(ctx, nsi)
}

// ReconcileAll recomputes every active RAR requirement and NSI count. Run
// nightly: counter updates race under concurrent writes by design, and this
// sweep repairs any drift.
func (s *RarService) ReconcileAll(ctx context.Context) error {
	requirements, err := s.eventRepo.ListActiveRarRequirements(ctx)
	if err != nil {
		return err
	}
	for _, requirement := range requirements {
		if err := s.RecomputeRequirement(ctx, requirement); err != nil {
			s.logger.Errorw("failed to reconcile requirement rar count",
				"requirement_id", requirement.ID,
				"error", err,
			)
		}
	}

	nsis, err := s.nsiRepo.ListActiveRarNsis(ctx)
	if err != nil {
		return err
	}
	for _, nsi := range nsis {
		if err := s.RecomputeNsi(ctx, nsi); err != nil {
			s.logger.Errorw("failed to reconcile nsi rar count",
				"nsi_id", nsi.ID,
				"error", err,
			)
		}
	}

	s.logger.Infow("rar reconciliation complete",
		"requirements", len(requirements),
		"nsis", len(nsis),
	)
	return nil
}
