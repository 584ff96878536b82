package services

import (
	"context"

	"delius-api/internal/adapters/persistence/models"
	"delius-api/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditService records one audited interaction per use-case invocation.
// Rows are written on the base connection so a rolled-back use case still
// leaves its failure record.
type AuditService struct {
	auditRepo repositories.AuditRepository
	logger    *zap.SugaredLogger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.SugaredLogger) *AuditService {
	return &AuditService{auditRepo: auditRepo, logger: logger}
}

// AuditIDs addresses the records an interaction touched.
type AuditIDs struct {
	OffenderID *uint
	ContactID  *uint
	NsiID      *uint
}

// Record writes the audit row. Audit failures are logged, never propagated:
// the business outcome has already been decided.
func (s *AuditService) Record(ctx context.Context, interaction string, userID uint, ids AuditIDs, success bool) {
	row := &models.AuditedInteraction{
		ID:          uuid.NewString(),
		Interaction: interaction,
		Success:     success,
		UserID:      userID,
		OffenderID:  ids.OffenderID,
		ContactID:   ids.ContactID,
		NsiID:       ids.NsiID,
	}
	if err := s.auditRepo.Create(ctx, row); err != nil {
		s.logger.Errorw("failed to write audit record",
			"interaction", interaction,
			"user_id", userID,
			"error", err,
		)
	}
}
