package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mirrorcaps/internal/domain"
)

// AuditService persists settlement outcomes to the activity trail. It is only
// handed committed outcomes; a persistence failure here is logged and never
// unwinds the settlement that produced the event.
type AuditService struct {
	logs   domain.ActivityLogRepository
	logger *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(logs domain.ActivityLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		logs:   logs,
		logger: logger,
	}
}

// Record appends the event to the activity trail
func (s *AuditService) Record(ctx context.Context, event domain.AuditEvent) {
	entry := &domain.ActivityLog{
		ID:               uuid.New(),
		ActorID:          event.ActorID,
		ActorEmail:       event.ActorEmail,
		ActorRole:        event.ActorRole,
		Action:           event.Action,
		TargetCollection: event.TargetCollection,
		TargetID:         event.TargetID,
		Metadata:         event.Metadata,
		Status:           event.Status,
		CreatedAt:        time.Now(),
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.logs.Save(saveCtx, entry); err != nil {
		s.logger.Error("failed to persist activity log",
			zap.String("action", event.Action),
			zap.String("target_id", event.TargetID.String()),
			zap.Error(err))
		return
	}

	s.logger.Info("activity recorded",
		zap.String("action", event.Action),
		zap.String("actor_email", event.ActorEmail),
		zap.String("target_id", event.TargetID.String()),
		zap.String("status", event.Status))
}
