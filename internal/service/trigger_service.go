package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/cryptopulse/backend/internal/models"
	"github.com/cryptopulse/backend/internal/repository"
)

// TriggerLogService records fired alerts. Recording is best-effort: a
// failed append must never fail the trigger itself.
type TriggerLogService interface {
	Record(ctx context.Context, event *models.TriggerEvent)
	Recent(ctx context.Context, limit int) ([]*models.TriggerEvent, error)
}

type triggerLogService struct {
	store repository.TriggerLogStore
}

func NewTriggerLogService(store repository.TriggerLogStore) TriggerLogService {
	return &triggerLogService{store: store}
}

func (s *triggerLogService) Record(ctx context.Context, event *models.TriggerEvent) {
	if err := s.store.Append(ctx, event); err != nil {
		log.Warnf("trigger log append failed for rule %s: %v", event.RuleID, err)
	}
}

func (s *triggerLogService) Recent(ctx context.Context, limit int) ([]*models.TriggerEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.store.Recent(ctx, limit)
}
