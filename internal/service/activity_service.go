package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
)

// ActivityEntry describes an auditable event emitted by a service.
type ActivityEntry struct {
	ActorID    uint
	ActorRole  string
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder persists audit events. Recording is best effort: a
// failed write is logged and never propagated to the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityService struct {
	logs   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs an ActivityRecorder backed by the database.
func NewActivityService(logs repository.ActivityLogRepository, logger zerolog.Logger) ActivityRecorder {
	return &activityService{
		logs:   logs,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	record := models.ActivityLog{
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
	}

	if err := s.logs.Create(ctx, &record); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func (s *activityService) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return s.logs.ListRecent(ctx, limit)
}
