package service

import (
	"context"

	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
)

// ActivityRecorder appends to a user's activity feed. Recording never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, userID, kind, subjectID string)
}

type activityRecorder struct {
	repo   repository.CalendarRepository
	logger zerolog.Logger
}

func NewActivityRecorder(repo repository.CalendarRepository, logger zerolog.Logger) ActivityRecorder {
	return &activityRecorder{repo: repo, logger: logger.With().Str("service", "ActivityRecorder").Logger()}
}

func (r *activityRecorder) Record(ctx context.Context, userID, kind, subjectID string) {
	a := &model.Activity{UserID: userID, Kind: kind, SubjectID: subjectID}
	if err := r.repo.CreateActivity(ctx, a); err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Str("kind", kind).Msg("Failed to record activity")
	}
}
