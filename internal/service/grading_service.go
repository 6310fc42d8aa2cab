package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/dto"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
)

// GradingService applies teacher grading mutations to submissions.
type GradingService interface {
	Grade(ctx context.Context, actor Actor, submissionID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs a GradingService instance.
func NewGradingService(submissions repository.SubmissionRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		validator:   validate,
		activity:    activity,
		sanitizer:   bluemonday.UGCPolicy(),
		tracer:      otel.Tracer("grading-service"),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// Grade updates points, status and feedback on a submission. The caller must
// be the assignment creator or actively teach a group that targets the
// assignment and actively contains the student. Awarded points are not capped
// at the assignment maximum, bonus points are a grader's call.
func (s *gradingService) Grade(ctx context.Context, actor Actor, submissionID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.grade")
	defer span.End()

	if !actor.IsTeacher() {
		return dto.SubmissionResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("submission.id", int(submission.ID)),
		attribute.Int("teacher.id", int(actor.ProfileID)),
	)

	if submission.Assignment.CreatedByID != actor.ProfileID {
		grades, err := s.submissions.TeacherGradesStudent(ctx, submission.AssignmentID, submission.StudentID, actor.ProfileID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		if !grades {
			return dto.SubmissionResponse{}, ErrForbidden
		}
	}

	if payload.Points != nil {
		submission.Points = payload.Points
	}
	if payload.Feedback != nil {
		submission.Feedback = s.sanitizer.Sanitize(*payload.Feedback)
	}
	switch {
	case payload.Status != nil:
		submission.Status = *payload.Status
	case payload.Points != nil && submission.Status == models.SubmissionStatusSubmitted:
		submission.Status = models.SubmissionStatusGraded
	}

	gradedAt := s.now()
	graderID := actor.ProfileID
	submission.GradedByID = &graderID
	submission.GradedAt = &gradedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("teacher_id", actor.ProfileID).
		Str("status", submission.Status).
		Msg("submission graded")

	if s.activity != nil {
		entityID := submission.ID
		s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ProfileID,
			ActorRole:  actor.Role,
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   &entityID,
			Metadata: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"status":        submission.Status,
			},
		})
	}

	return dto.NewSubmissionResponse(updated), nil
}

func (s *gradingService) loadSubmission(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	return submission, nil
}
