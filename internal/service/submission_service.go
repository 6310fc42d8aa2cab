package service

import (
	"context"
	"errors"
	"mime/multipart"
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

// Submission errors surfaced to the handler layer.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("assignment already submitted")
	ErrNotAssigned        = errors.New("assignment is not available to this student")
)

// SubmissionService manages student submissions and their attachments.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	List(ctx context.Context, actor Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	AddAttachment(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.AttachmentResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	activity    ActivityRecorder
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, activity ActivityRecorder, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		uploader:    uploader,
		activity:    activity,
		sanitizer:   bluemonday.UGCPolicy(),
		tracer:      otel.Tracer("submission-service"),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Create records a student's submission. Lateness is decided once, here,
// against the effective deadline of the student's group link. A late
// submission to an assignment that allows them gets the penalized score
// pre-filled; the grader may still overwrite it.
func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.create")
	defer span.End()

	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, ErrStudentOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("assignment.id", int(payload.AssignmentID)),
		attribute.Int("student.id", int(actor.ProfileID)),
	)

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return dto.SubmissionResponse{}, ErrAssignmentNotFound
	}

	assigned, err := s.assignments.IsAssignedToStudentGroups(ctx, assignment.ID, actor.ProfileID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !assigned {
		return dto.SubmissionResponse{}, ErrNotAssigned
	}

	exists, err := s.submissions.Exists(ctx, assignment.ID, actor.ProfileID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ProfileID,
		Comment:      s.sanitizer.Sanitize(payload.Comment),
		Status:       models.SubmissionStatusSubmitted,
	}

	link, err := s.submissions.ActiveLinkForStudent(ctx, assignment.ID, actor.ProfileID)
	switch {
	case err == nil:
		submission.IsLate = s.now().After(link.EffectiveDeadline())
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No active membership link resolves the deadline, so the
		// submission cannot be late.
	default:
		return dto.SubmissionResponse{}, err
	}

	if submission.IsLate && assignment.AllowLateSubmissions {
		points := models.LatePenaltyPoints(assignment.MaxPoints, assignment.LatePenaltyPercentage)
		submission.Points = &points
	}

	span.SetAttributes(attribute.Bool("submission.is_late", submission.IsLate))

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", actor.ProfileID).
		Bool("is_late", submission.IsLate).
		Msg("submission created")

	s.record(ctx, actor, "submission.created", submission.ID, map[string]interface{}{
		"assignment_id": assignment.ID,
		"is_late":       submission.IsLate,
	})

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) List(ctx context.Context, actor Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		Status:       filter.Status,
	}

	var (
		submissions []models.Submission
		err         error
	)

	if actor.IsTeacher() {
		submissions, err = s.submissions.ListForTeacher(ctx, actor.ProfileID, repoFilter)
	} else {
		submissions, err = s.submissions.ListForStudent(ctx, actor.ProfileID, repoFilter)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.visibleSubmission(ctx, actor, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) AddAttachment(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.AttachmentResponse, error) {
	if !actor.IsStudent() {
		return dto.AttachmentResponse{}, ErrStudentOnly
	}

	submission, err := s.loadSubmission(ctx, id)
	if err != nil {
		return dto.AttachmentResponse{}, err
	}

	if submission.StudentID != actor.ProfileID {
		return dto.AttachmentResponse{}, ErrSubmissionNotFound
	}

	url, err := uploadAttachment(ctx, s.uploader, file)
	if err != nil {
		return dto.AttachmentResponse{}, err
	}

	attachment := models.SubmissionAttachment{
		SubmissionID: submission.ID,
		FileURL:      url,
		Filename:     file.Filename,
	}

	if err := s.submissions.CreateAttachment(ctx, &attachment); err != nil {
		return dto.AttachmentResponse{}, err
	}

	return dto.AttachmentResponse{
		ID:         attachment.ID,
		FileURL:    attachment.FileURL,
		Filename:   attachment.Filename,
		UploadedAt: attachment.UploadedAt,
	}, nil
}

func (s *submissionService) loadSubmission(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	return submission, nil
}

// visibleSubmission hides submissions outside the caller's audience behind a
// not-found.
func (s *submissionService) visibleSubmission(ctx context.Context, actor Actor, id uint) (models.Submission, error) {
	submission, err := s.loadSubmission(ctx, id)
	if err != nil {
		return models.Submission{}, err
	}

	if actor.IsStudent() {
		if submission.StudentID != actor.ProfileID {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return submission, nil
	}

	if submission.Assignment.CreatedByID == actor.ProfileID {
		return submission, nil
	}

	grades, err := s.submissions.TeacherGradesStudent(ctx, submission.AssignmentID, submission.StudentID, actor.ProfileID)
	if err != nil {
		return models.Submission{}, err
	}
	if !grades {
		return models.Submission{}, ErrSubmissionNotFound
	}

	return submission, nil
}

func (s *submissionService) record(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ProfileID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &entityID,
		Metadata:   metadata,
	})
}
