package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/dto"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
)

// Assignment errors surfaced to the handler layer.
var (
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrGroupAlreadyAssigned  = errors.New("assignment is already assigned to this group")
	ErrNotAssignmentCreator  = errors.New("only the assignment creator may perform this action")
)

// AssignmentService manages assignments, their group links and attachments.
type AssignmentService interface {
	List(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	ListGroups(ctx context.Context, actor Actor, id uint) ([]dto.AssignmentGroupResponse, error)
	AssignGroup(ctx context.Context, actor Actor, id uint, payload dto.AssignGroupRequest) (dto.AssignmentGroupResponse, error)
	ListSubmissions(ctx context.Context, actor Actor, id uint) ([]dto.SubmissionResponse, error)
	AddAttachment(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.AttachmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	groups      repository.GroupRepository
	validator   *validator.Validate
	uploader    FileUploader
	activity    ActivityRecorder
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, groups repository.GroupRepository, validate *validator.Validate, uploader FileUploader, activity ActivityRecorder, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		submissions: submissions,
		groups:      groups,
		validator:   validate,
		uploader:    uploader,
		activity:    activity,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error) {
	var (
		assignments []models.Assignment
		err         error
	)

	if actor.IsTeacher() {
		assignments, err = s.assignments.ListForTeacher(ctx, actor.ProfileID)
	} else {
		assignments, err = s.assignments.ListForStudent(ctx, actor.ProfileID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, s.now()), nil
}

// Get applies the same visibility rules as List: callers outside the
// assignment's audience receive a not-found, not a forbidden.
func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.visibleAssignment(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.AssignmentStatusDraft
	}

	maxPoints := payload.MaxPoints
	if maxPoints == 0 {
		maxPoints = 100
	}

	allowLate := true
	if payload.AllowLateSubmissions != nil {
		allowLate = *payload.AllowLateSubmissions
	}

	assignment := models.Assignment{
		Title:                 payload.Title,
		Description:           s.sanitizer.Sanitize(payload.Description),
		CreatedByID:           actor.ProfileID,
		Status:                status,
		Deadline:              payload.Deadline,
		MaxPoints:             maxPoints,
		AllowLateSubmissions:  allowLate,
		LatePenaltyPercentage: payload.LatePenaltyPercentage,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	created, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("teacher_id", actor.ProfileID).Msg("assignment created")
	s.record(ctx, actor, "assignment.created", "assignment", assignment.ID, map[string]interface{}{
		"title":  assignment.Title,
		"status": assignment.Status,
	})

	return dto.NewAssignmentResponse(created, s.now()), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.CreatedByID != actor.ProfileID {
		return dto.AssignmentResponse{}, ErrNotAssignmentCreator
	}

	previousStatus := assignment.Status

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Status != nil {
		assignment.Status = *payload.Status
	}
	if payload.Deadline != nil {
		assignment.Deadline = *payload.Deadline
	}
	if payload.MaxPoints != nil {
		assignment.MaxPoints = *payload.MaxPoints
	}
	if payload.AllowLateSubmissions != nil {
		assignment.AllowLateSubmissions = *payload.AllowLateSubmissions
	}
	if payload.LatePenaltyPercentage != nil {
		assignment.LatePenaltyPercentage = *payload.LatePenaltyPercentage
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if previousStatus != models.AssignmentStatusPublished && assignment.Status == models.AssignmentStatusPublished {
		s.record(ctx, actor, "assignment.published", "assignment", assignment.ID, map[string]interface{}{
			"title": assignment.Title,
		})
	}

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.IsTeacher() {
		return ErrTeacherOnly
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return err
	}

	if assignment.CreatedByID != actor.ProfileID {
		return ErrNotAssignmentCreator
	}

	return s.assignments.Delete(ctx, id)
}

func (s *assignmentService) ListGroups(ctx context.Context, actor Actor, id uint) ([]dto.AssignmentGroupResponse, error) {
	if _, err := s.visibleAssignment(ctx, actor, id); err != nil {
		return nil, err
	}

	links, err := s.assignments.ListGroupLinks(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentGroupResponseSlice(links), nil
}

// AssignGroup links the assignment to a group. The caller must be the
// assignment creator or an active teacher of the target group.
func (s *assignmentService) AssignGroup(ctx context.Context, actor Actor, id uint, payload dto.AssignGroupRequest) (dto.AssignmentGroupResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentGroupResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentGroupResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentGroupResponse{}, err
	}

	if _, err := s.groups.GetByID(ctx, payload.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentGroupResponse{}, ErrGroupNotFound
		}
		return dto.AssignmentGroupResponse{}, err
	}

	if assignment.CreatedByID != actor.ProfileID {
		teaches, err := s.assignments.IsTeacherOfGroup(ctx, payload.GroupID, actor.ProfileID)
		if err != nil {
			return dto.AssignmentGroupResponse{}, err
		}
		if !teaches {
			return dto.AssignmentGroupResponse{}, ErrForbidden
		}
	}

	exists, err := s.assignments.GroupLinkExists(ctx, assignment.ID, payload.GroupID)
	if err != nil {
		return dto.AssignmentGroupResponse{}, err
	}
	if exists {
		return dto.AssignmentGroupResponse{}, ErrGroupAlreadyAssigned
	}

	link := models.AssignmentGroup{
		AssignmentID:   assignment.ID,
		GroupID:        payload.GroupID,
		CustomDeadline: payload.CustomDeadline,
	}

	if err := s.assignments.CreateGroupLink(ctx, &link); err != nil {
		return dto.AssignmentGroupResponse{}, err
	}

	link.Assignment = assignment

	s.record(ctx, actor, "assignment.group_assigned", "assignment", assignment.ID, map[string]interface{}{
		"group_id": payload.GroupID,
	})

	return dto.NewAssignmentGroupResponse(link), nil
}

// ListSubmissions returns every submission for teachers in the assignment's
// audience, and only the caller's own submission for students.
func (s *assignmentService) ListSubmissions(ctx context.Context, actor Actor, id uint) ([]dto.SubmissionResponse, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.IsTeacher() {
		if assignment.CreatedByID != actor.ProfileID {
			teaches, err := s.assignments.IsAssignedToTeacherGroups(ctx, assignment.ID, actor.ProfileID)
			if err != nil {
				return nil, err
			}
			if !teaches {
				return nil, ErrForbidden
			}
		}

		submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}
		return dto.NewSubmissionResponseSlice(submissions), nil
	}

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, actor.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	return []dto.SubmissionResponse{dto.NewSubmissionResponse(submission)}, nil
}

func (s *assignmentService) AddAttachment(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.AttachmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AttachmentResponse{}, ErrTeacherOnly
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AttachmentResponse{}, err
	}

	if assignment.CreatedByID != actor.ProfileID {
		return dto.AttachmentResponse{}, ErrNotAssignmentCreator
	}

	url, err := uploadAttachment(ctx, s.uploader, file)
	if err != nil {
		return dto.AttachmentResponse{}, err
	}

	attachment := models.AssignmentAttachment{
		AssignmentID: assignment.ID,
		FileURL:      url,
		Filename:     file.Filename,
	}

	if err := s.assignments.CreateAttachment(ctx, &attachment); err != nil {
		return dto.AttachmentResponse{}, err
	}

	return dto.AttachmentResponse{
		ID:         attachment.ID,
		FileURL:    attachment.FileURL,
		Filename:   attachment.Filename,
		UploadedAt: attachment.UploadedAt,
	}, nil
}

func (s *assignmentService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (s *assignmentService) visibleAssignment(ctx context.Context, actor Actor, id uint) (models.Assignment, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}

	if actor.IsTeacher() {
		if assignment.CreatedByID == actor.ProfileID {
			return assignment, nil
		}
		teaches, err := s.assignments.IsAssignedToTeacherGroups(ctx, assignment.ID, actor.ProfileID)
		if err != nil {
			return models.Assignment{}, err
		}
		if teaches {
			return assignment, nil
		}
		return models.Assignment{}, ErrAssignmentNotFound
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return models.Assignment{}, ErrAssignmentNotFound
	}

	assigned, err := s.assignments.IsAssignedToStudentGroups(ctx, assignment.ID, actor.ProfileID)
	if err != nil {
		return models.Assignment{}, err
	}
	if !assigned {
		return models.Assignment{}, ErrAssignmentNotFound
	}

	return assignment, nil
}

func (s *assignmentService) record(ctx context.Context, actor Actor, action, entityType string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ProfileID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Metadata:   metadata,
	})
}
