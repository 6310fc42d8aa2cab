package dto

import (
	"time"

	"github.com/deadline-mate/api/internal/models"
)

// SubmissionCreateRequest carries a student's response to an assignment.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Comment      string `json:"comment"`
}

// GradeRequest carries a teacher's grading mutation. Fields left nil keep
// their current values.
type GradeRequest struct {
	Status   *string `json:"status" validate:"omitempty,oneof=submitted graded returned"`
	Points   *int    `json:"points" validate:"omitempty,gte=0"`
	Feedback *string `json:"feedback"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted graded returned"`
}

// StudentLite summarizes a student in nested responses.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                 `json:"id"`
	AssignmentID uint                 `json:"assignment_id"`
	StudentID    uint                 `json:"student_id"`
	Comment      string               `json:"comment"`
	Status       string               `json:"status"`
	Points       *int                 `json:"points"`
	IsLate       bool                 `json:"is_late"`
	Feedback     string               `json:"feedback"`
	GradedBy     *uint                `json:"graded_by"`
	GradedAt     *time.Time           `json:"graded_at"`
	Attachments  []AttachmentResponse `json:"attachments"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Assignment   AssignmentLite       `json:"assignment"`
	Student      StudentLite          `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Comment:      model.Comment,
		Status:       model.Status,
		Points:       model.Points,
		IsLate:       model.IsLate,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedByID,
		GradedAt:     model.GradedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:        model.Assignment.ID,
			Title:     model.Assignment.Title,
			Status:    model.Assignment.Status,
			Deadline:  model.Assignment.Deadline,
			MaxPoints: model.Assignment.MaxPoints,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.User.FullName(),
			Email: model.Student.User.Email,
		}
	}

	if len(model.Attachments) > 0 {
		attachments := make([]AttachmentResponse, 0, len(model.Attachments))
		for _, attachment := range model.Attachments {
			attachments = append(attachments, AttachmentResponse{
				ID:         attachment.ID,
				FileURL:    attachment.FileURL,
				Filename:   attachment.Filename,
				UploadedAt: attachment.UploadedAt,
			})
		}
		response.Attachments = attachments
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
