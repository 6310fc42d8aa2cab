package dto

import (
	"time"

	"github.com/deadline-mate/api/internal/models"
)

// AssignmentCreateRequest carries a new assignment payload.
type AssignmentCreateRequest struct {
	Title                 string    `json:"title" validate:"required,max=255"`
	Description           string    `json:"description"`
	Status                string    `json:"status" validate:"omitempty,oneof=draft published archived"`
	Deadline              time.Time `json:"deadline" validate:"required"`
	MaxPoints             int       `json:"max_points" validate:"omitempty,gt=0"`
	AllowLateSubmissions  *bool     `json:"allow_late_submissions"`
	LatePenaltyPercentage int       `json:"late_penalty_percentage" validate:"gte=0,lte=100"`
}

// AssignmentUpdateRequest carries partial assignment mutations.
type AssignmentUpdateRequest struct {
	Title                 *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description           *string    `json:"description"`
	Status                *string    `json:"status" validate:"omitempty,oneof=draft published archived"`
	Deadline              *time.Time `json:"deadline"`
	MaxPoints             *int       `json:"max_points" validate:"omitempty,gt=0"`
	AllowLateSubmissions  *bool      `json:"allow_late_submissions"`
	LatePenaltyPercentage *int       `json:"late_penalty_percentage" validate:"omitempty,gte=0,lte=100"`
}

// AssignGroupRequest links an assignment to a group, optionally overriding
// the deadline for that group.
type AssignGroupRequest struct {
	GroupID        uint       `json:"group_id" validate:"required,gt=0"`
	CustomDeadline *time.Time `json:"custom_deadline"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID                    uint                 `json:"id"`
	Title                 string               `json:"title"`
	Description           string               `json:"description"`
	CreatedBy             uint                 `json:"created_by"`
	CreatedByName         string               `json:"created_by_name"`
	Status                string               `json:"status"`
	Deadline              time.Time            `json:"deadline"`
	MaxPoints             int                  `json:"max_points"`
	AllowLateSubmissions  bool                 `json:"allow_late_submissions"`
	LatePenaltyPercentage int                  `json:"late_penalty_percentage"`
	IsDeadlineExpired     bool                 `json:"is_deadline_expired"`
	Attachments           []AttachmentResponse `json:"attachments"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// AssignmentLite summarizes an assignment in nested responses.
type AssignmentLite struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Deadline  time.Time `json:"deadline"`
	MaxPoints int       `json:"max_points"`
}

// AssignmentGroupResponse serializes an assignment-group link.
type AssignmentGroupResponse struct {
	ID                uint       `json:"id"`
	AssignmentID      uint       `json:"assignment_id"`
	GroupID           uint       `json:"group_id"`
	GroupName         string     `json:"group_name"`
	CustomDeadline    *time.Time `json:"custom_deadline"`
	EffectiveDeadline time.Time  `json:"effective_deadline"`
	AssignedAt        time.Time  `json:"assigned_at"`
}

// AttachmentResponse serializes an uploaded file reference.
type AttachmentResponse struct {
	ID         uint      `json:"id"`
	FileURL    string    `json:"file_url"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO. The supplied
// reference time decides the expired flag.
func NewAssignmentResponse(model models.Assignment, reference time.Time) AssignmentResponse {
	attachments := make([]AttachmentResponse, 0, len(model.Attachments))
	for _, attachment := range model.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:         attachment.ID,
			FileURL:    attachment.FileURL,
			Filename:   attachment.Filename,
			UploadedAt: attachment.UploadedAt,
		})
	}

	return AssignmentResponse{
		ID:                    model.ID,
		Title:                 model.Title,
		Description:           model.Description,
		CreatedBy:             model.CreatedByID,
		CreatedByName:         model.CreatedBy.User.FullName(),
		Status:                model.Status,
		Deadline:              model.Deadline,
		MaxPoints:             model.MaxPoints,
		AllowLateSubmissions:  model.AllowLateSubmissions,
		LatePenaltyPercentage: model.LatePenaltyPercentage,
		IsDeadlineExpired:     model.IsDeadlineExpired(reference),
		Attachments:           attachments,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, reference time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, reference))
	}

	return responses
}

// NewAssignmentGroupResponse converts an AssignmentGroup model into a DTO.
func NewAssignmentGroupResponse(model models.AssignmentGroup) AssignmentGroupResponse {
	return AssignmentGroupResponse{
		ID:                model.ID,
		AssignmentID:      model.AssignmentID,
		GroupID:           model.GroupID,
		GroupName:         model.Group.Name,
		CustomDeadline:    model.CustomDeadline,
		EffectiveDeadline: model.EffectiveDeadline(),
		AssignedAt:        model.AssignedAt,
	}
}

// NewAssignmentGroupResponseSlice converts link models into DTOs.
func NewAssignmentGroupResponseSlice(links []models.AssignmentGroup) []AssignmentGroupResponse {
	responses := make([]AssignmentGroupResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, NewAssignmentGroupResponse(link))
	}

	return responses
}
