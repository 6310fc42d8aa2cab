package dto

import (
	"time"

	"github.com/deadline-mate/api/internal/models"
)

// GroupCreateRequest carries a new group payload. The code is generated when
// left blank.
type GroupCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"omitempty,max=10"`
	Description string `json:"description"`
}

// GroupUpdateRequest carries partial group mutations.
type GroupUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// AddStudentRequest adds (or reactivates) a student in a group.
type AddStudentRequest struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	Role      string `json:"role" validate:"omitempty,oneof=member monitor"`
}

// RemoveStudentRequest deactivates a membership.
type RemoveStudentRequest struct {
	MembershipID uint `json:"membership_id" validate:"required,gt=0"`
}

// AddTeacherRequest adds (or reactivates) a teacher in a group.
type AddTeacherRequest struct {
	TeacherID uint `json:"teacher_id" validate:"required,gt=0"`
}

// RemoveTeacherRequest deactivates a group teacher record.
type RemoveTeacherRequest struct {
	TeacherID uint `json:"teacher_id" validate:"required,gt=0"`
}

// GroupResponse is returned to API clients when viewing groups.
type GroupResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Description   string    `json:"description"`
	CreatedBy     uint      `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
	IsActive      bool      `json:"is_active"`
	MemberCount   int       `json:"member_count"`
	TeacherCount  int       `json:"teacher_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// MembershipResponse serializes a group membership record.
type MembershipResponse struct {
	ID        uint      `json:"id"`
	GroupID   uint      `json:"group_id"`
	StudentID uint      `json:"student_id"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	JoinedAt  time.Time `json:"joined_at"`
}

// GroupTeacherResponse serializes a group teacher record.
type GroupTeacherResponse struct {
	ID        uint      `json:"id"`
	GroupID   uint      `json:"group_id"`
	TeacherID uint      `json:"teacher_id"`
	IsActive  bool      `json:"is_active"`
	JoinedAt  time.Time `json:"joined_at"`
}

// NewGroupResponse converts a Group model into a DTO.
func NewGroupResponse(model models.Group) GroupResponse {
	return GroupResponse{
		ID:            model.ID,
		Name:          model.Name,
		Code:          model.Code,
		Description:   model.Description,
		CreatedBy:     model.CreatedByID,
		CreatedByName: model.CreatedBy.User.FullName(),
		IsActive:      model.IsActive,
		MemberCount:   model.ActiveMemberCount(),
		TeacherCount:  model.ActiveTeacherCount(),
		CreatedAt:     model.CreatedAt,
	}
}

// NewGroupResponseSlice converts group models into DTOs.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}

	return responses
}

// NewMembershipResponse converts a GroupMembership model into a DTO.
func NewMembershipResponse(model models.GroupMembership) MembershipResponse {
	return MembershipResponse{
		ID:        model.ID,
		GroupID:   model.GroupID,
		StudentID: model.StudentID,
		Role:      model.Role,
		IsActive:  model.IsActive,
		JoinedAt:  model.JoinedAt,
	}
}

// NewGroupTeacherResponse converts a GroupTeacher model into a DTO.
func NewGroupTeacherResponse(model models.GroupTeacher) GroupTeacherResponse {
	return GroupTeacherResponse{
		ID:        model.ID,
		GroupID:   model.GroupID,
		TeacherID: model.TeacherID,
		IsActive:  model.IsActive,
		JoinedAt:  model.JoinedAt,
	}
}
