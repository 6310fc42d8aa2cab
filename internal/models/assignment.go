package models

import "time"

// Assignment lifecycle states. Transitions are not constrained beyond the
// enumeration itself.
const (
	AssignmentStatusDraft     = "draft"
	AssignmentStatusPublished = "published"
	AssignmentStatusArchived  = "archived"
)

// Assignment is a unit of work created by a teacher with a deadline, a point
// scale and a late-submission policy.
type Assignment struct {
	ID                    uint                   `gorm:"primaryKey" json:"id"`
	Title                 string                 `gorm:"size:255;not null" json:"title"`
	Description           string                 `gorm:"type:text" json:"description"`
	CreatedByID           uint                   `gorm:"not null" json:"created_by"`
	Status                string                 `gorm:"size:10;not null;default:draft" json:"status"`
	Deadline              time.Time              `gorm:"not null" json:"deadline"`
	MaxPoints             int                    `gorm:"not null;default:100" json:"max_points"`
	AllowLateSubmissions  bool                   `gorm:"not null;default:true" json:"allow_late_submissions"`
	LatePenaltyPercentage int                    `gorm:"not null;default:0" json:"late_penalty_percentage"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	CreatedBy             TeacherProfile         `gorm:"foreignKey:CreatedByID" json:"-"`
	Groups                []AssignmentGroup      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Attachments           []AssignmentAttachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions           []Submission           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsDeadlineExpired reports whether the assignment's own deadline has passed.
func (a Assignment) IsDeadlineExpired(reference time.Time) bool {
	return reference.After(a.Deadline)
}

// AssignmentGroup assigns an assignment to a group, optionally overriding the
// deadline for that group's students.
type AssignmentGroup struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AssignmentID   uint       `gorm:"not null;uniqueIndex:idx_assignment_group_pair" json:"assignment_id"`
	GroupID        uint       `gorm:"not null;uniqueIndex:idx_assignment_group_pair" json:"group_id"`
	CustomDeadline *time.Time `json:"custom_deadline"`
	AssignedAt     time.Time  `gorm:"autoCreateTime" json:"assigned_at"`
	Assignment     Assignment `json:"-"`
	Group          Group      `json:"-"`
}

// EffectiveDeadline returns the per-group override when set, otherwise the
// assignment's own deadline.
func (ag AssignmentGroup) EffectiveDeadline() time.Time {
	if ag.CustomDeadline != nil {
		return *ag.CustomDeadline
	}
	return ag.Assignment.Deadline
}

// AssignmentAttachment is a file a teacher attached to an assignment.
type AssignmentAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null" json:"assignment_id"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
