package models

import "time"

// Submission lifecycle states.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
	SubmissionStatusReturned  = "returned"
)

// Submission is one student's response to one assignment. The (assignment,
// student) pair is unique; the student never changes after creation. IsLate
// and any provisional late-penalty points are computed once, when the record
// is first persisted.
type Submission struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	AssignmentID uint                   `gorm:"not null;uniqueIndex:idx_submission_pair" json:"assignment_id"`
	StudentID    uint                   `gorm:"not null;uniqueIndex:idx_submission_pair" json:"student_id"`
	Comment      string                 `gorm:"type:text" json:"comment"`
	Status       string                 `gorm:"size:10;not null;default:submitted" json:"status"`
	Points       *int                   `json:"points"`
	IsLate       bool                   `gorm:"not null;default:false" json:"is_late"`
	Feedback     string                 `gorm:"type:text" json:"feedback"`
	GradedByID   *uint                  `json:"graded_by"`
	GradedAt     *time.Time             `json:"graded_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Assignment   Assignment             `json:"-"`
	Student      StudentProfile         `json:"-"`
	GradedBy     *TeacherProfile        `gorm:"foreignKey:GradedByID" json:"-"`
	Attachments  []SubmissionAttachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGraded reports whether a teacher has recorded a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// LatePenaltyPoints computes the provisional score for a late submission:
// floor(maxPoints * (1 - penaltyPercentage/100)).
func LatePenaltyPoints(maxPoints, penaltyPercentage int) int {
	return maxPoints * (100 - penaltyPercentage) / 100
}

// SubmissionAttachment is a file a student attached to their submission.
type SubmissionAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null" json:"submission_id"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
