package dto

import "time"

// ProgressSummary aggregates a student's standing across their assignments.
type ProgressSummary struct {
	TotalAssignments int      `json:"total_assignments"`
	Submitted        int      `json:"submitted"`
	Graded           int      `json:"graded"`
	Pending          int      `json:"pending"`
	Overdue          int      `json:"overdue"`
	AveragePoints    *float64 `json:"average_points"`
}

// AssignmentProgress describes one assignment on the student dashboard.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	Deadline     time.Time `json:"deadline"`
	Status       string    `json:"status"`
	SubmissionID *uint     `json:"submission_id"`
	Points       *int      `json:"points"`
	IsLate       bool      `json:"is_late"`
}

// StudentDashboardResponse is the aggregated dashboard payload.
type StudentDashboardResponse struct {
	Summary     ProgressSummary      `json:"summary"`
	Assignments []AssignmentProgress `json:"assignments"`
	GeneratedAt time.Time            `json:"generated_at"`
}
