package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/deadline-mate/api/internal/dto"
	"github.com/deadline-mate/api/internal/models"
)

func gradableSubmission() models.Submission {
	return models.Submission{
		ID:           1,
		AssignmentID: 7,
		StudentID:    3,
		Status:       models.SubmissionStatusSubmitted,
		Assignment: models.Assignment{
			ID:          7,
			Title:       "Essay",
			CreatedByID: 1,
			MaxPoints:   100,
		},
	}
}

func newGradingServiceForTest(submissions *fakeSubmissionRepo, now time.Time) GradingService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(submissions, validate, nil, testLogger()).(*gradingService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGradingServiceCreatorGrades(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{hasRecord: true, submission: gradableSubmission()}
	svc := newGradingServiceForTest(submissions, now)

	points := 95
	feedback := "solid work"
	result, err := svc.Grade(context.Background(), Actor{UserID: 10, Role: models.RoleTeacher, ProfileID: 1}, 1, dto.GradeRequest{
		Points:   &points,
		Feedback: &feedback,
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, result.Status, "points imply graded status")
	require.Equal(t, 95, *result.Points)
	require.Equal(t, "solid work", result.Feedback)
	require.NotNil(t, result.GradedBy)
	require.Equal(t, uint(1), *result.GradedBy)
	require.NotNil(t, result.GradedAt)
	require.Equal(t, now, *result.GradedAt)
	require.Equal(t, 1, submissions.updateCalls)
}

func TestGradingServicePointsMayExceedMaximum(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{hasRecord: true, submission: gradableSubmission()}
	svc := newGradingServiceForTest(submissions, now)

	points := 120
	result, err := svc.Grade(context.Background(), Actor{UserID: 10, Role: models.RoleTeacher, ProfileID: 1}, 1, dto.GradeRequest{Points: &points})
	require.NoError(t, err)
	require.Equal(t, 120, *result.Points)
}

func TestGradingServiceGroupTeacherGrades(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{
		hasRecord:  true,
		submission: gradableSubmission(),
		graders:    map[uint]bool{8: true},
	}
	svc := newGradingServiceForTest(submissions, now)

	points := 70
	result, err := svc.Grade(context.Background(), Actor{UserID: 80, Role: models.RoleTeacher, ProfileID: 8}, 1, dto.GradeRequest{Points: &points})
	require.NoError(t, err)
	require.Equal(t, uint(8), *result.GradedBy)
}

func TestGradingServiceOutsiderForbidden(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{hasRecord: true, submission: gradableSubmission()}
	svc := newGradingServiceForTest(submissions, now)

	points := 70
	_, err := svc.Grade(context.Background(), Actor{UserID: 90, Role: models.RoleTeacher, ProfileID: 9}, 1, dto.GradeRequest{Points: &points})
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, 0, submissions.updateCalls)
}

func TestGradingServiceRejectsStudents(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{hasRecord: true, submission: gradableSubmission()}
	svc := newGradingServiceForTest(submissions, now)

	_, err := svc.Grade(context.Background(), Actor{UserID: 30, Role: models.RoleStudent, ProfileID: 3}, 1, dto.GradeRequest{})
	require.ErrorIs(t, err, ErrTeacherOnly)
}

func TestGradingServiceStatusOverride(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{hasRecord: true, submission: gradableSubmission()}
	svc := newGradingServiceForTest(submissions, now)

	status := models.SubmissionStatusReturned
	result, err := svc.Grade(context.Background(), Actor{UserID: 10, Role: models.RoleTeacher, ProfileID: 1}, 1, dto.GradeRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusReturned, result.Status)
}

func TestGradingServiceUnknownSubmission(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	submissions := &fakeSubmissionRepo{}
	svc := newGradingServiceForTest(submissions, now)

	_, err := svc.Grade(context.Background(), Actor{UserID: 10, Role: models.RoleTeacher, ProfileID: 1}, 1, dto.GradeRequest{})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
