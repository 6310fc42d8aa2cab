package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deadline-mate/api/internal/dto"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
)

// DashboardService aggregates a student's progress across their assignments.
type DashboardService interface {
	StudentDashboard(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error)
}

type dashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error) {
	if !actor.IsStudent() {
		return dto.StudentDashboardResponse{}, ErrStudentOnly
	}

	cacheKey := fmt.Sprintf("dashboard:student:%d", actor.ProfileID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", actor.ProfileID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	assignments, err := s.assignments.ListForStudent(ctx, actor.ProfileID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.ListForStudent(ctx, actor.ProfileID, repository.SubmissionFilter{})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()

	submissionByAssignment := map[uint]models.Submission{}
	for _, submission := range submissions {
		if _, exists := submissionByAssignment[submission.AssignmentID]; !exists {
			submissionByAssignment[submission.AssignmentID] = submission
		}
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))
	var pointsTotal float64
	var gradedCount int

	for _, assignment := range assignments {
		summary.TotalAssignments++
		submission, submitted := submissionByAssignment[assignment.ID]
		expired := assignment.IsDeadlineExpired(now)

		item := dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Deadline:     assignment.Deadline,
			Status:       "pending",
		}

		if submitted {
			item.SubmissionID = &submission.ID
			item.Points = submission.Points
			item.IsLate = submission.IsLate
			item.Status = submission.Status
			summary.Submitted++

			if submission.IsGraded() {
				summary.Graded++
				if submission.Points != nil {
					pointsTotal += float64(*submission.Points)
					gradedCount++
				}
			}
		} else {
			summary.Pending++
			if expired {
				summary.Overdue++
			}
		}

		progress = append(progress, item)
	}

	if gradedCount > 0 {
		average := pointsTotal / float64(gradedCount)
		summary.AveragePoints = &average
	}

	return dto.StudentDashboardResponse{
		Summary:     summary,
		Assignments: progress,
		GeneratedAt: now,
	}
}
