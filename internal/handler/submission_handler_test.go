package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/config"
	"github.com/deadline-mate/api/internal/dto"
	"github.com/deadline-mate/api/internal/handler"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
	"github.com/deadline-mate/api/internal/router"
	"github.com/deadline-mate/api/internal/service"
)

type handlerTestUploader struct{}

func (u *handlerTestUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

// headerIdentity stands in for the JWT middleware and reads the caller
// identity from test headers.
func headerIdentity(c *fiber.Ctx) error {
	if v, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
		c.Locals("user_id", uint(v))
	}
	if v, err := strconv.ParseUint(c.Get("X-Test-Profile"), 10, 64); err == nil {
		c.Locals("profile_id", uint(v))
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func setupSubmissionApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.TeacherProfile{},
		&models.Group{},
		&models.GroupMembership{},
		&models.GroupTeacher{},
		&models.Assignment{},
		&models.AssignmentGroup{},
		&models.AssignmentAttachment{},
		&models.Submission{},
		&models.SubmissionAttachment{},
		&models.ActivityLog{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	uploader := &handlerTestUploader{}

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, activity, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, activity, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, gradingService, logger),
		JWTMiddleware:     headerIdentity,
	})

	return app, db
}

func seedSubmissionFixture(t *testing.T, db *gorm.DB) (models.StudentProfile, models.TeacherProfile, models.Assignment) {
	t.Helper()

	teacherUser := models.User{Username: "teacher1", Email: "teacher1@example.com", PasswordHash: "hash", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacherUser).Error)
	teacher := models.TeacherProfile{UserID: teacherUser.ID}
	require.NoError(t, db.Create(&teacher).Error)

	studentUser := models.User{Username: "student1", Email: "student1@example.com", PasswordHash: "hash", Role: models.RoleStudent}
	require.NoError(t, db.Create(&studentUser).Error)
	student := models.StudentProfile{UserID: studentUser.ID}
	require.NoError(t, db.Create(&student).Error)

	group := models.Group{Name: "Algebra II", Code: "ALG201", CreatedByID: teacher.ID, IsActive: true}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: group.ID, StudentID: student.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)

	assignment := models.Assignment{
		Title:       "Lab report",
		CreatedByID: teacher.ID,
		Status:      models.AssignmentStatusPublished,
		Deadline:    time.Now().Add(48 * time.Hour),
		MaxPoints:   100,
	}
	require.NoError(t, db.Create(&assignment).Error)
	require.NoError(t, db.Create(&models.AssignmentGroup{AssignmentID: assignment.ID, GroupID: group.ID}).Error)

	return student, teacher, assignment
}

func studentHeaders(req *http.Request, student models.StudentProfile) {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(student.UserID), 10))
	req.Header.Set("X-Test-Profile", strconv.FormatUint(uint64(student.ID), 10))
	req.Header.Set("X-Test-Role", models.RoleStudent)
}

func teacherHeaders(req *http.Request, teacher models.TeacherProfile) {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(teacher.UserID), 10))
	req.Header.Set("X-Test-Profile", strconv.FormatUint(uint64(teacher.ID), 10))
	req.Header.Set("X-Test-Role", models.RoleTeacher)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestSubmissionHandlerSubmitAndGrade(t *testing.T) {
	app, db := setupSubmissionApp(t)
	student, teacher, assignment := seedSubmissionFixture(t, db)

	payload, err := json.Marshal(dto.SubmissionCreateRequest{AssignmentID: assignment.ID, Comment: "done"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	studentHeaders(req, student)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, "submission created", created.Message)
	require.NotZero(t, created.Data.ID)
	require.False(t, created.Data.IsLate)
	require.Equal(t, assignment.ID, created.Data.AssignmentID)

	gradeBody, err := json.Marshal(map[string]interface{}{"points": 88, "feedback": "well done"})
	require.NoError(t, err)

	gradeReq := httptest.NewRequest("PATCH", "/api/v1/submissions/"+strconv.FormatUint(uint64(created.Data.ID), 10)+"/grade", bytes.NewReader(gradeBody))
	gradeReq.Header.Set("Content-Type", "application/json")
	teacherHeaders(gradeReq, teacher)
	gradeResp, err := app.Test(gradeReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, gradeResp.StatusCode)

	var graded struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, gradeResp, &graded)
	require.True(t, graded.Success)
	require.Equal(t, models.SubmissionStatusGraded, graded.Data.Status)
	require.NotNil(t, graded.Data.Points)
	require.Equal(t, 88, *graded.Data.Points)
	require.Equal(t, "well done", graded.Data.Feedback)
	require.NotNil(t, graded.Data.GradedBy)
	require.Equal(t, teacher.ID, *graded.Data.GradedBy)
}

func TestSubmissionHandlerDuplicateConflict(t *testing.T) {
	app, db := setupSubmissionApp(t)
	student, _, assignment := seedSubmissionFixture(t, db)

	payload, err := json.Marshal(dto.SubmissionCreateRequest{AssignmentID: assignment.ID})
	require.NoError(t, err)

	first := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	first.Header.Set("Content-Type", "application/json")
	studentHeaders(first, student)
	resp, err := app.Test(first)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	second := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	second.Header.Set("Content-Type", "application/json")
	studentHeaders(second, student)
	resp, err = app.Test(second)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "assignment already submitted", body.Message)
}

func TestSubmissionHandlerOutsiderHidden(t *testing.T) {
	app, db := setupSubmissionApp(t)
	student, _, assignment := seedSubmissionFixture(t, db)

	payload, err := json.Marshal(dto.SubmissionCreateRequest{AssignmentID: assignment.ID})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	studentHeaders(req, student)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	otherUser := models.User{Username: "other", Email: "other@example.com", PasswordHash: "hash", Role: models.RoleStudent}
	require.NoError(t, db.Create(&otherUser).Error)
	other := models.StudentProfile{UserID: otherUser.ID}
	require.NoError(t, db.Create(&other).Error)

	getReq := httptest.NewRequest("GET", "/api/v1/submissions/"+strconv.FormatUint(uint64(created.Data.ID), 10), nil)
	studentHeaders(getReq, other)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, getResp.StatusCode)
	require.NoError(t, getResp.Body.Close())
}
