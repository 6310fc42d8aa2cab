package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

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

func setupGroupApp(t *testing.T) (*fiber.App, *gorm.DB) {
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
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	groupService := service.NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewUserRepository(db),
		validate,
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		GroupHandler:  handler.NewGroupHandler(groupService, logger),
		JWTMiddleware: headerIdentity,
	})

	return app, db
}

func TestGroupHandlerDuplicateMemberIsBadRequest(t *testing.T) {
	app, db := setupGroupApp(t)

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

	payload, err := json.Marshal(dto.AddStudentRequest{StudentID: student.ID})
	require.NoError(t, err)
	path := "/api/v1/groups/" + strconv.FormatUint(uint64(group.ID), 10) + "/add_student"

	first := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	first.Header.Set("Content-Type", "application/json")
	teacherHeaders(first, teacher)
	resp, err := app.Test(first)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	second := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	second.Header.Set("Content-Type", "application/json")
	teacherHeaders(second, teacher)
	resp, err = app.Test(second)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "student is already in the group", body.Message)
}

func TestGroupHandlerCreatorJoinAsTeacherIsBadRequest(t *testing.T) {
	app, db := setupGroupApp(t)

	teacherUser := models.User{Username: "teacher1", Email: "teacher1@example.com", PasswordHash: "hash", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacherUser).Error)
	teacher := models.TeacherProfile{UserID: teacherUser.ID}
	require.NoError(t, db.Create(&teacher).Error)

	group := models.Group{Name: "Algebra II", Code: "ALG201", CreatedByID: teacher.ID, IsActive: true}
	require.NoError(t, db.Create(&group).Error)

	path := "/api/v1/groups/" + strconv.FormatUint(uint64(group.ID), 10) + "/join_as_teacher"
	req := httptest.NewRequest("POST", path, nil)
	teacherHeaders(req, teacher)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "the group creator already teaches this group", body.Message)
}
