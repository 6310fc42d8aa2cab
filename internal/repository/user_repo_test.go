package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

func TestUserRepositoryCreateWithProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	student := models.User{
		Username:     "amelia",
		Email:        "amelia@example.com",
		PasswordHash: "hash",
		FirstName:    "Amelia",
		LastName:     "Reed",
		Role:         models.RoleStudent,
	}
	require.NoError(t, repo.CreateWithProfile(ctx, &student))
	require.NotNil(t, student.Student)
	require.Nil(t, student.Teacher)
	require.Equal(t, student.ID, student.Student.UserID)

	teacher := models.User{
		Username:     "brown",
		Email:        "brown@example.com",
		PasswordHash: "hash",
		Role:         models.RoleTeacher,
	}
	require.NoError(t, repo.CreateWithProfile(ctx, &teacher))
	require.NotNil(t, teacher.Teacher)
	require.Nil(t, teacher.Student)

	loaded, err := repo.GetByUsername(ctx, "amelia")
	require.NoError(t, err)
	require.NotNil(t, loaded.Student)
	require.Equal(t, "Amelia Reed", loaded.FullName())

	byEmail, err := repo.GetByEmail(ctx, "amelia@example.com")
	require.NoError(t, err)
	require.Equal(t, loaded.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryListStudents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedStudent(t, db, "zoe")
	seedStudent(t, db, "adam")
	seedTeacher(t, db, "teacher1")

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "adam", students[0].Username, "expected username ordering")
}
