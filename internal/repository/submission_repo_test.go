package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedTeacher(t *testing.T, db *gorm.DB, username string) models.TeacherProfile {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleTeacher,
	}
	require.NoError(t, db.Create(&user).Error)
	profile := models.TeacherProfile{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func seedStudent(t *testing.T, db *gorm.DB, username string) models.StudentProfile {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	profile := models.StudentProfile{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func seedGroup(t *testing.T, db *gorm.DB, teacherID uint, code string) models.Group {
	t.Helper()
	group := models.Group{Name: "Group " + code, Code: code, CreatedByID: teacherID, IsActive: true}
	require.NoError(t, db.Create(&group).Error)
	return group
}

func seedAssignment(t *testing.T, db *gorm.DB, teacherID uint, status string, deadline time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		Title:                "Essay",
		CreatedByID:          teacherID,
		Status:               status,
		Deadline:             deadline,
		MaxPoints:            100,
		AllowLateSubmissions: true,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func TestSubmissionRepositoryActiveLinkForStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	teacher := seedTeacher(t, db, "teacher1")
	student := seedStudent(t, db, "student1")
	deadline := time.Now().Add(24 * time.Hour)
	assignment := seedAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, deadline)

	first := seedGroup(t, db, teacher.ID, "AAA111")
	second := seedGroup(t, db, teacher.ID, "BBB222")

	custom := deadline.Add(72 * time.Hour)
	require.NoError(t, db.Create(&models.AssignmentGroup{AssignmentID: assignment.ID, GroupID: first.ID}).Error)
	require.NoError(t, db.Create(&models.AssignmentGroup{AssignmentID: assignment.ID, GroupID: second.ID, CustomDeadline: &custom}).Error)

	// Active only in the second group: its link is resolved.
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: second.ID, StudentID: student.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)

	link, err := repo.ActiveLinkForStudent(ctx, assignment.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, link.GroupID)
	require.NotNil(t, link.CustomDeadline)
	require.Equal(t, assignment.ID, link.Assignment.ID)

	// Once also active in the first group, the lowest link id wins.
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: first.ID, StudentID: student.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)

	link, err = repo.ActiveLinkForStudent(ctx, assignment.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, link.GroupID)
	require.Nil(t, link.CustomDeadline)
}

func TestSubmissionRepositoryActiveLinkIgnoresInactiveMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	teacher := seedTeacher(t, db, "teacher1")
	student := seedStudent(t, db, "student1")
	assignment := seedAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, time.Now().Add(time.Hour))
	group := seedGroup(t, db, teacher.ID, "CCC333")

	require.NoError(t, db.Create(&models.AssignmentGroup{AssignmentID: assignment.ID, GroupID: group.ID}).Error)
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: group.ID, StudentID: student.ID, Role: models.MembershipRoleMember}).Error)
	require.NoError(t, db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND student_id = ?", group.ID, student.ID).
		Update("is_active", false).Error)

	_, err := repo.ActiveLinkForStudent(ctx, assignment.ID, student.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryTeacherGradesStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	creator := seedTeacher(t, db, "creator")
	grader := seedTeacher(t, db, "grader")
	outsider := seedTeacher(t, db, "outsider")
	student := seedStudent(t, db, "student1")

	assignment := seedAssignment(t, db, creator.ID, models.AssignmentStatusPublished, time.Now().Add(time.Hour))
	group := seedGroup(t, db, creator.ID, "DDD444")

	require.NoError(t, db.Create(&models.AssignmentGroup{AssignmentID: assignment.ID, GroupID: group.ID}).Error)
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: group.ID, StudentID: student.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.GroupTeacher{GroupID: group.ID, TeacherID: grader.ID, IsActive: true}).Error)

	grades, err := repo.TeacherGradesStudent(ctx, assignment.ID, student.ID, grader.ID)
	require.NoError(t, err)
	require.True(t, grades)

	grades, err = repo.TeacherGradesStudent(ctx, assignment.ID, student.ID, outsider.ID)
	require.NoError(t, err)
	require.False(t, grades)

	// Deactivated teaching record no longer grants grading rights.
	require.NoError(t, db.Model(&models.GroupTeacher{}).
		Where("group_id = ? AND teacher_id = ?", group.ID, grader.ID).
		Update("is_active", false).Error)

	grades, err = repo.TeacherGradesStudent(ctx, assignment.ID, student.ID, grader.ID)
	require.NoError(t, err)
	require.False(t, grades)
}

func TestSubmissionRepositoryListForTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	creator := seedTeacher(t, db, "creator")
	colleague := seedTeacher(t, db, "colleague")
	student := seedStudent(t, db, "student1")

	assignment := seedAssignment(t, db, creator.ID, models.AssignmentStatusPublished, time.Now().Add(time.Hour))
	group := seedGroup(t, db, creator.ID, "EEE555")
	require.NoError(t, db.Create(&models.AssignmentGroup{AssignmentID: assignment.ID, GroupID: group.ID}).Error)
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: group.ID, StudentID: student.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	submissions, err := repo.ListForTeacher(ctx, creator.ID, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, submissions, 1, "creator sees submissions to own assignments")

	submissions, err = repo.ListForTeacher(ctx, colleague.ID, SubmissionFilter{})
	require.NoError(t, err)
	require.Empty(t, submissions, "unrelated teacher sees nothing")

	require.NoError(t, db.Create(&models.GroupTeacher{GroupID: group.ID, TeacherID: colleague.ID, IsActive: true}).Error)

	submissions, err = repo.ListForTeacher(ctx, colleague.ID, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, submissions, 1, "group teacher sees submissions to assigned work")
}

func TestSubmissionRepositoryExistsAndFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	teacher := seedTeacher(t, db, "teacher1")
	student := seedStudent(t, db, "student1")
	assignment := seedAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, time.Now().Add(time.Hour))

	exists, err := repo.Exists(ctx, assignment.ID, student.ID)
	require.NoError(t, err)
	require.False(t, exists)

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	exists, err = repo.Exists(ctx, assignment.ID, student.ID)
	require.NoError(t, err)
	require.True(t, exists)

	graded := models.SubmissionStatusGraded
	submissions, err := repo.ListForStudent(ctx, student.ID, SubmissionFilter{Status: &graded})
	require.NoError(t, err)
	require.Empty(t, submissions)

	submissions, err = repo.ListForStudent(ctx, student.ID, SubmissionFilter{AssignmentID: &assignment.ID})
	require.NoError(t, err)
	require.Len(t, submissions, 1)
}
