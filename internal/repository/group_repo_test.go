package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deadline-mate/api/internal/models"
)

func TestGroupRepositoryListForStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	teacher := seedTeacher(t, db, "teacher1")
	student := seedStudent(t, db, "student1")

	joined := seedGroup(t, db, teacher.ID, "AAA111")
	left := seedGroup(t, db, teacher.ID, "BBB222")
	seedGroup(t, db, teacher.ID, "CCC333")

	require.NoError(t, db.Create(&models.GroupMembership{GroupID: joined.ID, StudentID: student.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: left.ID, StudentID: student.ID, Role: models.MembershipRoleMember}).Error)
	require.NoError(t, db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND student_id = ?", left.ID, student.ID).
		Update("is_active", false).Error)

	groups, err := repo.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1, "only active memberships count")
	require.Equal(t, joined.ID, groups[0].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGroupRepositoryCodeExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	teacher := seedTeacher(t, db, "teacher1")
	seedGroup(t, db, teacher.ID, "XYZ789")

	exists, err := repo.CodeExists(ctx, "XYZ789")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.CodeExists(ctx, "NOPE99")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestGroupRepositoryActiveCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	teacher := seedTeacher(t, db, "teacher1")
	other := seedTeacher(t, db, "teacher2")
	active := seedStudent(t, db, "active")
	inactive := seedStudent(t, db, "inactive")

	group := seedGroup(t, db, teacher.ID, "DDD444")
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: group.ID, StudentID: active.ID, Role: models.MembershipRoleMember, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.GroupMembership{GroupID: group.ID, StudentID: inactive.ID, Role: models.MembershipRoleMember}).Error)
	require.NoError(t, db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND student_id = ?", group.ID, inactive.ID).
		Update("is_active", false).Error)
	require.NoError(t, db.Create(&models.GroupTeacher{GroupID: group.ID, TeacherID: other.ID, IsActive: true}).Error)

	loaded, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.ActiveMemberCount())
	require.Equal(t, 1, loaded.ActiveTeacherCount())
}
