package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

// MembershipRepository defines data operations for group rosters, both the
// student memberships and the teacher records.
type MembershipRepository interface {
	GetMembership(ctx context.Context, groupID, studentID uint) (models.GroupMembership, error)
	GetMembershipByID(ctx context.Context, id, groupID uint) (models.GroupMembership, error)
	CreateMembership(ctx context.Context, membership *models.GroupMembership) error
	UpdateMembership(ctx context.Context, membership *models.GroupMembership) error

	GetGroupTeacher(ctx context.Context, groupID, teacherID uint) (models.GroupTeacher, error)
	CreateGroupTeacher(ctx context.Context, record *models.GroupTeacher) error
	UpdateGroupTeacher(ctx context.Context, record *models.GroupTeacher) error
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository instantiates the repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) GetMembership(ctx context.Context, groupID, studentID uint) (models.GroupMembership, error) {
	var membership models.GroupMembership
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Where("student_id = ?", studentID).
		First(&membership).Error; err != nil {
		return models.GroupMembership{}, err
	}

	return membership, nil
}

func (r *membershipRepository) GetMembershipByID(ctx context.Context, id, groupID uint) (models.GroupMembership, error) {
	var membership models.GroupMembership
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("group_id = ?", groupID).
		First(&membership).Error; err != nil {
		return models.GroupMembership{}, err
	}

	return membership, nil
}

func (r *membershipRepository) CreateMembership(ctx context.Context, membership *models.GroupMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *membershipRepository) UpdateMembership(ctx context.Context, membership *models.GroupMembership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

func (r *membershipRepository) GetGroupTeacher(ctx context.Context, groupID, teacherID uint) (models.GroupTeacher, error) {
	var record models.GroupTeacher
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Where("teacher_id = ?", teacherID).
		First(&record).Error; err != nil {
		return models.GroupTeacher{}, err
	}

	return record, nil
}

func (r *membershipRepository) CreateGroupTeacher(ctx context.Context, record *models.GroupTeacher) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *membershipRepository) UpdateGroupTeacher(ctx context.Context, record *models.GroupTeacher) error {
	return r.db.WithContext(ctx).Save(record).Error
}
