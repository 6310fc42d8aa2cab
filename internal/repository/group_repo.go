package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

// GroupRepository defines data operations for groups.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (models.Group, error)
	ListAll(ctx context.Context) ([]models.Group, error)
	ListForStudent(ctx context.Context, studentID uint) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Group{}).
		Preload("CreatedBy.User").
		Preload("Memberships").
		Preload("Teachers")
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := r.baseQuery(ctx).First(&group, id).Error; err != nil {
		return models.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) ListAll(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.baseQuery(ctx).Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// ListForStudent returns groups the student actively belongs to.
func (r *groupRepository) ListForStudent(ctx context.Context, studentID uint) ([]models.Group, error) {
	var groups []models.Group
	if err := r.baseQuery(ctx).
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Where("group_memberships.student_id = ? AND group_memberships.is_active = ?", studentID, true).
		Order("groups.created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Group{}, id).Error
}

func (r *groupRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Group{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
