package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

// AssignmentRepository defines data operations for assignments and their
// group links.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
	ListForTeacher(ctx context.Context, teacherID uint) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, studentID uint) ([]models.Assignment, error)

	ListGroupLinks(ctx context.Context, assignmentID uint) ([]models.AssignmentGroup, error)
	GroupLinkExists(ctx context.Context, assignmentID, groupID uint) (bool, error)
	CreateGroupLink(ctx context.Context, link *models.AssignmentGroup) error
	IsAssignedToStudentGroups(ctx context.Context, assignmentID, studentID uint) (bool, error)
	IsAssignedToTeacherGroups(ctx context.Context, assignmentID, teacherID uint) (bool, error)
	IsTeacherOfGroup(ctx context.Context, groupID, teacherID uint) (bool, error)

	CreateAttachment(ctx context.Context, attachment *models.AssignmentAttachment) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("CreatedBy.User").
		Preload("Attachments")
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.baseQuery(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Assignment{}, id).Error
}

func (r *assignmentRepository) teachingGroups(teacherID uint) *gorm.DB {
	return r.db.Model(&models.GroupTeacher{}).
		Select("group_id").
		Where("teacher_id = ? AND is_active = ?", teacherID, true)
}

// ListForTeacher returns assignments the teacher created plus assignments
// targeting groups the teacher actively teaches.
func (r *assignmentRepository) ListForTeacher(ctx context.Context, teacherID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Joins("LEFT JOIN assignment_groups ON assignment_groups.assignment_id = assignments.id").
		Where("assignments.created_by_id = ? OR assignment_groups.group_id IN (?)", teacherID, r.teachingGroups(teacherID)).
		Distinct("assignments.*").
		Order("assignments.created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

// ListForStudent returns published assignments targeting groups the student
// actively belongs to.
func (r *assignmentRepository) ListForStudent(ctx context.Context, studentID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Joins("JOIN assignment_groups ON assignment_groups.assignment_id = assignments.id").
		Joins("JOIN group_memberships ON group_memberships.group_id = assignment_groups.group_id").
		Where("group_memberships.student_id = ? AND group_memberships.is_active = ?", studentID, true).
		Where("assignments.status = ?", models.AssignmentStatusPublished).
		Distinct("assignments.*").
		Order("assignments.created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListGroupLinks(ctx context.Context, assignmentID uint) ([]models.AssignmentGroup, error) {
	var links []models.AssignmentGroup
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Group").
		Where("assignment_id = ?", assignmentID).
		Order("id").
		Find(&links).Error; err != nil {
		return nil, err
	}

	return links, nil
}

func (r *assignmentRepository) GroupLinkExists(ctx context.Context, assignmentID, groupID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentGroup{}).
		Where("assignment_id = ?", assignmentID).
		Where("group_id = ?", groupID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *assignmentRepository) CreateGroupLink(ctx context.Context, link *models.AssignmentGroup) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// IsAssignedToStudentGroups reports whether the assignment targets any group
// the student actively belongs to.
func (r *assignmentRepository) IsAssignedToStudentGroups(ctx context.Context, assignmentID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentGroup{}).
		Joins("JOIN group_memberships ON group_memberships.group_id = assignment_groups.group_id").
		Where("assignment_groups.assignment_id = ?", assignmentID).
		Where("group_memberships.student_id = ? AND group_memberships.is_active = ?", studentID, true).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// IsAssignedToTeacherGroups reports whether the assignment targets any group
// the teacher actively teaches.
func (r *assignmentRepository) IsAssignedToTeacherGroups(ctx context.Context, assignmentID, teacherID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentGroup{}).
		Joins("JOIN group_teachers ON group_teachers.group_id = assignment_groups.group_id").
		Where("assignment_groups.assignment_id = ?", assignmentID).
		Where("group_teachers.teacher_id = ? AND group_teachers.is_active = ?", teacherID, true).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *assignmentRepository) IsTeacherOfGroup(ctx context.Context, groupID, teacherID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GroupTeacher{}).
		Where("group_id = ?", groupID).
		Where("teacher_id = ? AND is_active = ?", teacherID, true).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *assignmentRepository) CreateAttachment(ctx context.Context, attachment *models.AssignmentAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}
