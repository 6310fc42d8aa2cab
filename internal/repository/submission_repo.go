package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	Status       *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Exists(ctx context.Context, assignmentID, studentID uint) (bool, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	ListForStudent(ctx context.Context, studentID uint, filter SubmissionFilter) ([]models.Submission, error)
	ListForTeacher(ctx context.Context, teacherID uint, filter SubmissionFilter) ([]models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)

	// ActiveLinkForStudent resolves the assignment-group link whose group has
	// an active membership for the student. When several links qualify the
	// lowest link id wins, which keeps the historical first-match behavior
	// deterministic.
	ActiveLinkForStudent(ctx context.Context, assignmentID, studentID uint) (models.AssignmentGroup, error)

	// TeacherGradesStudent reports whether the teacher actively teaches a
	// group that both targets the assignment and actively contains the
	// student.
	TeacherGradesStudent(ctx context.Context, assignmentID, studentID, teacherID uint) (bool, error)

	CreateAttachment(ctx context.Context, attachment *models.SubmissionAttachment) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student.User").
		Preload("GradedBy.User").
		Preload("Attachments")
}

func applyFilter(query *gorm.DB, filter SubmissionFilter) *gorm.DB {
	if filter.AssignmentID != nil {
		query = query.Where("submissions.assignment_id = ?", *filter.AssignmentID)
	}
	if filter.Status != nil {
		query = query.Where("submissions.status = ?", *filter.Status)
	}
	return query
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Exists(ctx context.Context, assignmentID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("submissions.assignment_id = ?", assignmentID).
		Where("submissions.student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListForStudent(ctx context.Context, studentID uint, filter SubmissionFilter) ([]models.Submission, error) {
	query := applyFilter(r.baseQuery(ctx), filter).
		Where("submissions.student_id = ?", studentID)

	var submissions []models.Submission
	if err := query.Order("submissions.created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// ListForTeacher returns submissions to assignments the teacher created or
// that target groups the teacher actively teaches.
func (r *submissionRepository) ListForTeacher(ctx context.Context, teacherID uint, filter SubmissionFilter) ([]models.Submission, error) {
	teachingGroups := r.db.Model(&models.GroupTeacher{}).
		Select("group_id").
		Where("teacher_id = ? AND is_active = ?", teacherID, true)

	query := applyFilter(r.baseQuery(ctx), filter).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("LEFT JOIN assignment_groups ON assignment_groups.assignment_id = assignments.id").
		Where("assignments.created_by_id = ? OR assignment_groups.group_id IN (?)", teacherID, teachingGroups).
		Distinct("submissions.*")

	var submissions []models.Submission
	if err := query.Order("submissions.created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("submissions.assignment_id = ?", assignmentID).
		Order("submissions.created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ActiveLinkForStudent(ctx context.Context, assignmentID, studentID uint) (models.AssignmentGroup, error) {
	var link models.AssignmentGroup
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Joins("JOIN group_memberships ON group_memberships.group_id = assignment_groups.group_id").
		Where("assignment_groups.assignment_id = ?", assignmentID).
		Where("group_memberships.student_id = ? AND group_memberships.is_active = ?", studentID, true).
		Order("assignment_groups.id").
		First(&link).Error; err != nil {
		return models.AssignmentGroup{}, err
	}

	return link, nil
}

func (r *submissionRepository) TeacherGradesStudent(ctx context.Context, assignmentID, studentID, teacherID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssignmentGroup{}).
		Joins("JOIN group_teachers ON group_teachers.group_id = assignment_groups.group_id").
		Joins("JOIN group_memberships ON group_memberships.group_id = assignment_groups.group_id").
		Where("assignment_groups.assignment_id = ?", assignmentID).
		Where("group_teachers.teacher_id = ? AND group_teachers.is_active = ?", teacherID, true).
		Where("group_memberships.student_id = ? AND group_memberships.is_active = ?", studentID, true).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) CreateAttachment(ctx context.Context, attachment *models.SubmissionAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}
