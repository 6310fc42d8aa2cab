package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/models"
)

// UserRepository defines data operations for users and their role profiles.
type UserRepository interface {
	CreateWithProfile(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetStudentProfile(ctx context.Context, id uint) (models.StudentProfile, error)
	GetTeacherProfile(ctx context.Context, id uint) (models.TeacherProfile, error)
	ListStudents(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateWithProfile persists the user together with its role profile in a
// single transaction, so an identity never exists without its profile.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		switch user.Role {
		case models.RoleTeacher:
			profile := models.TeacherProfile{UserID: user.ID}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			user.Teacher = &profile
		default:
			profile := models.StudentProfile{UserID: user.ID}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			user.Student = &profile
		}

		return nil
	})
}

func (r *userRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Preload("Student").
		Preload("Teacher")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.baseQuery(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.baseQuery(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.baseQuery(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetStudentProfile(ctx context.Context, id uint) (models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return models.StudentProfile{}, err
	}

	return profile, nil
}

func (r *userRepository) GetTeacherProfile(ctx context.Context, id uint) (models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return models.TeacherProfile{}, err
	}

	return profile, nil
}

func (r *userRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.baseQuery(ctx).
		Where("role = ?", models.RoleStudent).
		Order("username").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
