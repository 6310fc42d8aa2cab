package models

import "time"

// Role identifies the kind of account a user holds.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User is the platform identity record. Every user carries exactly one
// role-specific profile, created in the same transaction as the user itself.
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Username     string          `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"size:255;not null" json:"-"`
	FirstName    string          `gorm:"size:150;not null" json:"first_name"`
	LastName     string          `gorm:"size:150;not null" json:"last_name"`
	Role         string          `gorm:"size:10;not null;default:student" json:"role"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Student      *StudentProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student,omitempty"`
	Teacher      *TeacherProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher,omitempty"`
}

// IsStudent reports whether the user holds the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsTeacher reports whether the user holds the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// FullName returns the display name, falling back to the username.
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// StudentProfile holds student-specific data attached to a user.
type StudentProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"-"`
}

// TeacherProfile holds teacher-specific data attached to a user.
type TeacherProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"-"`
}
