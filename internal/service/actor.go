package service

import (
	"errors"

	"github.com/deadline-mate/api/internal/models"
)

// Errors shared by the role checks across services.
var (
	ErrTeacherOnly = errors.New("only teachers may perform this action")
	ErrStudentOnly = errors.New("only students may perform this action")
	ErrForbidden   = errors.New("insufficient permissions")
)

// Actor is the authenticated caller identity, resolved from the access token
// by the handler layer and passed explicitly into every service call.
// ProfileID is the id of the role profile matching Role.
type Actor struct {
	UserID    uint
	Role      string
	ProfileID uint
}

// IsTeacher reports whether the actor holds the teacher role.
func (a Actor) IsTeacher() bool {
	return a.Role == models.RoleTeacher
}

// IsStudent reports whether the actor holds the student role.
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}
