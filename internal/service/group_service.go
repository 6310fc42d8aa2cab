package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/deadline-mate/api/internal/dto"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/repository"
)

// Group errors surfaced to the handler layer.
var (
	ErrGroupNotFound         = errors.New("group not found")
	ErrStudentNotFound       = errors.New("student not found")
	ErrTeacherNotFound       = errors.New("teacher not found")
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrAlreadyMember         = errors.New("student is already in the group")
	ErrAlreadyTeaching       = errors.New("teacher is already in the group")
	ErrCreatorAlreadyTeaches = errors.New("the group creator already teaches this group")
	ErrNotGroupMember        = errors.New("not a member of this group")
)

// Alphabet for generated join codes. Excludes easily confused characters.
const groupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const groupCodeLength = 6

// GroupService manages groups and their rosters.
type GroupService interface {
	List(ctx context.Context, actor Actor) ([]dto.GroupResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.GroupResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.GroupUpdateRequest) (dto.GroupResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	AddStudent(ctx context.Context, actor Actor, groupID uint, payload dto.AddStudentRequest) (dto.MembershipResponse, error)
	RemoveStudent(ctx context.Context, actor Actor, groupID uint, payload dto.RemoveStudentRequest) error
	AddTeacher(ctx context.Context, actor Actor, groupID uint, payload dto.AddTeacherRequest) (dto.GroupTeacherResponse, error)
	RemoveTeacher(ctx context.Context, actor Actor, groupID uint, payload dto.RemoveTeacherRequest) error
	JoinAsTeacher(ctx context.Context, actor Actor, groupID uint) (dto.GroupTeacherResponse, error)

	ListStudents(ctx context.Context, actor Actor) ([]dto.UserResponse, error)
}

type groupService struct {
	groups      repository.GroupRepository
	memberships repository.MembershipRepository
	users       repository.UserRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(groups repository.GroupRepository, memberships repository.MembershipRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		groups:      groups,
		memberships: memberships,
		users:       users,
		validator:   validate,
		logger:      logger.With().Str("component", "group_service").Logger(),
	}
}

// List returns all groups for teachers and only actively joined groups for
// students.
func (s *groupService) List(ctx context.Context, actor Actor) ([]dto.GroupResponse, error) {
	var (
		groups []models.Group
		err    error
	)

	if actor.IsTeacher() {
		groups, err = s.groups.ListAll(ctx)
	} else {
		groups, err = s.groups.ListForStudent(ctx, actor.ProfileID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewGroupResponseSlice(groups), nil
}

func (s *groupService) Get(ctx context.Context, actor Actor, id uint) (dto.GroupResponse, error) {
	group, err := s.loadGroup(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if actor.IsStudent() {
		active := false
		for _, membership := range group.Memberships {
			if membership.StudentID == actor.ProfileID && membership.IsActive {
				active = true
				break
			}
		}
		if !active {
			return dto.GroupResponse{}, ErrNotGroupMember
		}
	}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Create(ctx context.Context, actor Actor, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if !actor.IsTeacher() {
		return dto.GroupResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	code := payload.Code
	if code == "" {
		generated, err := s.generateCode(ctx)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		code = generated
	}

	group := models.Group{
		Name:        payload.Name,
		Code:        code,
		Description: payload.Description,
		CreatedByID: actor.ProfileID,
		IsActive:    true,
	}

	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	created, err := s.loadGroup(ctx, group.ID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Uint("group_id", group.ID).Uint("teacher_id", actor.ProfileID).Msg("group created")

	return dto.NewGroupResponse(created), nil
}

func (s *groupService) Update(ctx context.Context, actor Actor, id uint, payload dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	if !actor.IsTeacher() {
		return dto.GroupResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.loadGroup(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if payload.Name != nil {
		group.Name = *payload.Name
	}
	if payload.Description != nil {
		group.Description = *payload.Description
	}
	if payload.IsActive != nil {
		group.IsActive = *payload.IsActive
	}

	if err := s.groups.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.IsTeacher() {
		return ErrTeacherOnly
	}

	if _, err := s.loadGroup(ctx, id); err != nil {
		return err
	}

	return s.groups.Delete(ctx, id)
}

// AddStudent creates the membership, or reactivates it when the student was
// previously removed. An already active membership is an error.
func (s *groupService) AddStudent(ctx context.Context, actor Actor, groupID uint, payload dto.AddStudentRequest) (dto.MembershipResponse, error) {
	if !actor.IsTeacher() {
		return dto.MembershipResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.MembershipResponse{}, err
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return dto.MembershipResponse{}, err
	}

	if _, err := s.users.GetStudentProfile(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MembershipResponse{}, ErrStudentNotFound
		}
		return dto.MembershipResponse{}, err
	}

	membership, err := s.memberships.GetMembership(ctx, group.ID, payload.StudentID)
	switch {
	case err == nil:
		if membership.IsActive {
			return dto.MembershipResponse{}, ErrAlreadyMember
		}
		membership.IsActive = true
		if err := s.memberships.UpdateMembership(ctx, &membership); err != nil {
			return dto.MembershipResponse{}, err
		}
		return dto.NewMembershipResponse(membership), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return dto.MembershipResponse{}, err
	}

	role := payload.Role
	if role == "" {
		role = models.MembershipRoleMember
	}

	membership = models.GroupMembership{
		GroupID:   group.ID,
		StudentID: payload.StudentID,
		Role:      role,
		IsActive:  true,
	}

	if err := s.memberships.CreateMembership(ctx, &membership); err != nil {
		return dto.MembershipResponse{}, err
	}

	s.logger.Info().Uint("group_id", group.ID).Uint("student_id", payload.StudentID).Msg("student added to group")

	return dto.NewMembershipResponse(membership), nil
}

// RemoveStudent deactivates the membership rather than deleting it.
func (s *groupService) RemoveStudent(ctx context.Context, actor Actor, groupID uint, payload dto.RemoveStudentRequest) error {
	if !actor.IsTeacher() {
		return ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return err
	}

	membership, err := s.memberships.GetMembershipByID(ctx, payload.MembershipID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}

	membership.IsActive = false
	return s.memberships.UpdateMembership(ctx, &membership)
}

func (s *groupService) AddTeacher(ctx context.Context, actor Actor, groupID uint, payload dto.AddTeacherRequest) (dto.GroupTeacherResponse, error) {
	if !actor.IsTeacher() {
		return dto.GroupTeacherResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupTeacherResponse{}, err
	}

	if _, err := s.users.GetTeacherProfile(ctx, payload.TeacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupTeacherResponse{}, ErrTeacherNotFound
		}
		return dto.GroupTeacherResponse{}, err
	}

	return s.attachTeacher(ctx, groupID, payload.TeacherID)
}

func (s *groupService) RemoveTeacher(ctx context.Context, actor Actor, groupID uint, payload dto.RemoveTeacherRequest) error {
	if !actor.IsTeacher() {
		return ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return err
	}

	record, err := s.memberships.GetGroupTeacher(ctx, groupID, payload.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}

	record.IsActive = false
	return s.memberships.UpdateGroupTeacher(ctx, &record)
}

func (s *groupService) JoinAsTeacher(ctx context.Context, actor Actor, groupID uint) (dto.GroupTeacherResponse, error) {
	if !actor.IsTeacher() {
		return dto.GroupTeacherResponse{}, ErrTeacherOnly
	}

	return s.attachTeacher(ctx, groupID, actor.ProfileID)
}

func (s *groupService) attachTeacher(ctx context.Context, groupID, teacherID uint) (dto.GroupTeacherResponse, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return dto.GroupTeacherResponse{}, err
	}

	if group.CreatedByID == teacherID {
		return dto.GroupTeacherResponse{}, ErrCreatorAlreadyTeaches
	}

	record, err := s.memberships.GetGroupTeacher(ctx, group.ID, teacherID)
	switch {
	case err == nil:
		if record.IsActive {
			return dto.GroupTeacherResponse{}, ErrAlreadyTeaching
		}
		record.IsActive = true
		if err := s.memberships.UpdateGroupTeacher(ctx, &record); err != nil {
			return dto.GroupTeacherResponse{}, err
		}
		return dto.NewGroupTeacherResponse(record), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return dto.GroupTeacherResponse{}, err
	}

	record = models.GroupTeacher{
		GroupID:   group.ID,
		TeacherID: teacherID,
		IsActive:  true,
	}

	if err := s.memberships.CreateGroupTeacher(ctx, &record); err != nil {
		return dto.GroupTeacherResponse{}, err
	}

	s.logger.Info().Uint("group_id", group.ID).Uint("teacher_id", teacherID).Msg("teacher added to group")

	return dto.NewGroupTeacherResponse(record), nil
}

// ListStudents returns the student roster teachers pick group members from.
func (s *groupService) ListStudents(ctx context.Context, actor Actor) ([]dto.UserResponse, error) {
	if !actor.IsTeacher() {
		return nil, ErrTeacherOnly
	}

	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(students), nil
}

func (s *groupService) loadGroup(ctx context.Context, id uint) (models.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}

	return group, nil
}

// generateCode draws join codes until one is free. The uniqueness check races
// with concurrent creations; the unique index on the column is the backstop.
func (s *groupService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		buf := make([]byte, groupCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i, b := range buf {
			buf[i] = groupCodeAlphabet[int(b)%len(groupCodeAlphabet)]
		}
		code := string(buf)

		exists, err := s.groups.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("could not generate a unique group code")
}
