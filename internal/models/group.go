package models

import "time"

// Membership roles within a group.
const (
	MembershipRoleMember  = "member"
	MembershipRoleMonitor = "monitor"
)

// Group is a named collection of students owned by a teacher.
type Group struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Code        string            `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description string            `gorm:"type:text" json:"description"`
	CreatedByID uint              `gorm:"not null" json:"created_by"`
	IsActive    bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CreatedBy   TeacherProfile    `gorm:"foreignKey:CreatedByID" json:"-"`
	Memberships []GroupMembership `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Teachers    []GroupTeacher    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ActiveMemberCount counts memberships that have not been deactivated.
func (g Group) ActiveMemberCount() int {
	count := 0
	for _, m := range g.Memberships {
		if m.IsActive {
			count++
		}
	}
	return count
}

// ActiveTeacherCount counts teacher records that have not been deactivated.
func (g Group) ActiveTeacherCount() int {
	count := 0
	for _, t := range g.Teachers {
		if t.IsActive {
			count++
		}
	}
	return count
}

// GroupMembership links a student to a group. Removal is a soft delete via
// IsActive so a student can be restored with history intact.
type GroupMembership struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GroupID   uint           `gorm:"not null;uniqueIndex:idx_membership_pair" json:"group_id"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_membership_pair" json:"student_id"`
	Role      string         `gorm:"size:10;not null;default:member" json:"role"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	JoinedAt  time.Time      `gorm:"autoCreateTime" json:"joined_at"`
	Group     Group          `json:"-"`
	Student   StudentProfile `json:"-"`
}

// GroupTeacher links a teacher to a group they teach, separate from ownership.
type GroupTeacher struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GroupID   uint           `gorm:"not null;uniqueIndex:idx_group_teacher_pair" json:"group_id"`
	TeacherID uint           `gorm:"not null;uniqueIndex:idx_group_teacher_pair" json:"teacher_id"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	JoinedAt  time.Time      `gorm:"autoCreateTime" json:"joined_at"`
	Group     Group          `json:"-"`
	Teacher   TeacherProfile `json:"-"`
}
