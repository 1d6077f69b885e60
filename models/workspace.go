package models

import "time"

const (
	TeacherStudentTable  = "teacher_students"
	WorkspaceMemberTable = "workspace_members"
)

type Workspace struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Name    string `gorm:"size:200;not null" json:"name"`
	OwnerID string `gorm:"type:uuid;index;not null" json:"ownerId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Workspace) TableName() string { return "workspaces" }

// TeacherStudent links a student to a teacher. The (teacher_id, student_id)
// pair is unique (see db.Migrate), which makes the linkage insert on invite
// acceptance safely idempotent.
type TeacherStudent struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	TeacherID   string  `gorm:"type:uuid;index;not null" json:"teacherId"`
	StudentID   string  `gorm:"type:uuid;index;not null" json:"studentId"`
	WorkspaceID *string `gorm:"type:uuid" json:"workspaceId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (TeacherStudent) TableName() string { return TeacherStudentTable }

// WorkspaceMember links a user to a workspace; (workspace_id, user_id) is
// unique for the same reason.
type WorkspaceMember struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WorkspaceID string `gorm:"type:uuid;index;not null" json:"workspaceId"`
	UserID      string `gorm:"type:uuid;index;not null" json:"userId"`
	Role        string `gorm:"size:20;not null;default:'member'" json:"role"`

	CreatedAt time.Time `json:"createdAt"`
}

func (WorkspaceMember) TableName() string { return WorkspaceMemberTable }
