package models

import "time"

type InviteType string

const (
	InviteStudent          InviteType = "student"
	InviteWorkspaceTeacher InviteType = "workspace_teacher"
	InviteTeacher          InviteType = "teacher"
)

func (t InviteType) Valid() bool {
	switch t {
	case InviteStudent, InviteWorkspaceTeacher, InviteTeacher:
		return true
	}
	return false
}

// Invite is a single-use token. Token is what circulates publicly; ID stays
// internal. AcceptedAt flips null -> timestamp exactly once, guarded by the
// conditional update in the repo.
type Invite struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	Token      string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	InviteType InviteType `gorm:"size:32;not null" json:"inviteType"`

	TeacherID    *string `gorm:"type:uuid;index" json:"-"`
	WorkspaceID  *string `gorm:"type:uuid" json:"-"`
	StudentEmail *string `gorm:"size:255" json:"studentEmail,omitempty"`
	StudentPhone *string `gorm:"size:32" json:"studentPhone,omitempty"`

	ExpiresAt  *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	AcceptedAt *time.Time `gorm:"index" json:"acceptedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Invite) TableName() string { return "invites" }

func (i *Invite) Accepted() bool { return i.AcceptedAt != nil }

func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}
