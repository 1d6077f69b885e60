package models

import "time"

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Profile maps an identity to its authorization role plus the descriptive
// attributes the app shows. ID equals users.id (1:1). Role is written once,
// when the row is created, and never from client input after that.
type Profile struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Role     Role    `gorm:"size:16;not null;index" json:"role"`
	FullName string  `gorm:"size:255" json:"fullName"`
	Phone    *string `gorm:"size:32" json:"phone,omitempty"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }
