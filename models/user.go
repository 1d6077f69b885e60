package models

import "time"

// User is the credential record owned by the auth layer. Authorization
// attributes live on Profile; SignupRole is only what the caller asked for
// at signup and is consulted once, when the profile row is first created.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	FullName     string `gorm:"size:255" json:"fullName"`
	Phone        string `gorm:"size:32" json:"phone,omitempty"`
	SignupRole   Role   `gorm:"size:16;not null" json:"-"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }
