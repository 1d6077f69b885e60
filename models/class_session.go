package models

import "time"

type TargetType string

const (
	TargetStudent TargetType = "student"
	TargetGroup   TargetType = "group"
)

func (t TargetType) Valid() bool { return t == TargetStudent || t == TargetGroup }

const SessionStatusScheduled = "scheduled"

type ClassSession struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	TeacherID  string     `gorm:"type:uuid;index;not null" json:"teacherId"`
	TargetType TargetType `gorm:"size:16;not null" json:"targetType"`
	TargetID   string     `gorm:"size:255;not null" json:"targetId"`

	StartsAt       time.Time `gorm:"index;not null" json:"startsAt"`
	DurationMin    int       `gorm:"not null;default:60" json:"durationMin"`
	MeetingRoomKey string    `gorm:"size:64;not null" json:"meetingRoomKey"`
	Status         string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ClassSession) TableName() string { return "class_sessions" }
