package db

import (
	"cinara/models"
	"context"
)

func (r *Repo) CreateClassSession(ctx context.Context, cs *models.ClassSession) error {
	if cs.ID == "" {
		cs.ID = NewID()
	}
	if cs.Status == "" {
		cs.Status = models.SessionStatusScheduled
	}
	return r.DB.WithContext(ctx).Create(cs).Error
}

func (r *Repo) ListClassSessions(ctx context.Context) ([]models.ClassSession, error) {
	var sessions []models.ClassSession
	if err := r.DB.WithContext(ctx).
		Order("starts_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
