package db

import (
	"cinara/models"
	"context"
)

func (r *Repo) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	if ws.ID == "" {
		ws.ID = NewID()
	}
	return r.DB.WithContext(ctx).Create(ws).Error
}

// ListWorkspacesForUser returns workspaces the user owns or is a member of.
func (r *Repo) ListWorkspacesForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)", userID,
			r.DB.Model(&models.WorkspaceMember{}).
				Select("workspace_id").
				Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}
