package controllers

import (
	"context"
	"net/http"
	"strings"

	"cinara/app"
	"cinara/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkspaceStore interface {
	CreateWorkspace(ctx context.Context, ws *models.Workspace) error
	ListWorkspacesForUser(ctx context.Context, userID string) ([]models.Workspace, error)
}

type WorkspaceController struct {
	*Srv
	workspaces WorkspaceStore
}

func GetWorkspaceController(s *Srv, workspaces WorkspaceStore) *WorkspaceController {
	return &WorkspaceController{Srv: s, workspaces: workspaces}
}

// POST /api/workspaces
func (wc *WorkspaceController) CreateWorkspace(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ws := &models.Workspace{
		Name:    strings.TrimSpace(in.Name),
		OwnerID: callerID(c),
	}
	if ws.Name == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "name must not be empty"})
		return
	}
	if err := wc.workspaces.CreateWorkspace(c.Request.Context(), ws); err != nil {
		wc.Log.Error("create workspace failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create workspace"})
		return
	}
	c.JSON(http.StatusOK, app.H{"id": ws.ID})
}

// GET /api/workspaces
func (wc *WorkspaceController) ListWorkspaces(c *gin.Context) {
	workspaces, err := wc.workspaces.ListWorkspacesForUser(c.Request.Context(), callerID(c))
	if err != nil {
		wc.Log.Error("list workspaces failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not list workspaces"})
		return
	}
	c.JSON(http.StatusOK, app.H{"workspaces": workspaces})
}
