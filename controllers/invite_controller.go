package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cinara/app"
	"cinara/db"
	"cinara/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const inviteTTL = 7 * 24 * time.Hour

type InviteStore interface {
	CreateInvite(ctx context.Context, inv *models.Invite) error
	GetInviteByToken(ctx context.Context, token string) (*models.Invite, error)
}

// InviteAcceptor is the privileged linkage surface. Only this controller
// holds it: accepting an invite is the one operation allowed to write rows
// on behalf of two parties, so the elevated access is scoped to exactly
// these two calls instead of a general-purpose admin handle.
type InviteAcceptor interface {
	AcceptStudentInvite(ctx context.Context, inviteID, teacherID, studentID string, workspaceID *string) error
	AcceptWorkspaceInvite(ctx context.Context, inviteID, workspaceID, userID string) error
}

type InviteController struct {
	*Srv
	invites  InviteStore
	acceptor InviteAcceptor
}

func GetInviteController(s *Srv, invites InviteStore, acceptor InviteAcceptor) *InviteController {
	return &InviteController{Srv: s, invites: invites, acceptor: acceptor}
}

// POST /invites
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		InviteType   string  `json:"inviteType"`
		StudentEmail *string `json:"studentEmail" binding:"omitempty,email"`
		StudentPhone *string `json:"studentPhone"`
		WorkspaceID  *string `json:"workspaceId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	if in.InviteType == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "inviteType is required"})
		return
	}
	inviteType := models.InviteType(in.InviteType)
	if !inviteType.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "inviteType must be student, workspace_teacher, or teacher"})
		return
	}

	teacherID := callerID(c)
	expires := time.Now().Add(inviteTTL)
	inv := &models.Invite{
		Token:        newToken(inviteTokenBytes),
		InviteType:   inviteType,
		TeacherID:    &teacherID,
		WorkspaceID:  in.WorkspaceID,
		StudentEmail: in.StudentEmail,
		StudentPhone: in.StudentPhone,
		ExpiresAt:    &expires,
	}

	if err := ic.invites.CreateInvite(c.Request.Context(), inv); err != nil {
		ic.Log.Error("create invite failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create invite"})
		return
	}
	c.JSON(http.StatusOK, app.H{"token": inv.Token})
}

// invitePublic is the read shape: type, constraints and timestamps only.
// The linkage targets (teacher_id, workspace_id) stay internal.
type invitePublic struct {
	InviteType   models.InviteType `json:"inviteType"`
	StudentEmail *string           `json:"studentEmail,omitempty"`
	StudentPhone *string           `json:"studentPhone,omitempty"`
	ExpiresAt    *time.Time        `json:"expiresAt,omitempty"`
	AcceptedAt   *time.Time        `json:"acceptedAt,omitempty"`
}

// fetchUsable loads the invite by token and applies the shared freshness
// rules: read and accept must fail identically on a missing, consumed or
// expired invite. Returns nil after writing the error response.
func (ic *InviteController) fetchUsable(c *gin.Context, token string) *models.Invite {
	inv, err := ic.invites.GetInviteByToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			ic.Log.Error("invite lookup failed", zap.Error(err))
		}
		c.JSON(http.StatusNotFound, app.H{"error": "Invite not found"})
		return nil
	}
	if inv.Accepted() {
		c.JSON(http.StatusBadRequest, app.H{"error": "Invite already accepted"})
		return nil
	}
	if inv.Expired(time.Now()) {
		c.JSON(http.StatusBadRequest, app.H{"error": "Invite expired"})
		return nil
	}
	return inv
}

// GET /invites/:token
func (ic *InviteController) ReadInvite(c *gin.Context) {
	inv := ic.fetchUsable(c, c.Param("token"))
	if inv == nil {
		return
	}
	c.JSON(http.StatusOK, app.H{"invite": invitePublic{
		InviteType:   inv.InviteType,
		StudentEmail: inv.StudentEmail,
		StudentPhone: inv.StudentPhone,
		ExpiresAt:    inv.ExpiresAt,
		AcceptedAt:   inv.AcceptedAt,
	}})
}

// POST /invites/:token
func (ic *InviteController) AcceptInvite(c *gin.Context) {
	inv := ic.fetchUsable(c, c.Param("token"))
	if inv == nil {
		return
	}

	profile := app.CurrentProfile(c)
	if profile == nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "Profile missing"})
		return
	}

	switch inv.InviteType {
	case models.InviteStudent:
		ic.acceptStudent(c, inv, profile)
	case models.InviteWorkspaceTeacher:
		ic.acceptWorkspaceTeacher(c, inv, profile)
	case models.InviteTeacher:
		// 预留类型，暂不支持，也不消费 accepted_at
		c.JSON(http.StatusBadRequest, app.H{"error": "Invite type teacher is not supported yet"})
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown invite type"})
	}
}

func (ic *InviteController) acceptStudent(c *gin.Context, inv *models.Invite, profile *models.Profile) {
	if profile.Role != models.RoleStudent {
		c.JSON(http.StatusForbidden, app.H{"error": "Only students can accept"})
		return
	}
	if inv.StudentEmail != nil && *inv.StudentEmail != callerEmail(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "Invite email mismatch"})
		return
	}
	if inv.StudentPhone != nil && (profile.Phone == nil || *profile.Phone != *inv.StudentPhone) {
		c.JSON(http.StatusForbidden, app.H{"error": "Invite phone mismatch"})
		return
	}
	if inv.TeacherID == nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invite has no teacher"})
		return
	}

	err := ic.acceptor.AcceptStudentInvite(c.Request.Context(), inv.ID, *inv.TeacherID, profile.ID, inv.WorkspaceID)
	ic.finishAccept(c, err)
}

func (ic *InviteController) acceptWorkspaceTeacher(c *gin.Context, inv *models.Invite, profile *models.Profile) {
	if profile.Role != models.RoleTeacher {
		c.JSON(http.StatusForbidden, app.H{"error": "Only teachers can accept"})
		return
	}
	if inv.WorkspaceID == nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "Workspace missing"})
		return
	}

	err := ic.acceptor.AcceptWorkspaceInvite(c.Request.Context(), inv.ID, *inv.WorkspaceID, profile.ID)
	ic.finishAccept(c, err)
}

func (ic *InviteController) finishAccept(c *gin.Context, err error) {
	if errors.Is(err, db.ErrInviteAccepted) {
		// 并发消费同一个 token，另一边赢了
		c.JSON(http.StatusBadRequest, app.H{"error": "Invite already accepted"})
		return
	}
	if err != nil {
		ic.Log.Error("accept invite failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not accept invite"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
