package controllers

import (
	"context"
	"net/http"
	"time"

	"cinara/app"
	"cinara/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClassSessionStore interface {
	CreateClassSession(ctx context.Context, cs *models.ClassSession) error
	ListClassSessions(ctx context.Context) ([]models.ClassSession, error)
}

type ClassSessionController struct {
	*Srv
	sessions ClassSessionStore
}

func GetClassSessionController(s *Srv, sessions ClassSessionStore) *ClassSessionController {
	return &ClassSessionController{Srv: s, sessions: sessions}
}

// POST /sessions
func (sc *ClassSessionController) CreateSession(c *gin.Context) {
	var in struct {
		TargetType     string    `json:"targetType"`
		TargetID       string    `json:"targetId"`
		StartsAt       time.Time `json:"startsAt"`
		DurationMin    int       `json:"durationMin"`
		MeetingRoomKey string    `json:"meetingRoomKey"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	if in.TargetType == "" || in.TargetID == "" || in.StartsAt.IsZero() {
		c.JSON(http.StatusBadRequest, app.H{"error": "targetType, targetId, startsAt are required"})
		return
	}
	targetType := models.TargetType(in.TargetType)
	if !targetType.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "targetType must be student or group"})
		return
	}

	if in.DurationMin <= 0 {
		in.DurationMin = 60
	}
	if in.MeetingRoomKey == "" {
		in.MeetingRoomKey = newToken(roomKeyBytes)
	}

	cs := &models.ClassSession{
		TeacherID:      callerID(c),
		TargetType:     targetType,
		TargetID:       in.TargetID,
		StartsAt:       in.StartsAt,
		DurationMin:    in.DurationMin,
		MeetingRoomKey: in.MeetingRoomKey,
	}
	if err := sc.sessions.CreateClassSession(c.Request.Context(), cs); err != nil {
		sc.Log.Error("create class session failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusOK, app.H{"id": cs.ID})
}

// GET /sessions
//
// Returns every session ordered by start time, with no ownership filter.
// That matches the product's current dashboard behavior; see DESIGN.md
// before narrowing it.
func (sc *ClassSessionController) ListSessions(c *gin.Context) {
	sessions, err := sc.sessions.ListClassSessions(c.Request.Context())
	if err != nil {
		sc.Log.Error("list class sessions failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not list sessions"})
		return
	}
	c.JSON(http.StatusOK, app.H{"sessions": sessions})
}
