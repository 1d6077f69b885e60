// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cinara/app"

	"go.uber.org/zap"
)

// Sessions is the slice of the session store the controllers need.
type Sessions interface {
	Create(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type Srv struct {
	Sess Sessions
	Cfg  app.Config
	Log  *zap.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Sess: a.AppSessions(),
		Cfg:  a.Config,
		Log:  a.Log,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func callerID(c *app.Ctx) string {
	v, _ := c.Get(app.CtxUserID)
	id, _ := v.(string)
	return id
}

func callerEmail(c *app.Ctx) string {
	v, _ := c.Get(app.CtxEmail)
	email, _ := v.(string)
	return email
}
