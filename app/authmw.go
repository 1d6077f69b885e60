package app

import (
	"cinara/models"
	"cinara/session"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// Context keys set by the middlewares below.
const (
	CtxUserID  = "userID"
	CtxEmail   = "email"
	CtxRole    = "role"
	CtxProfile = "profile"
)

type SessionReader interface {
	Get(ctx context.Context, id string) (*session.AppSession, error)
	Delete(ctx context.Context, id string) error
}

type UserSource interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

type ProfileSource interface {
	FindProfileByID(ctx context.Context, id string) (*models.Profile, error)
}

// AuthRequired resolves the caller from the session cookie and confirms the
// user row still exists. Sets userID and email for downstream handlers.
func AuthRequired(appSess SessionReader, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "Unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "Unauthorized"})
			return
		}

		u, err := users.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			// 用户已被删除，会话跟着作废
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "Unauthorized"})
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxEmail, u.Email)
		c.Next()
	}
}

// RequireRole looks up the caller's profile and checks its role against the
// allowed set. A missing profile for an authenticated identity is a data
// integrity problem, not an auth failure, hence 400 rather than 401.
func RequireRole(profiles ProfileSource, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "Unauthorized"})
			return
		}
		uid, _ := v.(string)

		p, err := profiles.FindProfileByID(c.Request.Context(), uid)
		if err != nil || p == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, H{"error": "Profile missing"})
			return
		}

		allowed := false
		for _, role := range roles {
			if p.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "Forbidden"})
			return
		}

		c.Set(CtxRole, p.Role)
		c.Set(CtxProfile, p)
		c.Next()
	}
}

// CurrentProfile returns the profile stashed by RequireRole.
func CurrentProfile(c *gin.Context) *models.Profile {
	if v, ok := c.Get(CtxProfile); ok {
		if p, ok := v.(*models.Profile); ok {
			return p
		}
	}
	return nil
}
