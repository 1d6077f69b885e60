package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cinara/app"
	"cinara/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUserWithProfile(ctx context.Context, u *models.User, p *models.Profile) error
	EnsureProfile(ctx context.Context, u *models.User, isAdmin bool) (*models.Profile, error)
	FindProfileByID(ctx context.Context, id string) (*models.Profile, error)
	TouchUserLogin(ctx context.Context, userID, ip, ua string) error
}

type AuthController struct {
	*Srv
	accounts AccountStore
}

func GetAuthController(s *Srv, accounts AccountStore) *AuthController {
	return &AuthController{Srv: s, accounts: accounts}
}

// POST /auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"required"`
		FullName string `json:"fullName" binding:"required"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	// admin 不能自助注册，只能通过 ADMIN_EMAILS 提升
	role := models.Role(in.Role)
	if role != models.RoleTeacher && role != models.RoleStudent {
		c.JSON(http.StatusBadRequest, app.H{"error": "role must be teacher or student"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create account"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		SignupRole:   role,
	}
	if role == models.RoleStudent {
		u.Phone = strings.TrimSpace(in.Phone)
	}

	profileRole := role
	if ac.Cfg.IsAdminEmail(email) {
		profileRole = models.RoleAdmin
	}
	p := &models.Profile{ID: u.ID, Role: profileRole, FullName: u.FullName}
	if profileRole == models.RoleStudent && u.Phone != "" {
		phone := u.Phone
		p.Phone = &phone
	}

	if err := ac.accounts.CreateUserWithProfile(c.Request.Context(), u, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, app.H{"error": "email already registered"})
			return
		}
		ac.Log.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create account"})
		return
	}

	if err := ac.issueSession(c, u.ID); err != nil {
		ac.Log.Error("session issue failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusOK, app.H{"id": u.ID, "role": p.Role})
}

// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.accounts.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}

	// 老账号可能还没有 profile，登录时补建
	p, err := ac.accounts.EnsureProfile(c.Request.Context(), u, ac.Cfg.IsAdminEmail(u.Email))
	if err != nil {
		ac.Log.Error("ensure profile failed", zap.String("user", u.ID), zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "Profile missing"})
		return
	}

	if err := ac.accounts.TouchUserLogin(c.Request.Context(), u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		ac.Log.Warn("touch login failed", zap.Error(err))
	}

	if err := ac.issueSession(c, u.ID); err != nil {
		ac.Log.Error("session issue failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusOK, app.H{"id": u.ID, "role": p.Role})
}

// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.Sess.Delete(c.Request.Context(), ck.Value)
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /auth/whoami
func (ac *AuthController) Whoami(c *gin.Context) {
	uid := callerID(c)
	u, err := ac.accounts.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "Unauthorized"})
		return
	}
	p, err := ac.accounts.FindProfileByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "Profile missing"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"id":       u.ID,
		"email":    u.Email,
		"role":     p.Role,
		"fullName": p.FullName,
		"phone":    p.Phone,
	})
}

func (ac *AuthController) issueSession(c *gin.Context, userID string) error {
	id := uuid.NewString()
	if err := ac.Sess.Create(c.Request.Context(), id, userID); err != nil {
		return err
	}
	ac.setAppCookie(c.Writer, id, ac.Cfg.SessionTTL)
	return nil
}
