package controllers

import (
	"context"
	"net/http"
	"strconv"

	"cinara/app"
	"cinara/db"
	"cinara/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminUserStore interface {
	ListUsers(ctx context.Context, q string, page, size int) (db.ListUsersResult, error)
	FindProfileByID(ctx context.Context, id string) (*models.Profile, error)
	DeleteUserByID(ctx context.Context, id string) error
}

type UserController struct {
	*Srv
	users AdminUserStore
}

func GetUserController(s *Srv, users AdminUserStore) *UserController {
	return &UserController{Srv: s, users: users}
}

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.users.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		uc.Log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not list users"})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}

	// 不允许删除自己，避免锁死
	if callerID(c) == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}

	target, err := uc.users.FindProfileByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	if target.Role == models.RoleAdmin {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
		return
	}

	if err := uc.users.DeleteUserByID(c.Request.Context(), id); err != nil {
		uc.Log.Error("delete user failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, app.H{"error": "could not delete user"})
		return
	}
	// 撤销该用户的所有登录会话
	_ = uc.Sess.RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
