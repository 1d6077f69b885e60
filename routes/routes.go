package routes

import (
	"time"

	"cinara/app"
	"cinara/controllers"
	"cinara/db"
	"cinara/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	repo := db.NewRepo(a.DB)
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s, repo)
	inviteCtl := controllers.GetInviteController(s, repo, repo)
	sessionCtl := controllers.GetClassSessionController(s, repo)
	storageCtl := controllers.GetStorageController(s)
	userCtl := controllers.GetUserController(s, repo)
	wsCtl := controllers.GetWorkspaceController(s, repo)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), repo)
	teacherMW := app.RequireRole(repo, models.RoleTeacher)
	teacherOrStudentMW := app.RequireRole(repo, models.RoleTeacher, models.RoleStudent)
	adminMW := app.RequireRole(repo, models.RoleAdmin)
	seenMW := app.TouchLastSeen(repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// Auth（公开+受保护）
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authCtl.Signup)
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.Whoami)
	}

	// ------------------------------
	// 邀请
	// ------------------------------
	invites := r.Group("/invites", authMW, seenMW)
	{
		invites.POST("", teacherMW, inviteCtl.CreateInvite)
		invites.GET("/:token", teacherOrStudentMW, inviteCtl.ReadInvite)
		invites.POST("/:token", teacherOrStudentMW, inviteCtl.AcceptInvite)
	}

	// ------------------------------
	// 课程安排
	// ------------------------------
	sessions := r.Group("/sessions", authMW, seenMW)
	{
		sessions.GET("", sessionCtl.ListSessions)
		sessions.POST("", teacherMW, sessionCtl.CreateSession)
	}

	// ------------------------------
	// 存储签名（stub，鉴权也在 TODO 里）
	// ------------------------------
	r.POST("/storage/sign", storageCtl.Sign)

	// ------------------------------
	// Workspace
	// ------------------------------
	workspaces := r.Group("/api/workspaces", authMW, seenMW)
	{
		workspaces.POST("", teacherMW, wsCtl.CreateWorkspace)
		workspaces.GET("", app.RequireRole(repo, models.RoleTeacher, models.RoleAdmin), wsCtl.ListWorkspaces)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers)
		users.DELETE("/:id", userCtl.DeleteUser)
	}
}
