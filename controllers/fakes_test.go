package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"cinara/app"
	"cinara/db"
	"cinara/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appsession "cinara/session"
)

// fakeSessions stands in for the redis-backed store.
type fakeSessions struct {
	mu sync.Mutex
	m  map[string]string // session id -> user id
}

func newFakeSessions() *fakeSessions { return &fakeSessions{m: map[string]string{}} }

func (f *fakeSessions) Create(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[id] = userID
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*appsession.AppSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &appsession.AppSession{UserID: uid}, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, id)
	return nil
}

func (f *fakeSessions) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, uid := range f.m {
		if uid == userID {
			delete(f.m, id)
		}
	}
	return nil
}

// fakeRepo is an in-memory stand-in for db.Repo. The accept methods emulate
// the conditional-update semantics of the real store under a mutex so
// concurrent accept tests exercise the same at-most-once guarantee.
type fakeRepo struct {
	mu         sync.Mutex
	users      map[string]*models.User
	profiles   map[string]*models.Profile
	invites    map[string]*models.Invite // keyed by token
	links      []models.TeacherStudent
	members    []models.WorkspaceMember
	classes    []models.ClassSession
	workspaces []models.Workspace
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    map[string]*models.User{},
		profiles: map[string]*models.Profile{},
		invites:  map[string]*models.Invite{},
	}
}

func (f *fakeRepo) FindUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateUserWithProfile(_ context.Context, u *models.User, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.users[u.ID] = u
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeRepo) EnsureProfile(_ context.Context, u *models.User, isAdmin bool) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[u.ID]; ok {
		return p, nil
	}
	role := u.SignupRole
	if isAdmin {
		role = models.RoleAdmin
	}
	p := &models.Profile{ID: u.ID, Role: role, FullName: u.FullName}
	if role == models.RoleStudent && u.Phone != "" {
		phone := u.Phone
		p.Phone = &phone
	}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeRepo) FindProfileByID(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) TouchUserLogin(_ context.Context, userID, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.LoginCount++
	}
	return nil
}

func (f *fakeRepo) CreateInvite(_ context.Context, inv *models.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	f.invites[inv.Token] = inv
	return nil
}

func (f *fakeRepo) GetInviteByToken(_ context.Context, token string) (*models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.invites[token]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) inviteByID(id string) *models.Invite {
	for _, inv := range f.invites {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

func (f *fakeRepo) AcceptStudentInvite(_ context.Context, inviteID, teacherID, studentID string, workspaceID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.inviteByID(inviteID)
	if inv == nil || inv.AcceptedAt != nil {
		return db.ErrInviteAccepted
	}
	now := time.Now()
	inv.AcceptedAt = &now
	for _, l := range f.links {
		if l.TeacherID == teacherID && l.StudentID == studentID {
			return nil // unique pair, conflict ignored
		}
	}
	f.links = append(f.links, models.TeacherStudent{
		TeacherID: teacherID, StudentID: studentID, WorkspaceID: workspaceID,
	})
	return nil
}

func (f *fakeRepo) AcceptWorkspaceInvite(_ context.Context, inviteID, workspaceID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.inviteByID(inviteID)
	if inv == nil || inv.AcceptedAt != nil {
		return db.ErrInviteAccepted
	}
	now := time.Now()
	inv.AcceptedAt = &now
	for _, m := range f.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return nil
		}
	}
	f.members = append(f.members, models.WorkspaceMember{
		WorkspaceID: workspaceID, UserID: userID, Role: "member",
	})
	return nil
}

func (f *fakeRepo) CreateClassSession(_ context.Context, cs *models.ClassSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	if cs.Status == "" {
		cs.Status = models.SessionStatusScheduled
	}
	f.classes = append(f.classes, *cs)
	return nil
}

func (f *fakeRepo) ListClassSessions(_ context.Context) ([]models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ClassSession, len(f.classes))
	copy(out, f.classes)
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeRepo) ListUsers(_ context.Context, q string, page, size int) (db.ListUsersResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res db.ListUsersResult
	for id, p := range f.profiles {
		u := f.users[id]
		if u == nil {
			continue
		}
		if q != "" && !strings.Contains(u.Email, strings.ToLower(q)) {
			continue
		}
		res.Users = append(res.Users, db.UserSummary{
			ID: id, Email: u.Email, Role: p.Role, FullName: p.FullName, Phone: p.Phone,
		})
	}
	res.Total = int64(len(res.Users))
	return res, nil
}

func (f *fakeRepo) DeleteUserByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	delete(f.profiles, id)
	return nil
}

func (f *fakeRepo) CreateWorkspace(_ context.Context, ws *models.Workspace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	f.workspaces = append(f.workspaces, *ws)
	return nil
}

func (f *fakeRepo) ListWorkspacesForUser(_ context.Context, userID string) ([]models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Workspace
	for _, ws := range f.workspaces {
		if ws.OwnerID == userID {
			out = append(out, ws)
			continue
		}
		for _, m := range f.members {
			if m.WorkspaceID == ws.ID && m.UserID == userID {
				out = append(out, ws)
				break
			}
		}
	}
	return out, nil
}

// --- test harness ---

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	repo   *fakeRepo
	sess   *fakeSessions
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	cfg := app.Config{
		WebOrigin:      "http://localhost:3000",
		SessionTTL:     time.Hour,
		AdminEmails:    []string{"root@cinara.app"},
		StorageBuckets: []string{"cinara-content", "branding-assets"},
	}
	repo := newFakeRepo()
	sess := newFakeSessions()
	s := &Srv{Sess: sess, Cfg: cfg, Log: zap.NewNop()}

	authCtl := GetAuthController(s, repo)
	inviteCtl := GetInviteController(s, repo, repo)
	sessionCtl := GetClassSessionController(s, repo)
	storageCtl := GetStorageController(s)
	userCtl := GetUserController(s, repo)
	wsCtl := GetWorkspaceController(s, repo)

	authMW := app.AuthRequired(sess, repo)
	teacherMW := app.RequireRole(repo, models.RoleTeacher)
	teacherOrStudentMW := app.RequireRole(repo, models.RoleTeacher, models.RoleStudent)
	adminMW := app.RequireRole(repo, models.RoleAdmin)

	r := gin.New()
	r.POST("/auth/signup", authCtl.Signup)
	r.POST("/auth/login", authCtl.Login)
	r.POST("/auth/logout", authMW, authCtl.Logout)
	r.GET("/auth/whoami", authMW, authCtl.Whoami)

	r.POST("/invites", authMW, teacherMW, inviteCtl.CreateInvite)
	r.GET("/invites/:token", authMW, teacherOrStudentMW, inviteCtl.ReadInvite)
	r.POST("/invites/:token", authMW, teacherOrStudentMW, inviteCtl.AcceptInvite)

	r.GET("/sessions", authMW, sessionCtl.ListSessions)
	r.POST("/sessions", authMW, teacherMW, sessionCtl.CreateSession)

	r.POST("/storage/sign", storageCtl.Sign)

	r.POST("/api/workspaces", authMW, teacherMW, wsCtl.CreateWorkspace)
	r.GET("/api/workspaces", authMW, app.RequireRole(repo, models.RoleTeacher, models.RoleAdmin), wsCtl.ListWorkspaces)

	r.GET("/api/users", authMW, adminMW, userCtl.ListUsers)
	r.DELETE("/api/users/:id", authMW, adminMW, userCtl.DeleteUser)

	return &testEnv{t: t, router: r, repo: repo, sess: sess}
}

// addUser seeds a user plus profile and returns the user id.
func (e *testEnv) addUser(role models.Role, email, phone string) string {
	id := uuid.NewString()
	u := &models.User{ID: id, Email: strings.ToLower(email), FullName: "Test " + string(role), SignupRole: role, Phone: phone}
	p := &models.Profile{ID: id, Role: role, FullName: u.FullName}
	if phone != "" {
		ph := phone
		p.Phone = &ph
	}
	require.NoError(e.t, e.repo.CreateUserWithProfile(context.Background(), u, p))
	return id
}

// addUserNoProfile seeds a user with no profile row.
func (e *testEnv) addUserNoProfile(email string) string {
	id := uuid.NewString()
	e.repo.mu.Lock()
	e.repo.users[id] = &models.User{ID: id, Email: strings.ToLower(email), SignupRole: models.RoleStudent}
	e.repo.mu.Unlock()
	return id
}

func (e *testEnv) login(userID string) string {
	sid := uuid.NewString()
	require.NoError(e.t, e.sess.Create(context.Background(), sid, userID))
	return sid
}

func (e *testEnv) do(method, path, sessionID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: app.AppSessionCookie, Value: sessionID})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
