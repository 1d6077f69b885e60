package db

import (
	"cinara/models"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUserWithProfile inserts both rows in one transaction so a failed
// profile insert never leaves a user without a role.
func (r *Repo) CreateUserWithProfile(ctx context.Context, u *models.User, p *models.Profile) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	// 用数据库时间更准，且避免并发覆盖：NOW() + 计数自增
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

// Profiles

func (r *Repo) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureProfile returns the existing profile or lazily creates one from the
// user's signup attributes. isAdmin overrides the requested role; it comes
// from server-held config, never from the request.
func (r *Repo) EnsureProfile(ctx context.Context, u *models.User, isAdmin bool) (*models.Profile, error) {
	var p models.Profile
	err := r.DB.WithContext(ctx).First(&p, "id = ?", u.ID).Error
	if err == nil {
		return &p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	role := u.SignupRole
	if isAdmin {
		role = models.RoleAdmin
	}
	p = models.Profile{ID: u.ID, Role: role, FullName: u.FullName}
	if role == models.RoleStudent && u.Phone != "" {
		phone := u.Phone
		p.Phone = &phone
	}
	if err := r.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) TouchProfileSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

// PromoteAdminByEmail flips an existing profile to admin. Used only by the
// bootstrap provisioning step, not reachable from any request handler.
func (r *Repo) PromoteAdminByEmail(ctx context.Context, email string) (bool, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	res := r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND role <> ?", u.ID, models.RoleAdmin).
		Update("role", models.RoleAdmin)
	return res.RowsAffected > 0, res.Error
}

// Admin listing (profiles joined with the user row for email)

type UserSummary struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	FullName   string      `json:"fullName"`
	Phone      *string     `json:"phone,omitempty"`
	LastSeenAt *time.Time  `json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type ListUsersResult struct {
	Users []UserSummary `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Profile{}).
		Joins("JOIN users ON users.id = profiles.id")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(users.email) LIKE ? OR LOWER(profiles.full_name) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []UserSummary
	if err := tx.
		Select("profiles.id, users.email, profiles.role, profiles.full_name, profiles.phone, profiles.last_seen_at, profiles.created_at").
		Order("profiles.created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Scan(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

// DeleteUserByID removes the profile and the user row together.
func (r *Repo) DeleteUserByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{ID: id}).Error
	})
}

func NewID() string { return uuid.NewString() }
