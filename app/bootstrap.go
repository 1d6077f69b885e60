// app/bootstrap.go
package app

import (
	"context"

	"cinara/db"

	"go.uber.org/zap"
)

// PromoteAdmins is the provisioning step for the admin role: every email in
// ADMIN_EMAILS that already has an account gets its profile flipped to
// admin. Signup never grants admin, so this (plus the same check at first
// profile creation) is the only path to the role.
func PromoteAdmins(ctx context.Context, cfg Config, repo *db.Repo, log *zap.Logger) {
	for _, email := range cfg.AdminEmails {
		promoted, err := repo.PromoteAdminByEmail(ctx, email)
		if err != nil {
			log.Warn("admin promotion failed", zap.String("email", email), zap.Error(err))
			continue
		}
		if promoted {
			log.Info("promoted admin", zap.String("email", email))
		}
	}
}
