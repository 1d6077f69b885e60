package db

import (
	"cinara/models"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInviteAccepted is returned when the conditional accept update matches
// zero rows: somebody else already consumed the invite.
var ErrInviteAccepted = errors.New("invite already accepted")

func (r *Repo) CreateInvite(ctx context.Context, inv *models.Invite) error {
	if inv.ID == "" {
		inv.ID = NewID()
	}
	return r.DB.WithContext(ctx).Create(inv).Error
}

func (r *Repo) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	var inv models.Invite
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptStudentInvite consumes the invite and links the student to the
// inviting teacher in one transaction. The accepted_at IS NULL predicate is
// the optimistic lock: concurrent accepts race on the update and exactly one
// wins. The linkage insert is ON CONFLICT DO NOTHING against the unique
// (teacher_id, student_id) index, so a retry cannot produce a second row.
func (r *Repo) AcceptStudentInvite(ctx context.Context, inviteID, teacherID, studentID string, workspaceID *string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invite{}).
			Where("id = ? AND accepted_at IS NULL", inviteID).
			Update("accepted_at", gorm.Expr("NOW()"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteAccepted
		}
		link := models.TeacherStudent{
			TeacherID:   teacherID,
			StudentID:   studentID,
			WorkspaceID: workspaceID,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
}

// AcceptWorkspaceInvite is the workspace_teacher counterpart; same CAS plus
// idempotent membership insert.
func (r *Repo) AcceptWorkspaceInvite(ctx context.Context, inviteID, workspaceID, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invite{}).
			Where("id = ? AND accepted_at IS NULL", inviteID).
			Update("accepted_at", gorm.Expr("NOW()"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteAccepted
		}
		member := models.WorkspaceMember{
			WorkspaceID: workspaceID,
			UserID:      userID,
			Role:        "member",
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
}
