package staff

import (
	"bytes"
	"strings"

	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type StaffRepo interface {
	ListByRole(dbc dbctx.Context, roleName string) ([]*types.User, error)
	ListAccessGrants(dbc dbctx.Context) ([]*types.AccessGrant, error)
}

type staffRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStaffRepo(db *gorm.DB, baseLog *logger.Logger) StaffRepo {
	return &staffRepo{db: db, log: baseLog.With("repo", "StaffRepo")}
}

func (r *staffRepo) ListByRole(dbc dbctx.Context, roleName string) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.User{}
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Table("user_onboarding_user AS u").
		Select("u.*").
		Joins("JOIN user_onboarding_roles r ON u.user_type_id = r.id").
		Where("r.name = ?", roleName).
		Order("u.id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListAccessGrants returns every user holding a non-empty train access record.
func (r *staffRepo) ListAccessGrants(dbc dbctx.Context) ([]*types.AccessGrant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.AccessGrant
	if err := transaction.WithContext(dbc.Ctx).
		Table("trains_trainaccess AS ta").
		Select("u.id AS user_id, u.email, u.first_name, u.last_name, ta.train_details").
		Joins("JOIN user_onboarding_user u ON ta.user_id = u.id").
		Where("ta.train_details IS NOT NULL").
		Order("ta.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.AccessGrant, 0, len(rows))
	for _, g := range rows {
		raw := bytes.TrimSpace(g.TrainDetails)
		if len(raw) == 0 || bytes.Equal(raw, []byte("{}")) || bytes.Equal(raw, []byte("null")) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}
