package complaints

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type ComplaintMediaRepo interface {
	Create(dbc dbctx.Context, row *types.ComplaintMedia) error
	ListByComplaintIDs(dbc dbctx.Context, complainIDs []int64) ([]*types.ComplaintMedia, error)
	DeleteByIDs(dbc dbctx.Context, complainID int64, ids []int64) (int64, error)
}

type complaintMediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewComplaintMediaRepo(db *gorm.DB, baseLog *logger.Logger) ComplaintMediaRepo {
	return &complaintMediaRepo{db: db, log: baseLog.With("repo", "ComplaintMediaRepo")}
}

// Create inserts one media row inside its own transaction so concurrent
// ingests for the same complaint never share a connection.
func (r *complaintMediaRepo) Create(dbc dbctx.Context, row *types.ComplaintMedia) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.ComplainID <= 0 {
		return errors.New("media row requires complain_id")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
}

func (r *complaintMediaRepo) ListByComplaintIDs(dbc dbctx.Context, complainIDs []int64) ([]*types.ComplaintMedia, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ComplaintMedia
	if len(complainIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("complain_id IN ?", complainIDs).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByIDs only removes ids that belong to complainID.
func (r *complaintMediaRepo) DeleteByIDs(dbc dbctx.Context, complainID int64, ids []int64) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if complainID <= 0 || len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("complain_id = ? AND id IN ?", complainID, ids).
		Delete(&types.ComplaintMedia{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
