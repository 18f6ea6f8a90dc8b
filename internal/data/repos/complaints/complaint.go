package complaints

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type ComplaintRepo interface {
	Create(dbc dbctx.Context, row *types.Complaint) (*types.Complaint, error)
	GetWithMedia(dbc dbctx.Context, complainID int64) (*types.Complaint, error)
	ListByDateAndMobile(dbc dbctx.Context, day time.Time, mobile string) ([]*types.Complaint, error)
	UpdateFields(dbc dbctx.Context, complainID int64, updates map[string]interface{}) error
	DeleteCascade(dbc dbctx.Context, complainID int64) (int64, error)
}

type complaintRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	media ComplaintMediaRepo
}

func NewComplaintRepo(db *gorm.DB, baseLog *logger.Logger) ComplaintRepo {
	return &complaintRepo{
		db:    db,
		log:   baseLog.With("repo", "ComplaintRepo"),
		media: NewComplaintMediaRepo(db, baseLog),
	}
}

const complaintTable = "rail_sathi_railsathicomplain AS c"

func (r *complaintRepo) joined(transaction *gorm.DB, dbc dbctx.Context) *gorm.DB {
	return transaction.WithContext(dbc.Ctx).
		Table(complaintTable).
		Select(`c.*, t.train_no AS joined_train_no, t.train_name AS joined_train_name, t."Depot" AS train_depot`).
		Joins("LEFT JOIN trains_traindetails t ON c.train_id = t.id")
}

func (r *complaintRepo) Create(dbc dbctx.Context, row *types.Complaint) (*types.Complaint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil, errors.New("complaint row required")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if row.ComplainStatus == "" {
		row.ComplainStatus = types.ComplaintStatusPending
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// GetWithMedia returns nil, nil when the complaint does not exist.
func (r *complaintRepo) GetWithMedia(dbc dbctx.Context, complainID int64) (*types.Complaint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if complainID <= 0 {
		return nil, nil
	}
	var rows []*types.Complaint
	if err := r.joined(transaction, dbc).
		Where("c.complain_id = ?", complainID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := r.attachMedia(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, rows); err != nil {
		return nil, err
	}
	return rows[0], nil
}

func (r *complaintRepo) ListByDateAndMobile(dbc dbctx.Context, day time.Time, mobile string) ([]*types.Complaint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.Complaint{}
	if mobile == "" {
		return results, nil
	}
	if err := r.joined(transaction, dbc).
		Where("c.complain_date = ? AND c.mobile_number = ?", CalendarDate(day), mobile).
		Order("c.complain_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	if err := r.attachMedia(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, results); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateFields touches only the given columns. updated_at is stamped when the
// caller did not set it.
func (r *complaintRepo) UpdateFields(dbc dbctx.Context, complainID int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if complainID <= 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Complaint{}).
		Where("complain_id = ?", complainID).
		Updates(updates).Error
}

// DeleteCascade removes the complaint's media rows and then the complaint in
// one transaction and returns the number of complaint rows removed.
func (r *complaintRepo) DeleteCascade(dbc dbctx.Context, complainID int64) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if complainID <= 0 {
		return 0, nil
	}
	var deleted int64
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complain_id = ?", complainID).Delete(&types.ComplaintMedia{}).Error; err != nil {
			return err
		}
		res := tx.Where("complain_id = ?", complainID).Delete(&types.Complaint{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *complaintRepo) attachMedia(dbc dbctx.Context, rows []*types.Complaint) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(rows))
	byID := make(map[int64]*types.Complaint, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ComplainID)
		byID[c.ComplainID] = c
		c.Media = []types.ComplaintMedia{}
	}
	media, err := r.media.ListByComplaintIDs(dbc, ids)
	if err != nil {
		return err
	}
	for _, m := range media {
		if c := byID[m.ComplainID]; c != nil {
			c.Media = append(c.Media, *m)
		}
	}
	return nil
}

// CalendarDate truncates t to its calendar day at UTC midnight, the stored form
// of complain_date.
func CalendarDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
