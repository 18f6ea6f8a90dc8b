package trains

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

type TrainDetailRepo interface {
	GetByID(dbc dbctx.Context, id int64) (*types.TrainDetail, error)
	GetByNumber(dbc dbctx.Context, trainNo string) (*types.TrainDetail, error)
	Lineage(dbc dbctx.Context, depotCode string) (*types.Lineage, error)
}

type trainDetailRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainDetailRepo(db *gorm.DB, baseLog *logger.Logger) TrainDetailRepo {
	return &trainDetailRepo{db: db, log: baseLog.With("repo", "TrainDetailRepo")}
}

func (r *trainDetailRepo) GetByID(dbc dbctx.Context, id int64) (*types.TrainDetail, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var rows []*types.TrainDetail
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetByNumber picks the lowest id when several detail rows share a number.
func (r *trainDetailRepo) GetByNumber(dbc dbctx.Context, trainNo string) (*types.TrainDetail, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	trainNo = strings.TrimSpace(trainNo)
	if trainNo == "" {
		return nil, nil
	}
	var rows []*types.TrainDetail
	if err := transaction.WithContext(dbc.Ctx).
		Where("train_no = ?", trainNo).
		Order("id ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Lineage walks depot -> division -> zone. Levels that are missing are left
// nil; only store errors are returned.
func (r *trainDetailRepo) Lineage(dbc dbctx.Context, depotCode string) (*types.Lineage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := &types.Lineage{}
	depotCode = strings.TrimSpace(depotCode)
	if depotCode == "" {
		return out, nil
	}
	tx := transaction.WithContext(dbc.Ctx)

	var depot types.Depot
	if err := tx.Where("depot_code = ?", depotCode).First(&depot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.DepotCode = pointers.String(depot.DepotCode)
	if depot.DivisionID == nil {
		return out, nil
	}

	var division types.Division
	if err := tx.Where("division_id = ?", *depot.DivisionID).First(&division).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.DivisionCode = pointers.String(division.DivisionCode)
	if division.ZoneID == nil {
		return out, nil
	}

	var zone types.Zone
	if err := tx.Where("zone_id = ?", *division.ZoneID).First(&zone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.ZoneCode = pointers.String(zone.ZoneCode)
	return out, nil
}
