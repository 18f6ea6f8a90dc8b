package trains

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

var ErrTrainExists = errors.New("train already exists")

type TrainRepo interface {
	List(dbc dbctx.Context) ([]*types.Train, error)
	GetByNumber(dbc dbctx.Context, trainNo string) (*types.Train, error)
	Create(dbc dbctx.Context, row *types.Train) error
}

type trainRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainRepo(db *gorm.DB, baseLog *logger.Logger) TrainRepo {
	return &trainRepo{db: db, log: baseLog.With("repo", "TrainRepo")}
}

func (r *trainRepo) List(dbc dbctx.Context) ([]*types.Train, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.Train{}
	if err := transaction.WithContext(dbc.Ctx).Order("train_no ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *trainRepo) GetByNumber(dbc dbctx.Context, trainNo string) (*types.Train, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	trainNo = strings.TrimSpace(trainNo)
	if trainNo == "" {
		return nil, nil
	}
	var row types.Train
	if err := transaction.WithContext(dbc.Ctx).Where("train_no = ?", trainNo).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create returns ErrTrainExists when train_no is already present.
func (r *trainRepo) Create(dbc dbctx.Context, row *types.Train) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || strings.TrimSpace(row.TrainNo) == "" {
		return errors.New("train_no required")
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&types.Train{}).Where("train_no = ?", row.TrainNo).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrTrainExists
		}
		return tx.Create(row).Error
	})
}
