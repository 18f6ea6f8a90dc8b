package repos

import (
	"gorm.io/gorm"

	"github.com/yashpatel08/railsathi/internal/data/repos/complaints"
	"github.com/yashpatel08/railsathi/internal/data/repos/sqlquery"
	"github.com/yashpatel08/railsathi/internal/data/repos/staff"
	"github.com/yashpatel08/railsathi/internal/data/repos/trains"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type ComplaintRepo = complaints.ComplaintRepo
type ComplaintMediaRepo = complaints.ComplaintMediaRepo

type TrainRepo = trains.TrainRepo
type TrainDetailRepo = trains.TrainDetailRepo

type StaffRepo = staff.StaffRepo

type SQLQueryRunner = sqlquery.Runner

var ErrTrainExists = trains.ErrTrainExists

func NewComplaintRepo(db *gorm.DB, baseLog *logger.Logger) ComplaintRepo {
	return complaints.NewComplaintRepo(db, baseLog)
}
func NewComplaintMediaRepo(db *gorm.DB, baseLog *logger.Logger) ComplaintMediaRepo {
	return complaints.NewComplaintMediaRepo(db, baseLog)
}

func NewTrainRepo(db *gorm.DB, baseLog *logger.Logger) TrainRepo {
	return trains.NewTrainRepo(db, baseLog)
}
func NewTrainDetailRepo(db *gorm.DB, baseLog *logger.Logger) TrainDetailRepo {
	return trains.NewTrainDetailRepo(db, baseLog)
}

func NewStaffRepo(db *gorm.DB, baseLog *logger.Logger) StaffRepo {
	return staff.NewStaffRepo(db, baseLog)
}

func NewSQLQueryRunner(db *gorm.DB, baseLog *logger.Logger) SQLQueryRunner {
	return sqlquery.NewRunner(db, baseLog)
}
