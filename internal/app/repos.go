package app

import (
	"gorm.io/gorm"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type Repos struct {
	Complaint      repos.ComplaintRepo
	ComplaintMedia repos.ComplaintMediaRepo
	Train          repos.TrainRepo
	TrainDetail    repos.TrainDetailRepo
	Staff          repos.StaffRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Complaint:      repos.NewComplaintRepo(db, log),
		ComplaintMedia: repos.NewComplaintMediaRepo(db, log),
		Train:          repos.NewTrainRepo(db, log),
		TrainDetail:    repos.NewTrainDetailRepo(db, log),
		Staff:          repos.NewStaffRepo(db, log),
	}
}
