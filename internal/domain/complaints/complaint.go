package complaints

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"

	PNRNotAttempted = "not-attempted"
)

// Complaint is a passenger-filed report tied to a train journey.
type Complaint struct {
	ComplainID          int64          `gorm:"column:complain_id;primaryKey;autoIncrement" json:"complain_id"`
	PNRNumber           *string        `gorm:"column:pnr_number;type:varchar(20)" json:"pnr_number"`
	IsPNRValidated      *string        `gorm:"column:is_pnr_validated;type:varchar(20);default:'not-attempted'" json:"is_pnr_validated"`
	Name                *string        `gorm:"column:name;type:varchar(100)" json:"name"`
	MobileNumber        *string        `gorm:"column:mobile_number;type:varchar(20);index:idx_rs_complain_mobile_date,priority:1" json:"mobile_number"`
	ComplainType        *string        `gorm:"column:complain_type;type:varchar(100)" json:"complain_type"`
	ComplainDescription *string        `gorm:"column:complain_description;type:text" json:"complain_description"`
	ComplainDate        datatypes.Date `gorm:"column:complain_date;index:idx_rs_complain_mobile_date,priority:2" json:"complain_date"`
	ComplainStatus      string         `gorm:"column:complain_status;type:varchar(20);not null;default:'pending'" json:"complain_status"`
	TrainID             *int64         `gorm:"column:train_id;index" json:"train_id"`
	TrainNumber         *string        `gorm:"column:train_number;type:varchar(10)" json:"train_number"`
	TrainName           *string        `gorm:"column:train_name;type:varchar(100)" json:"train_name"`
	Coach               *string        `gorm:"column:coach;type:varchar(10)" json:"coach"`
	BerthNo             *int           `gorm:"column:berth_no" json:"berth_no"`
	CreatedBy           *string        `gorm:"column:created_by;type:varchar(100)" json:"created_by"`
	CreatedAt           time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedBy           *string        `gorm:"column:updated_by;type:varchar(100)" json:"updated_by"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`

	// Joined from trains_traindetails on read.
	JoinedTrainNo   *string `gorm:"column:joined_train_no;->;-:migration" json:"-"`
	JoinedTrainName *string `gorm:"column:joined_train_name;->;-:migration" json:"-"`
	TrainDepot      *string `gorm:"column:train_depot;->;-:migration" json:"-"`

	Media []ComplaintMedia `gorm:"-" json:"-"`
}

func (Complaint) TableName() string { return "rail_sathi_railsathicomplain" }

// IsCompleted reports whether holder-initiated edits are frozen.
func (c *Complaint) IsCompleted() bool {
	return c != nil && c.ComplainStatus == StatusCompleted
}
