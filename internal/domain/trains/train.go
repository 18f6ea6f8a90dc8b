package trains

// Train is a row of the trains reference table.
type Train struct {
	TrainNo     string  `gorm:"column:train_no;primaryKey;type:varchar(10)" json:"train_no"`
	TrainName   *string `gorm:"column:train_name;type:varchar(100)" json:"train_name"`
	Source      *string `gorm:"column:source;type:varchar(100)" json:"source"`
	Destination *string `gorm:"column:destination;type:varchar(100)" json:"destination"`
	StartTime   *string `gorm:"column:start_time;type:varchar(20)" json:"start_time"`
	ArrivalTime *string `gorm:"column:arrival_time;type:varchar(20)" json:"arrival_time"`
}

func (Train) TableName() string { return "trains" }

// TrainDetail is the extended train record complaints reference by id.
type TrainDetail struct {
	ID        int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrainNo   string  `gorm:"column:train_no;type:varchar(10);index" json:"train_no"`
	TrainName *string `gorm:"column:train_name;type:varchar(100)" json:"train_name"`
	Depot     *string `gorm:"column:Depot;type:varchar(20)" json:"Depot"`
}

func (TrainDetail) TableName() string { return "trains_traindetails" }
