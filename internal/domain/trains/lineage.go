package trains

// Depot, Division and Zone form the geographic lineage of a train detail.

type Depot struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DepotCode  string `gorm:"column:depot_code;type:varchar(20);uniqueIndex" json:"depot_code"`
	DivisionID *int64 `gorm:"column:division_id" json:"division_id"`
}

func (Depot) TableName() string { return "station_depot" }

type Division struct {
	DivisionID   int64  `gorm:"column:division_id;primaryKey;autoIncrement" json:"division_id"`
	DivisionCode string `gorm:"column:division_code;type:varchar(20)" json:"division_code"`
	ZoneID       *int64 `gorm:"column:zone_id" json:"zone_id"`
}

func (Division) TableName() string { return "station_division" }

type Zone struct {
	ZoneID   int64  `gorm:"column:zone_id;primaryKey;autoIncrement" json:"zone_id"`
	ZoneCode string `gorm:"column:zone_code;type:varchar(20)" json:"zone_code"`
}

func (Zone) TableName() string { return "station_zone" }

// Lineage holds the codes resolved for a depot. Missing levels stay nil.
type Lineage struct {
	DepotCode    *string `json:"depot_code"`
	DivisionCode *string `json:"division_code"`
	ZoneCode     *string `json:"zone_code"`
}
