package complaints

import "time"

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// ComplaintMedia is one uploaded file bound to exactly one Complaint.
type ComplaintMedia struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ComplainID int64     `gorm:"column:complain_id;not null;index" json:"complain_id"`
	MediaType  string    `gorm:"column:media_type;type:varchar(10);not null" json:"media_type"`
	MediaURL   string    `gorm:"column:media_url;type:text;not null" json:"media_url"`
	CreatedBy  *string   `gorm:"column:created_by;type:varchar(100)" json:"created_by"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedBy  *string   `gorm:"column:updated_by;type:varchar(100)" json:"updated_by"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (ComplaintMedia) TableName() string { return "rail_sathi_railsathicomplainmedia" }
