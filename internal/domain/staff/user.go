package staff

import "gorm.io/datatypes"

const (
	RoleWarRoomUser  = "war room user"
	RoleS2Admin      = "s2 admin"
	RoleRailwayAdmin = "railway admin"

	// AccessOngoing marks an open-ended train access grant.
	AccessOngoing = "ongoing"
)

// User is a staff member that may receive complaint notifications.
type User struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email      string  `gorm:"column:email;type:varchar(254)" json:"email"`
	FirstName  *string `gorm:"column:first_name;type:varchar(100)" json:"first_name"`
	LastName   *string `gorm:"column:last_name;type:varchar(100)" json:"last_name"`
	Depo       *string `gorm:"column:depo;type:text" json:"depo"`
	UserTypeID *int64  `gorm:"column:user_type_id;index" json:"user_type_id"`
}

func (User) TableName() string { return "user_onboarding_user" }

type Role struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(100);uniqueIndex" json:"name"`
}

func (Role) TableName() string { return "user_onboarding_roles" }

// TrainAccess grants a user notification scope over specific trains.
// TrainDetails maps train number to a list of AccessWindow values.
type TrainAccess struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       int64          `gorm:"column:user_id;not null;index" json:"user_id"`
	TrainDetails datatypes.JSON `gorm:"column:train_details" json:"train_details"`
}

func (TrainAccess) TableName() string { return "trains_trainaccess" }

type AccessWindow struct {
	OriginDate string `json:"origin_date"`
	EndDate    string `json:"end_date"`
}

// AccessGrant is a user joined with their raw train access record.
type AccessGrant struct {
	UserID       int64          `gorm:"column:user_id"`
	Email        string         `gorm:"column:email"`
	FirstName    *string        `gorm:"column:first_name"`
	LastName     *string        `gorm:"column:last_name"`
	TrainDetails datatypes.JSON `gorm:"column:train_details"`
}
