package domain

import (
	"github.com/yashpatel08/railsathi/internal/domain/complaints"
	"github.com/yashpatel08/railsathi/internal/domain/staff"
	"github.com/yashpatel08/railsathi/internal/domain/trains"
)

const (
	ComplaintStatusPending   = complaints.StatusPending
	ComplaintStatusCompleted = complaints.StatusCompleted
	PNRNotAttempted          = complaints.PNRNotAttempted

	MediaTypeImage = complaints.MediaTypeImage
	MediaTypeVideo = complaints.MediaTypeVideo

	RoleWarRoomUser  = staff.RoleWarRoomUser
	RoleS2Admin      = staff.RoleS2Admin
	RoleRailwayAdmin = staff.RoleRailwayAdmin
	AccessOngoing    = staff.AccessOngoing
)

type (
	Complaint      = complaints.Complaint
	ComplaintMedia = complaints.ComplaintMedia

	Train       = trains.Train
	TrainDetail = trains.TrainDetail
	Depot       = trains.Depot
	Division    = trains.Division
	Zone        = trains.Zone
	Lineage     = trains.Lineage

	User         = staff.User
	Role         = staff.Role
	TrainAccess  = staff.TrainAccess
	AccessWindow = staff.AccessWindow
	AccessGrant  = staff.AccessGrant
)

// Models lists every table the service owns or reads, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Complaint{},
		&ComplaintMedia{},
		&Train{},
		&TrainDetail{},
		&Depot{},
		&Division{},
		&Zone{},
		&Role{},
		&User{},
		&TrainAccess{},
	}
}
