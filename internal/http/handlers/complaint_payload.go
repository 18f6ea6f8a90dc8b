package handlers

import (
	"time"

	types "github.com/yashpatel08/railsathi/internal/domain"
)

type mediaPayload struct {
	ID        int64     `json:"id"`
	MediaType string    `json:"media_type"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy *string   `json:"created_by"`
	UpdatedBy *string   `json:"updated_by"`
}

type complaintPayload struct {
	ComplainID          int64          `json:"complain_id"`
	PNRNumber           *string        `json:"pnr_number"`
	IsPNRValidated      *string        `json:"is_pnr_validated"`
	Name                *string        `json:"name"`
	MobileNumber        *string        `json:"mobile_number"`
	ComplainType        *string        `json:"complain_type"`
	ComplainDescription *string        `json:"complain_description"`
	ComplainDate        string         `json:"complain_date"`
	ComplainStatus      string         `json:"complain_status"`
	TrainID             *int64         `json:"train_id"`
	TrainNumber         *string        `json:"train_number"`
	TrainName           *string        `json:"train_name"`
	Coach               *string        `json:"coach"`
	BerthNo             *int           `json:"berth_no"`
	CreatedAt           time.Time      `json:"created_at"`
	CreatedBy           *string        `json:"created_by"`
	UpdatedAt           time.Time      `json:"updated_at"`
	UpdatedBy           *string        `json:"updated_by"`
	TrainNo             *string        `json:"train_no"`
	TrainDepot          *string        `json:"train_depot"`
	MediaFiles          []mediaPayload `json:"rail_sathi_complain_media_files"`
}

func newComplaintPayload(c *types.Complaint) complaintPayload {
	p := complaintPayload{
		ComplainID:          c.ComplainID,
		PNRNumber:           c.PNRNumber,
		IsPNRValidated:      c.IsPNRValidated,
		Name:                c.Name,
		MobileNumber:        c.MobileNumber,
		ComplainType:        c.ComplainType,
		ComplainDescription: c.ComplainDescription,
		ComplainDate:        time.Time(c.ComplainDate).Format(time.DateOnly),
		ComplainStatus:      c.ComplainStatus,
		TrainID:             c.TrainID,
		TrainNumber:         c.TrainNumber,
		TrainName:           joinedOr(c.JoinedTrainName, c.TrainName),
		Coach:               c.Coach,
		BerthNo:             c.BerthNo,
		CreatedAt:           c.CreatedAt,
		CreatedBy:           c.CreatedBy,
		UpdatedAt:           c.UpdatedAt,
		UpdatedBy:           c.UpdatedBy,
		TrainNo:             c.JoinedTrainNo,
		TrainDepot:          c.TrainDepot,
		MediaFiles:          make([]mediaPayload, 0, len(c.Media)),
	}
	for _, m := range c.Media {
		p.MediaFiles = append(p.MediaFiles, mediaPayload{
			ID:        m.ID,
			MediaType: m.MediaType,
			MediaURL:  m.MediaURL,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
		})
	}
	return p
}

// joinedOr prefers the value joined from trains_traindetails.
func joinedOr(joined, own *string) *string {
	if joined != nil && *joined != "" {
		return joined
	}
	return own
}
