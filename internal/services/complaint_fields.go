package services

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yashpatel08/railsathi/internal/data/repos/complaints"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/apierr"
)

// ComplaintFields is a set of optional complaint columns. A nil field is
// absent from the request.
type ComplaintFields struct {
	PNRNumber           *string
	IsPNRValidated      *string
	Name                *string
	MobileNumber        *string
	ComplainType        *string
	ComplainDescription *string
	ComplainDate        *string
	ComplainStatus      *string
	TrainID             *int64
	TrainNumber         *string
	TrainName           *string
	Coach               *string
	BerthNo             *int
}

// Actor identifies the holder issuing a mutation.
type Actor struct {
	Name         string
	MobileNumber string
}

func errInvalidDate() error {
	return apierr.Validation("invalid_date", "Invalid date format. Use YYYY-MM-DD")
}

// ParseComplaintDate parses YYYY-MM-DD into the stored calendar date.
func ParseComplaintDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, errInvalidDate()
	}
	return complaints.CalendarDate(t), nil
}

// PatchUpdates returns only the columns present in f. A present but
// malformed complain_date is a validation error.
func (f ComplaintFields) PatchUpdates() (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	setStr := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setStr("pnr_number", f.PNRNumber)
	setStr("is_pnr_validated", f.IsPNRValidated)
	setStr("name", f.Name)
	setStr("mobile_number", f.MobileNumber)
	setStr("complain_type", f.ComplainType)
	setStr("complain_description", f.ComplainDescription)
	setStr("complain_status", f.ComplainStatus)
	setStr("train_number", f.TrainNumber)
	setStr("train_name", f.TrainName)
	setStr("coach", f.Coach)
	if f.ComplainDate != nil {
		d, err := ParseComplaintDate(*f.ComplainDate)
		if err != nil {
			return nil, err
		}
		updates["complain_date"] = d
	}
	if f.TrainID != nil {
		updates["train_id"] = *f.TrainID
	}
	if f.BerthNo != nil {
		updates["berth_no"] = *f.BerthNo
	}
	return updates, nil
}

// ReplaceUpdates returns the fixed column set of a full replacement. Absent
// fields are cleared; status and PNR validation fall back to their defaults
// and a missing complain_date becomes today.
func (f ComplaintFields) ReplaceUpdates(today time.Time) (map[string]interface{}, error) {
	nullable := func(v *string) interface{} {
		if v == nil {
			return nil
		}
		return *v
	}
	updates := map[string]interface{}{
		"pnr_number":           nullable(f.PNRNumber),
		"is_pnr_validated":     types.PNRNotAttempted,
		"name":                 nullable(f.Name),
		"mobile_number":        nullable(f.MobileNumber),
		"complain_type":        nullable(f.ComplainType),
		"complain_description": nullable(f.ComplainDescription),
		"complain_date":        complaints.CalendarDate(today),
		"complain_status":      types.ComplaintStatusPending,
		"train_id":             nil,
		"train_number":         nullable(f.TrainNumber),
		"train_name":           nullable(f.TrainName),
		"coach":                nullable(f.Coach),
		"berth_no":             nil,
	}
	if f.IsPNRValidated != nil && strings.TrimSpace(*f.IsPNRValidated) != "" {
		updates["is_pnr_validated"] = *f.IsPNRValidated
	}
	if f.ComplainStatus != nil && strings.TrimSpace(*f.ComplainStatus) != "" {
		updates["complain_status"] = *f.ComplainStatus
	}
	if f.ComplainDate != nil && strings.TrimSpace(*f.ComplainDate) != "" {
		d, err := ParseComplaintDate(*f.ComplainDate)
		if err != nil {
			return nil, err
		}
		updates["complain_date"] = d
	}
	if f.TrainID != nil {
		updates["train_id"] = *f.TrainID
	}
	if f.BerthNo != nil {
		updates["berth_no"] = *f.BerthNo
	}
	return updates, nil
}

// applyTrain overwrites the train columns in updates with the resolved
// identity so train_id, train_number and train_name stay consistent.
func applyTrain(updates map[string]interface{}, ref *TrainRef) {
	if ref == nil {
		return
	}
	updates["train_id"] = ref.ID
	updates["train_number"] = ref.Number
	if ref.Name != nil {
		updates["train_name"] = *ref.Name
	}
}
