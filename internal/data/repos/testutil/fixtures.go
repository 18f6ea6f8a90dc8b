package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

func SeedTrainDetail(tb testing.TB, ctx context.Context, tx *gorm.DB, trainNo, name, depot string) *types.TrainDetail {
	tb.Helper()
	td := &types.TrainDetail{TrainNo: trainNo, TrainName: pointers.NonEmpty(name), Depot: pointers.NonEmpty(depot)}
	if err := tx.WithContext(ctx).Create(td).Error; err != nil {
		tb.Fatalf("seed train detail: %v", err)
	}
	return td
}

func SeedTrain(tb testing.TB, ctx context.Context, tx *gorm.DB, trainNo, name string) *types.Train {
	tb.Helper()
	tr := &types.Train{
		TrainNo:     trainNo,
		TrainName:   pointers.NonEmpty(name),
		Source:      pointers.String("NDLS"),
		Destination: pointers.String("BCT"),
		StartTime:   pointers.String("16:55:00"),
		ArrivalTime: pointers.String("08:35:00"),
	}
	if err := tx.WithContext(ctx).Create(tr).Error; err != nil {
		tb.Fatalf("seed train: %v", err)
	}
	return tr
}

// SeedLineage creates depot -> division -> zone rows for depotCode.
func SeedLineage(tb testing.TB, ctx context.Context, tx *gorm.DB, depotCode, divisionCode, zoneCode string) {
	tb.Helper()
	zone := &types.Zone{ZoneCode: zoneCode}
	if err := tx.WithContext(ctx).Create(zone).Error; err != nil {
		tb.Fatalf("seed zone: %v", err)
	}
	division := &types.Division{DivisionCode: divisionCode, ZoneID: &zone.ZoneID}
	if err := tx.WithContext(ctx).Create(division).Error; err != nil {
		tb.Fatalf("seed division: %v", err)
	}
	depot := &types.Depot{DepotCode: depotCode, DivisionID: &division.DivisionID}
	if err := tx.WithContext(ctx).Create(depot).Error; err != nil {
		tb.Fatalf("seed depot: %v", err)
	}
}

func SeedRole(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Role {
	tb.Helper()
	r := &types.Role{Name: name}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed role: %v", err)
	}
	return r
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, role *types.Role, depo string) *types.User {
	tb.Helper()
	u := &types.User{
		Email:     email,
		FirstName: pointers.String("Staff"),
		LastName:  pointers.String("Member"),
		Depo:      pointers.NonEmpty(depo),
	}
	if role != nil {
		u.UserTypeID = &role.ID
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedTrainAccess stores grants as {train_no: [{origin_date, end_date}]}.
func SeedTrainAccess(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, grants map[string][]types.AccessWindow) *types.TrainAccess {
	tb.Helper()
	raw, err := json.Marshal(grants)
	if err != nil {
		tb.Fatalf("marshal grants: %v", err)
	}
	ta := &types.TrainAccess{UserID: userID, TrainDetails: datatypes.JSON(raw)}
	if err := tx.WithContext(ctx).Create(ta).Error; err != nil {
		tb.Fatalf("seed train access: %v", err)
	}
	return ta
}

func SeedComplaint(tb testing.TB, ctx context.Context, tx *gorm.DB, name, mobile string, date time.Time) *types.Complaint {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Complaint{
		Name:           pointers.String(name),
		MobileNumber:   pointers.String(mobile),
		IsPNRValidated: pointers.String(types.PNRNotAttempted),
		ComplainType:   pointers.String("cleanliness"),
		ComplainDate:   datatypes.Date(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)),
		ComplainStatus: types.ComplaintStatusPending,
		CreatedBy:      pointers.String(name),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed complaint: %v", err)
	}
	return c
}

func SeedMedia(tb testing.TB, ctx context.Context, tx *gorm.DB, complainID int64, mediaType string) *types.ComplaintMedia {
	tb.Helper()
	now := time.Now().UTC()
	m := &types.ComplaintMedia{
		ComplainID: complainID,
		MediaType:  mediaType,
		MediaURL:   "https://storage.googleapis.com/test-bucket/" + mediaType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed media: %v", err)
	}
	return m
}
