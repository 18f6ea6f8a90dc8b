package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/apierr"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

// TrainDetailsView is a train detail row with its resolved depot lineage.
type TrainDetailsView struct {
	Detail    *types.TrainDetail `json:"train_detail"`
	ExtraInfo TrainExtraInfo     `json:"extra_info"`
}

type TrainExtraInfo struct {
	DepotCode    string `json:"depot_code"`
	DivisionCode string `json:"division_code"`
	ZoneCode     string `json:"zone_code"`
}

type TrainCatalogService interface {
	ListTrains(ctx context.Context) ([]*types.Train, error)
	GetTrain(ctx context.Context, trainNo string) (*types.Train, error)
	CreateTrain(ctx context.Context, train *types.Train) (*types.Train, error)
	GetTrainDetails(ctx context.Context, trainNo string) (*TrainDetailsView, error)
}

type trainCatalogService struct {
	log        *logger.Logger
	trainRepo  repos.TrainRepo
	detailRepo repos.TrainDetailRepo
}

func NewTrainCatalogService(log *logger.Logger, trainRepo repos.TrainRepo, detailRepo repos.TrainDetailRepo) TrainCatalogService {
	return &trainCatalogService{
		log:        log.With("service", "TrainCatalogService"),
		trainRepo:  trainRepo,
		detailRepo: detailRepo,
	}
}

func (s *trainCatalogService) ListTrains(ctx context.Context) ([]*types.Train, error) {
	rows, err := s.trainRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list trains: %w", err)
	}
	return rows, nil
}

func (s *trainCatalogService) GetTrain(ctx context.Context, trainNo string) (*types.Train, error) {
	row, err := s.trainRepo.GetByNumber(dbctx.Context{Ctx: ctx}, trainNo)
	if err != nil {
		return nil, fmt.Errorf("get train: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("train_not_found", "Train not found")
	}
	return row, nil
}

func (s *trainCatalogService) CreateTrain(ctx context.Context, train *types.Train) (*types.Train, error) {
	if train == nil || strings.TrimSpace(train.TrainNo) == "" {
		return nil, apierr.Validation("train_no_required", "train_no is required")
	}
	train.TrainNo = strings.TrimSpace(train.TrainNo)
	if err := s.trainRepo.Create(dbctx.Context{Ctx: ctx}, train); err != nil {
		if errors.Is(err, repos.ErrTrainExists) {
			return nil, apierr.Validation("train_exists", "Train already exists")
		}
		return nil, apierr.Persistence("train_create_failed", err)
	}
	s.log.Info("train created", "train_no", train.TrainNo)
	return train, nil
}

func (s *trainCatalogService) GetTrainDetails(ctx context.Context, trainNo string) (*TrainDetailsView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	detail, err := s.detailRepo.GetByNumber(dbc, trainNo)
	if err != nil {
		return nil, fmt.Errorf("get train detail: %w", err)
	}
	if detail == nil {
		return nil, apierr.NotFound("train_not_found", "Train not found")
	}
	view := &TrainDetailsView{Detail: detail}
	lineage, err := s.detailRepo.Lineage(dbc, pointers.Deref(detail.Depot))
	if err != nil {
		return nil, fmt.Errorf("resolve depot lineage: %w", err)
	}
	view.ExtraInfo = TrainExtraInfo{
		DepotCode:    pointers.Deref(lineage.DepotCode),
		DivisionCode: pointers.Deref(lineage.DivisionCode),
		ZoneCode:     pointers.Deref(lineage.ZoneCode),
	}
	return view, nil
}
