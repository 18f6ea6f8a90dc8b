package services

import (
	"context"
	"strings"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

// TrainRef is the canonical identity of a train detail row.
type TrainRef struct {
	ID     int64
	Number string
	Name   *string
	Depot  *string
}

// TrainResolver looks up canonical train identity. A nil ref with a nil error
// means the train is unknown.
type TrainResolver interface {
	ResolveByID(ctx context.Context, id int64) (*TrainRef, error)
	ResolveByNumber(ctx context.Context, number string) (*TrainRef, error)
}

type trainResolver struct {
	log        *logger.Logger
	detailRepo repos.TrainDetailRepo
}

func NewTrainResolver(log *logger.Logger, detailRepo repos.TrainDetailRepo) TrainResolver {
	return &trainResolver{log: log.With("service", "TrainResolver"), detailRepo: detailRepo}
}

func (r *trainResolver) ResolveByID(ctx context.Context, id int64) (*TrainRef, error) {
	if id <= 0 {
		return nil, nil
	}
	row, err := r.detailRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil || row == nil {
		return nil, err
	}
	return &TrainRef{ID: row.ID, Number: row.TrainNo, Name: row.TrainName, Depot: row.Depot}, nil
}

func (r *trainResolver) ResolveByNumber(ctx context.Context, number string) (*TrainRef, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, nil
	}
	row, err := r.detailRepo.GetByNumber(dbctx.Context{Ctx: ctx}, number)
	if err != nil || row == nil {
		return nil, err
	}
	return &TrainRef{ID: row.ID, Number: row.TrainNo, Name: row.TrainName, Depot: row.Depot}, nil
}
