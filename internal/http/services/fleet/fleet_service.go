// Package fleet contiene el service de estadísticas de flota.
package fleet

import (
	"context"
	"errors"

	"github.com/dropDatabas3/fleethub/internal/fleet"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// FleetService expone la vista agregada de la flota.
type FleetService interface {
	Stats(ctx context.Context) (fleet.Stats, error)
	Instances(ctx context.Context) ([]fleet.Instance, error)
}

type fleetService struct {
	agg *fleet.Aggregator
}

func NewFleetService(agg *fleet.Aggregator) FleetService {
	return &fleetService{agg: agg}
}

func (s *fleetService) Stats(ctx context.Context) (fleet.Stats, error) {
	st, err := s.agg.Stats(ctx)
	if err != nil {
		return fleet.Stats{}, mapErr(ctx, "Stats", err)
	}
	return st, nil
}

func (s *fleetService) Instances(ctx context.Context) ([]fleet.Instance, error) {
	list, err := s.agg.Instances(ctx)
	if err != nil {
		return nil, mapErr(ctx, "Instances", err)
	}
	return list, nil
}

func mapErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.From(ctx).Debug("fleet scan aborted", logger.Layer("service"), logger.Op(op), logger.Err(err))
		return httperrors.ErrServiceUnavailable.WithDetail("scan aborted").WithCause(err)
	}
	return httperrors.ErrServiceUnavailable.WithCause(err)
}
