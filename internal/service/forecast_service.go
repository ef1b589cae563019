// internal/service/forecast_service.go
package service

import (
	"context"
	"fmt"

	"github.com/bodegapp/backend-go/internal/cache"
	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/forecast"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/rs/zerolog/log"
)

// ForecastService computes order forecasts over the three most recent
// consumption months, memoized per filter in the cache.
type ForecastService struct {
	store store.Store
	cache cache.ForecastCache
}

func NewForecastService(st store.Store, fc cache.ForecastCache) *ForecastService {
	return &ForecastService{store: st, cache: fc}
}

func (s *ForecastService) Rows(ctx context.Context, filter domain.ForecastFilter) ([]domain.ForecastRow, []string, error) {
	batches, err := s.store.GetMonthlyBatches(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not list monthly batches: %w", err)
	}
	labels := forecast.MonthLabels(batches)

	if cached, ok, err := s.cache.GetRows(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("forecast cache read failed")
	} else if ok {
		return cached, labels, nil
	}

	meds, err := s.store.GetMedications(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not list medications: %w", err)
	}

	rows := forecast.Filter(forecast.Build(meds, batches, filter.Months), filter)

	if err := s.cache.SetRows(ctx, filter, rows); err != nil {
		log.Warn().Err(err).Msg("forecast cache write failed")
	}
	return rows, labels, nil
}
