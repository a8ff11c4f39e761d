package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/refresh"
)

const fallbackAmbulances = 12

// StatsOptions configures the occupancy stats widget.
type StatsOptions struct {
	Period      time.Duration
	DefaultBeds int
	Logger      zerolog.Logger
}

// StatsWidget keeps the headline occupancy figures fresh: available beds
// and ambulances plus patient totals.
type StatsWidget struct {
	*base
	repo      patient.Repository
	occupancy patient.OccupancyRepository
	opts      StatsOptions
}

func NewStats(repo patient.Repository, occ patient.OccupancyRepository, pub Publisher, opts StatsOptions) *StatsWidget {
	w := &StatsWidget{repo: repo, occupancy: occ, opts: opts}
	w.base = newBase("stats", pub, refresh.Options{
		Period:   opts.Period,
		Load:     w.load,
		Fallback: w.fallback,
		Logger:   opts.Logger,
	})
	return w
}

func (w *StatsWidget) load(ctx context.Context) (interface{}, error) {
	beds, err := w.occupancy.AvailableBeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("available beds: %w", err)
	}
	ambulances, err := w.occupancy.AvailableAmbulances(ctx)
	if err != nil {
		return nil, fmt.Errorf("available ambulances: %w", err)
	}
	total, err := w.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("patient count: %w", err)
	}
	admitted, err := w.repo.CountByState(ctx, patient.StateInProgress)
	if err != nil {
		return nil, fmt.Errorf("admitted count: %w", err)
	}
	return patient.Stats{
		AvailableBeds:       beds,
		AvailableAmbulances: ambulances,
		TotalPatients:       total,
		AdmittedPatients:    admitted,
	}, nil
}

func (w *StatsWidget) fallback(time.Time) interface{} {
	return patient.Stats{
		AvailableBeds:       w.opts.DefaultBeds,
		AvailableAmbulances: fallbackAmbulances,
	}
}
