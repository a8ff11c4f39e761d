package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/refresh"
)

// FlowData is the arrival count per hour of the current day.
type FlowData struct {
	Counts []patient.HourCount `json:"counts"`
}

// FlowWidget charts how many patients arrived in each hour of the day.
type FlowWidget struct {
	*base
	repo patient.Repository
}

func NewFlow(repo patient.Repository, pub Publisher, period time.Duration, logger zerolog.Logger) *FlowWidget {
	w := &FlowWidget{repo: repo}
	w.base = newBase("flow", pub, refresh.Options{
		Period:   period,
		Load:     w.load,
		Fallback: w.fallback,
		Logger:   logger,
	})
	return w
}

func (w *FlowWidget) load(ctx context.Context) (interface{}, error) {
	counts, err := w.repo.CountByHour(ctx)
	if err != nil {
		return nil, fmt.Errorf("hourly counts: %w", err)
	}
	return FlowData{Counts: counts}, nil
}

func (w *FlowWidget) fallback(now time.Time) interface{} {
	counts := make([]patient.HourCount, now.Hour()+1)
	for h := range counts {
		counts[h] = patient.HourCount{Hour: h}
	}
	return FlowData{Counts: counts}
}
