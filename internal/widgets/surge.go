package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edboard/edboard/internal/analytics"
	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/classifier"
	"github.com/edboard/edboard/internal/platform/refresh"
)

// SurgeClassifier is the slice of the prediction service the surge widget
// needs.
type SurgeClassifier interface {
	PredictSurge(ctx context.Context, features classifier.SurgeFeatures) (int, error)
}

// SurgeData is one rendered surge series: a 0/1 classification per hour of
// the current day, index-aligned with the hourly buckets it was derived
// from.
type SurgeData struct {
	Labels    []string                 `json:"labels"`
	Series    []int                    `json:"series"`
	Buckets   []analytics.HourlyBucket `json:"buckets"`
	Threshold int                      `json:"threshold"`
}

// SurgeOptions configures the surge widget.
type SurgeOptions struct {
	Period      time.Duration
	Threshold   int
	DefaultBeds int
	Logger      zerolog.Logger
}

// SurgeWidget classifies each hour of the current day as surge or normal by
// sending the hour's aggregate features to the remote classifier.
type SurgeWidget struct {
	*base
	repo       patient.Repository
	occupancy  patient.OccupancyRepository
	classifier SurgeClassifier
	opts       SurgeOptions
	logger     zerolog.Logger
}

func NewSurge(repo patient.Repository, occ patient.OccupancyRepository, cls SurgeClassifier, pub Publisher, opts SurgeOptions) *SurgeWidget {
	w := &SurgeWidget{
		repo:       repo,
		occupancy:  occ,
		classifier: cls,
		opts:       opts,
		logger:     opts.Logger.With().Str("widget", "surge").Logger(),
	}
	w.base = newBase("surge", pub, refresh.Options{
		Period:   opts.Period,
		Load:     w.load,
		Fallback: w.fallback,
		Logger:   opts.Logger,
	})
	return w
}

func (w *SurgeWidget) load(ctx context.Context) (interface{}, error) {
	records, err := w.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	now := time.Now()
	buckets := analytics.BuildHourlyBuckets(records, now)

	beds := w.opts.DefaultBeds
	if w.occupancy != nil {
		if b, err := w.occupancy.AvailableBeds(ctx); err == nil {
			beds = b
		} else {
			w.logger.Warn().Err(err).Int("default", beds).Msg("bed count unavailable, using default")
		}
	}

	// One classifier call per bucket, in hour order. A failed call marks
	// only its own hour as normal; the rest of the series is unaffected.
	series := make([]int, len(buckets))
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = fmt.Sprintf("%02d:00", b.Hour)
		v, err := w.classifier.PredictSurge(ctx, analytics.BucketFeatures(b, now, beds))
		if err != nil {
			w.logger.Warn().Err(err).Int("hour", b.Hour).Msg("bucket classification failed")
			continue
		}
		series[i] = v
	}

	return SurgeData{Labels: labels, Series: series, Buckets: buckets, Threshold: w.opts.Threshold}, nil
}

func (w *SurgeWidget) fallback(now time.Time) interface{} {
	series := analytics.SyntheticSurgeSeries(now)
	labels := make([]string, len(series))
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d:00", i)
	}
	return SurgeData{Labels: labels, Series: series, Threshold: w.opts.Threshold}
}
