package widgets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/edboard/edboard/internal/analytics"
	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/refresh"
)

// PredictionData is one rendered prediction-vs-actual series. The arrays
// are index-aligned; Accuracy is the mean per-point score in [0, 100].
type PredictionData struct {
	Labels    []string  `json:"labels"`
	Predicted []float64 `json:"predicted"`
	Actual    []float64 `json:"actual"`
	Accuracy  float64   `json:"accuracy"`
}

// PredictionOptions configures the prediction widget.
type PredictionOptions struct {
	Period    time.Duration
	MaxPoints int
	Logger    zerolog.Logger
}

// PredictionWidget compares predicted wait times against observed ones for
// the most recent patients that carry a prediction.
type PredictionWidget struct {
	*base
	repo patient.Repository
	opts PredictionOptions
}

func NewPrediction(repo patient.Repository, pub Publisher, opts PredictionOptions) *PredictionWidget {
	w := &PredictionWidget{repo: repo, opts: opts}
	w.base = newBase("prediction", pub, refresh.Options{
		Period:    opts.Period,
		MaxPoints: opts.MaxPoints,
		Load:      w.load,
		Fallback:  w.fallback,
		Logger:    opts.Logger,
	})
	return w
}

func (w *PredictionWidget) load(ctx context.Context) (interface{}, error) {
	records, err := w.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	now := time.Now()
	withPrediction := records[:0:0]
	for _, p := range records {
		if p.PredictedWaitMin != nil {
			withPrediction = append(withPrediction, p)
		}
	}
	sort.Slice(withPrediction, func(i, j int) bool {
		return withPrediction[i].EntryTime.Before(withPrediction[j].EntryTime)
	})
	withPrediction = refresh.Window(withPrediction, w.opts.MaxPoints)

	data := PredictionData{
		Labels:    make([]string, len(withPrediction)),
		Predicted: make([]float64, len(withPrediction)),
		Actual:    make([]float64, len(withPrediction)),
	}
	var scoreSum float64
	for i, p := range withPrediction {
		data.Labels[i] = p.EntryTime.Format("15:04")
		data.Predicted[i] = *p.PredictedWaitMin
		data.Actual[i] = analytics.ActualWaitMinutes(p, now)
		scoreSum += analytics.AccuracyScore(data.Predicted[i], data.Actual[i])
	}
	if n := len(withPrediction); n > 0 {
		data.Accuracy = math.Round(scoreSum/float64(n)*10) / 10
	}
	return data, nil
}

func (w *PredictionWidget) fallback(now time.Time) interface{} {
	labels, predicted, actual := analytics.SyntheticPredictionSeries(now)
	data := PredictionData{Labels: labels, Predicted: predicted, Actual: actual}
	var scoreSum float64
	for i := range predicted {
		scoreSum += analytics.AccuracyScore(predicted[i], actual[i])
	}
	data.Accuracy = math.Round(scoreSum/float64(len(predicted))*10) / 10
	return data
}
