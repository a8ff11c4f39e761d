package analytics

import (
	"math"
	"math/rand"
	"time"
)

// Synthetic fallback datasets. These keep a widget rendering something
// plausible when its data source is down; callers must tag the result as
// synthetic so it is distinguishable from real data in telemetry.

const syntheticPredictionPoints = 10

// typical peak-hour surge pattern, one value per hour of the day
var syntheticSurgePattern = [24]int{
	0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 0, 0, 0, 1, 1, 0, 0, 0, 0,
}

// SyntheticPredictionSeries builds a fallback prediction-vs-actual series:
// a sine-shaped baseline around 70 minutes with bounded noise, labelled
// with timestamps one minute apart ending at now.
func SyntheticPredictionSeries(now time.Time) (labels []string, predicted, actual []float64) {
	labels = make([]string, syntheticPredictionPoints)
	predicted = make([]float64, syntheticPredictionPoints)
	actual = make([]float64, syntheticPredictionPoints)
	for i := 0; i < syntheticPredictionPoints; i++ {
		ts := now.Add(-time.Duration(syntheticPredictionPoints-1-i) * time.Minute)
		labels[i] = ts.Format("15:04")
		base := math.Sin(float64(i)*0.5)*30 + 70
		predicted[i] = round2(base + rand.Float64()*15)
		actual[i] = round2(base + rand.Float64()*20)
	}
	return labels, predicted, actual
}

// SyntheticSurgeSeries returns the canonical peak-hour surge pattern sliced
// to the hours elapsed today, index-aligned with hourly buckets.
func SyntheticSurgeSeries(now time.Time) []int {
	series := make([]int, now.Hour()+1)
	copy(series, syntheticSurgePattern[:now.Hour()+1])
	return series
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
