package analytics

import (
	"math"
	"time"

	"github.com/edboard/edboard/internal/domain/patient"
)

// MaxWaitMinutes bounds the displayed wait time for patients still waiting,
// so one forgotten record does not stretch the chart scale.
const MaxWaitMinutes = 480

// ActualWaitMinutes computes the observed wait for a patient: the span
// between entry and triage when the patient has been seen, otherwise the
// span between entry and now, clamped to MaxWaitMinutes.
func ActualWaitMinutes(p *patient.Patient, now time.Time) float64 {
	if p.TriageTime != nil {
		return math.Round(p.TriageTime.Sub(p.EntryTime).Minutes())
	}
	waited := math.Round(now.Sub(p.EntryTime).Minutes())
	return math.Min(waited, MaxWaitMinutes)
}

// Deviation is the absolute difference between a predicted and an actual
// wait time.
func Deviation(predicted, actual float64) float64 {
	return math.Abs(predicted - actual)
}

// AccuracyScore rates a prediction against the observed value as a
// percentage in [0, 100], rounded to one decimal. A perfect prediction
// scores 100; a prediction off by as much as the larger of the two values
// scores 0.
func AccuracyScore(predicted, actual float64) float64 {
	larger := math.Max(predicted, actual)
	if larger == 0 {
		return 100.0
	}
	score := 100 - Deviation(predicted, actual)/larger*100
	if score < 0 {
		score = 0
	}
	return math.Round(score*10) / 10
}
