// Package analytics holds the derived computations behind the dashboard
// widgets: hourly load bucketing, wait-time accuracy scoring, classifier
// feature derivation and the synthetic fallback datasets used when a data
// source is unavailable.
package analytics

import (
	"time"

	"github.com/edboard/edboard/internal/domain/patient"
)

// HourlyBucket aggregates the patients that entered during one hour of the
// current day.
type HourlyBucket struct {
	Hour          int       `json:"hour"`
	PatientCount  int       `json:"patient_count"`
	UrgencyLevels []int     `json:"-"`
	AvgUrgency    float64   `json:"avg_urgency"`
	Timestamp     time.Time `json:"timestamp"`
}

// BuildHourlyBuckets partitions records into hour-of-day buckets for the
// calendar day of now, covering hours 0 through now's hour inclusive.
// Buckets are rebuilt from scratch on every pass; the result depends only
// on the record set and now, not on record ordering.
func BuildHourlyBuckets(records []*patient.Patient, now time.Time) []HourlyBucket {
	currentHour := now.Hour()
	buckets := make([]HourlyBucket, currentHour+1)
	for h := range buckets {
		buckets[h].Hour = h
		buckets[h].Timestamp = time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, p := range records {
		entry := p.EntryTime.In(now.Location())
		day := time.Date(entry.Year(), entry.Month(), entry.Day(), 0, 0, 0, 0, now.Location())
		if !day.Equal(today) {
			continue
		}
		hour := entry.Hour()
		if hour > currentHour {
			continue
		}
		buckets[hour].PatientCount++
		buckets[hour].UrgencyLevels = append(buckets[hour].UrgencyLevels, p.Urgency())
	}

	for i := range buckets {
		if n := len(buckets[i].UrgencyLevels); n > 0 {
			sum := 0
			for _, lvl := range buckets[i].UrgencyLevels {
				sum += lvl
			}
			buckets[i].AvgUrgency = float64(sum) / float64(n)
		}
	}

	return buckets
}
