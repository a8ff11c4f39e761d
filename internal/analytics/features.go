package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/edboard/edboard/internal/platform/classifier"
)

// Fallback values for empty buckets, matching what the classifier was
// trained against.
const (
	defaultUrgency    = 3
	defaultStaffRatio = 5
)

// BucketFeatures derives the classifier feature record for one hourly
// bucket. availableBeds is sourced from the occupancy counters; the local
// event flag is a placeholder until event feeds are wired in.
func BucketFeatures(b HourlyBucket, now time.Time, availableBeds int) classifier.SurgeFeatures {
	urgency := defaultUrgency
	if b.AvgUrgency > 0 {
		urgency = int(math.Round(b.AvgUrgency))
	}

	staffRatio := b.PatientCount / 2
	if staffRatio < 1 {
		staffRatio = defaultStaffRatio
		if b.PatientCount > 0 {
			staffRatio = 1
		}
	}

	return classifier.SurgeFeatures{
		VisitDate:           b.Timestamp.Format(time.RFC3339),
		DayOfWeek:           now.Weekday().String(),
		AvailableBeds:       availableBeds,
		UrgencyLevel:        strconv.Itoa(urgency),
		Season:              Season(now),
		LocalEvent:          0,
		NurseToPatientRatio: staffRatio,
	}
}

// Season maps a date to the season label the classifier expects:
// Spring for months 3-5, Summer for 6-8, Autumn for 9-11, Winter otherwise.
func Season(t time.Time) string {
	switch m := int(t.Month()); {
	case m >= 3 && m <= 5:
		return "Spring"
	case m >= 6 && m <= 8:
		return "Summer"
	case m >= 9 && m <= 11:
		return "Autumn"
	default:
		return "Winter"
	}
}
