package patient

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Lifecycle states for a patient in the emergency department.
const (
	StateWaiting    = "waiting"
	StateInProgress = "in-progress"
	StateLeft       = "left"
)

// Patient maps to the patients table. Urgency is stored as text ("1".."5")
// but used numerically for aggregation.
type Patient struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	Name                   string     `db:"name" json:"name"`
	Condition              string     `db:"condition" json:"condition"`
	BirthDate              time.Time  `db:"birth_date" json:"birth_date"`
	UrgencyLevel           string     `db:"urgency_level" json:"urgency_level"`
	EntryTime              time.Time  `db:"entry_time" json:"entry_time"`
	TriageTime             *time.Time `db:"triage_time" json:"triage_time,omitempty"`
	DischargeTime          *time.Time `db:"discharge_time" json:"discharge_time,omitempty"`
	PredictedWaitMin       *float64   `db:"predicted_wait_min" json:"predicted_wait_min,omitempty"`
	State                  string     `db:"state" json:"state"`
	NurseToPatientRatio    float64    `db:"nurse_to_patient_ratio" json:"nurse_to_patient_ratio"`
	SpecialistAvailability float64    `db:"specialist_availability" json:"specialist_availability"`
	RegistrationDelayMin   float64    `db:"registration_delay_min" json:"registration_delay_min"`
	TimeToProfessionalMin  float64    `db:"time_to_professional_min" json:"time_to_professional_min"`
	BedAvailabilityPercent float64    `db:"bed_availability_percent" json:"bed_availability_percent"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Urgency returns the numeric urgency level, or 0 if the stored text is not
// a number.
func (p *Patient) Urgency() int {
	n, err := strconv.Atoi(p.UrgencyLevel)
	if err != nil {
		return 0
	}
	return n
}

// ValidState reports whether s is one of the known lifecycle states.
func ValidState(s string) bool {
	return s == StateWaiting || s == StateInProgress || s == StateLeft
}

// Validate checks intake fields before any store call is made. Malformed
// records are rejected locally.
func (p *Patient) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Condition == "" {
		return fmt.Errorf("condition is required")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	lvl, err := strconv.Atoi(p.UrgencyLevel)
	if err != nil || lvl < 1 || lvl > 5 {
		return fmt.Errorf("urgency_level must be between 1 and 5, got %q", p.UrgencyLevel)
	}
	if p.State != "" && !ValidState(p.State) {
		return fmt.Errorf("state must be waiting, in-progress or left, got %q", p.State)
	}
	if p.TriageTime != nil && p.TriageTime.Before(p.EntryTime) {
		return fmt.Errorf("triage_time cannot precede entry_time")
	}
	if p.DischargeTime != nil && p.DischargeTime.Before(p.EntryTime) {
		return fmt.Errorf("discharge_time cannot precede entry_time")
	}
	return nil
}

// UrgencyCount is one slice of the urgency mix chart.
type UrgencyCount struct {
	Level int `db:"level" json:"level"`
	Count int `db:"count" json:"count"`
}

// HourCount is one bar of the hourly flow chart.
type HourCount struct {
	Hour  int `db:"hour" json:"hour"`
	Count int `db:"count" json:"count"`
}

// Stats holds the occupancy figures shown at the top of the dashboard.
type Stats struct {
	AvailableBeds       int `json:"available_beds"`
	AvailableAmbulances int `json:"available_ambulances"`
	TotalPatients       int `json:"total_patients"`
	AdmittedPatients    int `json:"admitted_patients"`
}
