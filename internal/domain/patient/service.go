package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WaitPredictor estimates a patient's wait time from the intake features.
type WaitPredictor interface {
	PredictWait(ctx context.Context, features []float64) (float64, error)
}

type Service struct {
	repo      Repository
	occupancy OccupancyRepository
	predictor WaitPredictor
	logger    zerolog.Logger
}

func NewService(repo Repository, occ OccupancyRepository, predictor WaitPredictor, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		occupancy: occ,
		predictor: predictor,
		logger:    logger.With().Str("component", "patient-service").Logger(),
	}
}

// RegisterPatient validates and stores a new intake record. A wait-time
// prediction is requested from the remote predictor; intake still succeeds
// when the predictor is unavailable, the record just carries no prediction.
func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.State == "" {
		p.State = StateWaiting
	}
	if p.EntryTime.IsZero() {
		p.EntryTime = time.Now().UTC()
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if s.predictor != nil && p.PredictedWaitMin == nil {
		features := []float64{
			float64(p.Urgency()),
			p.NurseToPatientRatio,
			p.SpecialistAvailability,
			p.RegistrationDelayMin,
			p.TimeToProfessionalMin,
			p.BedAvailabilityPercent,
		}
		if wait, err := s.predictor.PredictWait(ctx, features); err == nil {
			p.PredictedWaitMin = &wait
		} else {
			s.logger.Warn().Err(err).Str("patient", p.Name).Msg("wait prediction unavailable at intake")
		}
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// UpdateState moves a patient through the lifecycle, stamping the
// transition times: entering in-progress records the triage time, entering
// left records the discharge time.
func (s *Service) UpdateState(ctx context.Context, id uuid.UUID, newState string) (*Patient, error) {
	if !ValidState(newState) {
		return nil, fmt.Errorf("invalid state: %s", newState)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient not found: %w", err)
	}
	if p.State == newState {
		return p, nil
	}

	now := time.Now().UTC()
	switch newState {
	case StateInProgress:
		if p.TriageTime == nil {
			p.TriageTime = &now
		}
	case StateLeft:
		if p.DischargeTime == nil {
			p.DischargeTime = &now
		}
	}
	p.State = newState

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Stats assembles the headline occupancy figures.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	beds, err := s.occupancy.AvailableBeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("available beds: %w", err)
	}
	ambulances, err := s.occupancy.AvailableAmbulances(ctx)
	if err != nil {
		return nil, fmt.Errorf("available ambulances: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	admitted, err := s.repo.CountByState(ctx, StateInProgress)
	if err != nil {
		return nil, err
	}
	return &Stats{
		AvailableBeds:       beds,
		AvailableAmbulances: ambulances,
		TotalPatients:       total,
		AdmittedPatients:    admitted,
	}, nil
}
