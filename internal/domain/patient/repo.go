package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListAll(ctx context.Context) ([]*Patient, error)
	CountByState(ctx context.Context, state string) (int, error)
	Count(ctx context.Context) (int, error)
	UrgencyLevelCounts(ctx context.Context) ([]UrgencyCount, error)
	CountByHour(ctx context.Context) ([]HourCount, error)
}

// OccupancyRepository reads the shared resource counters (beds, ambulances)
// maintained outside the patients table.
type OccupancyRepository interface {
	AvailableBeds(ctx context.Context) (int, error)
	AvailableAmbulances(ctx context.Context) (int, error)
}
