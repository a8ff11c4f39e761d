package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, name, condition, birth_date, urgency_level, entry_time, triage_time,
	discharge_time, predicted_wait_min, state, nurse_to_patient_ratio, specialist_availability,
	registration_delay_min, time_to_professional_min, bed_availability_percent, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Condition, &p.BirthDate, &p.UrgencyLevel, &p.EntryTime, &p.TriageTime,
		&p.DischargeTime, &p.PredictedWaitMin, &p.State, &p.NurseToPatientRatio, &p.SpecialistAvailability,
		&p.RegistrationDelayMin, &p.TimeToProfessionalMin, &p.BedAvailabilityPercent, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, condition, birth_date, urgency_level, entry_time, triage_time,
			discharge_time, predicted_wait_min, state, nurse_to_patient_ratio, specialist_availability,
			registration_delay_min, time_to_professional_min, bed_availability_percent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.Name, p.Condition, p.BirthDate, p.UrgencyLevel, p.EntryTime, p.TriageTime,
		p.DischargeTime, p.PredictedWaitMin, p.State, p.NurseToPatientRatio, p.SpecialistAvailability,
		p.RegistrationDelayMin, p.TimeToProfessionalMin, p.BedAvailabilityPercent)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET name=$2, condition=$3, birth_date=$4, urgency_level=$5,
			triage_time=$6, discharge_time=$7, predicted_wait_min=$8, state=$9,
			nurse_to_patient_ratio=$10, specialist_availability=$11, registration_delay_min=$12,
			time_to_professional_min=$13, bed_availability_percent=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Condition, p.BirthDate, p.UrgencyLevel,
		p.TriageTime, p.DischargeTime, p.PredictedWaitMin, p.State,
		p.NurseToPatientRatio, p.SpecialistAvailability, p.RegistrationDelayMin,
		p.TimeToProfessionalMin, p.BedAvailabilityPercent)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY entry_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY entry_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) CountByState(ctx context.Context, state string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE state = $1`, state).Scan(&n)
	return n, err
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}

func (r *repoPG) UrgencyLevelCounts(ctx context.Context) ([]UrgencyCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT urgency_level::int AS level, COUNT(*) AS count
		FROM patients
		GROUP BY urgency_level
		ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []UrgencyCount
	for rows.Next() {
		var c UrgencyCount
		if err := rows.Scan(&c.Level, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *repoPG) CountByHour(ctx context.Context) ([]HourCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM entry_time)::int AS hour, COUNT(*) AS count
		FROM patients
		WHERE entry_time::date = CURRENT_DATE
		GROUP BY hour
		ORDER BY hour`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []HourCount
	for rows.Next() {
		var c HourCount
		if err := rows.Scan(&c.Hour, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type occupancyRepoPG struct{ pool *pgxpool.Pool }

func NewOccupancyRepoPG(pool *pgxpool.Pool) OccupancyRepository { return &occupancyRepoPG{pool: pool} }

func (r *occupancyRepoPG) AvailableBeds(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM beds WHERE occupied = false`).Scan(&n)
	return n, err
}

func (r *occupancyRepoPG) AvailableAmbulances(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ambulances WHERE status = 'available'`).Scan(&n)
	return n, err
}
