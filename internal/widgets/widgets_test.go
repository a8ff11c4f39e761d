package widgets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edboard/edboard/internal/domain/patient"
	"github.com/edboard/edboard/internal/platform/classifier"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// fakeRepo is a map-backed patient store.
type fakeRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*patient.Patient
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (r *fakeRepo) add(p *patient.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.patients[p.ID] = p
}

func (r *fakeRepo) Create(ctx context.Context, p *patient.Patient) error {
	if r.err != nil {
		return r.err
	}
	r.add(p)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	return p, nil
}

func (r *fakeRepo) Update(ctx context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.patients[p.ID] = p
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.patients, id)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*patient.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) CountByState(ctx context.Context, state string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for _, p := range r.patients {
		if p.State == state {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.patients), nil
}

func (r *fakeRepo) UrgencyLevelCounts(ctx context.Context) ([]patient.UrgencyCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	byLevel := make(map[int]int)
	for _, p := range r.patients {
		byLevel[p.Urgency()]++
	}
	out := make([]patient.UrgencyCount, 0, 5)
	for lvl := 1; lvl <= 5; lvl++ {
		out = append(out, patient.UrgencyCount{Level: lvl, Count: byLevel[lvl]})
	}
	return out, nil
}

func (r *fakeRepo) CountByHour(ctx context.Context) ([]patient.HourCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	byHour := make(map[int]int)
	for _, p := range r.patients {
		byHour[p.EntryTime.Hour()]++
	}
	out := make([]patient.HourCount, 0, len(byHour))
	for h := 0; h < 24; h++ {
		if byHour[h] > 0 {
			out = append(out, patient.HourCount{Hour: h, Count: byHour[h]})
		}
	}
	return out, nil
}

type fakeOccupancy struct {
	beds       int
	ambulances int
	err        error
}

func (o *fakeOccupancy) AvailableBeds(context.Context) (int, error) {
	return o.beds, o.err
}

func (o *fakeOccupancy) AvailableAmbulances(context.Context) (int, error) {
	return o.ambulances, o.err
}

type fakeClassifier struct {
	mu    sync.Mutex
	fn    func(classifier.SurgeFeatures) (int, error)
	calls []classifier.SurgeFeatures
}

func (c *fakeClassifier) PredictSurge(_ context.Context, f classifier.SurgeFeatures) (int, error) {
	c.mu.Lock()
	c.calls = append(c.calls, f)
	c.mu.Unlock()
	if c.fn == nil {
		return 0, nil
	}
	return c.fn(f)
}

type published struct {
	topic   string
	payload interface{}
}

type fakePublisher struct {
	mu    sync.Mutex
	sends []published
}

func (p *fakePublisher) Publish(topic string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, published{topic: topic, payload: payload})
}

func (p *fakePublisher) last(t *testing.T) published {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sends) == 0 {
		t.Fatal("nothing was published")
	}
	return p.sends[len(p.sends)-1]
}

func entryAt(t time.Time, urgency string) *patient.Patient {
	return &patient.Patient{
		ID:           uuid.New(),
		Name:         "Test Patient",
		Condition:    "observation",
		UrgencyLevel: urgency,
		EntryTime:    t,
		State:        patient.StateWaiting,
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	repo := newFakeRepo()

	urgency := NewUrgency(repo, nil, time.Hour, testLogger())
	flow := NewFlow(repo, nil, time.Hour, testLogger())
	defer urgency.Dispose()
	defer flow.Dispose()

	reg.Register(urgency)
	reg.Register(flow)

	if _, ok := reg.Get("urgency"); !ok {
		t.Fatal("registered widget not found")
	}
	if _, ok := reg.Get("surge"); ok {
		t.Fatal("unknown widget reported as present")
	}

	all := reg.All()
	if len(all) != 2 || all[0].Name() != "urgency" || all[1].Name() != "flow" {
		t.Fatalf("registration order not preserved: %v", all)
	}

	reg.StartAll(context.Background())
	for _, w := range all {
		if !w.Active() {
			t.Fatalf("widget %s not active after StartAll", w.Name())
		}
	}
	reg.DisposeAll()
	for _, w := range all {
		if w.Active() {
			t.Fatalf("widget %s still active after DisposeAll", w.Name())
		}
	}
}
