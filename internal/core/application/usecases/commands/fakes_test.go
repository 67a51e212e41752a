package commands_test

import (
	"context"
	"sync"

	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/domain/model/fleet"
	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/mission"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/core/domain/model/pod"
	"skycourier/internal/core/ports"
	"skycourier/internal/pkg/errs"
)

// fakeStore is a shared in-memory backing for the fake unit of work. It
// ignores transaction boundaries, which is fine for handler flow tests.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	events map[string][]order.Event
	jobs   map[string]*job.Job
	proofs map[string][]*pod.Proof
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[string]*order.Order),
		events: make(map[string][]order.Event),
		jobs:   make(map[string]*job.Job),
		proofs: make(map[string][]*pod.Proof),
	}
}

func (s *fakeStore) Create() commands.OrderJobUoW { return &fakeUoW{store: s} }

type fakeProofFactory struct{ store *fakeStore }

func (f fakeProofFactory) Create() commands.OrderProofUoW { return &fakeUoW{store: f.store} }

type fakeOrderFactory struct{ store *fakeStore }

func (f fakeOrderFactory) Create() commands.OrderUoW { return &fakeUoW{store: f.store} }

type fakeUoW struct{ store *fakeStore }

func (u *fakeUoW) Begin(context.Context) error    { return nil }
func (u *fakeUoW) Commit(context.Context) error   { return nil }
func (u *fakeUoW) Rollback(context.Context) error { return nil }

func (u *fakeUoW) OrderRepository() ports.OrderRepository { return fakeOrderRepo{u.store} }
func (u *fakeUoW) JobRepository() ports.JobRepository     { return fakeJobRepo{u.store} }
func (u *fakeUoW) ProofRepository() ports.ProofRepository { return fakeProofRepo{u.store} }

type fakeOrderRepo struct{ store *fakeStore }

func (r fakeOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID().String()] = o
	r.store.events[o.ID().String()] = append(r.store.events[o.ID().String()], o.TakePendingEvents()...)
	return nil
}

func (r fakeOrderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.Add(ctx, o)
}

func (r fakeOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", id)
	}
	return o, nil
}

func (r fakeOrderRepo) GetByTrackingID(_ context.Context, trackingID string) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.TrackingID() == trackingID {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("trackingId", trackingID)
}

func (r fakeOrderRepo) GetAllDispatchable(_ context.Context) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*order.Order
	for _, o := range r.store.orders {
		if o.Status().IsDispatchable() {
			result = append(result, o)
		}
	}
	// oldest first
	for i := range result {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt().Before(result[i].CreatedAt()) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (r fakeOrderRepo) List(_ context.Context, _ ports.OrderFilter) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (r fakeOrderRepo) GetEvents(_ context.Context, orderID kernel.UUID) ([]order.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.events[orderID.String()], nil
}

type fakeJobRepo struct{ store *fakeStore }

func (r fakeJobRepo) Add(_ context.Context, j *job.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.jobs[j.ID().String()] = j
	return nil
}

func (r fakeJobRepo) Update(ctx context.Context, j *job.Job) error {
	return r.Add(ctx, j)
}

func (r fakeJobRepo) Get(_ context.Context, id kernel.UUID) (*job.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	j, ok := r.store.jobs[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("jobId", id)
	}
	return j, nil
}

func (r fakeJobRepo) GetOpenByOrder(_ context.Context, orderID kernel.UUID) (*job.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var newest *job.Job
	for _, j := range r.store.jobs {
		if !j.OrderID().IsEqual(orderID) || j.Status().IsTerminal() {
			continue
		}
		if newest == nil || j.CreatedAt().After(newest.CreatedAt()) {
			newest = j
		}
	}
	if newest == nil {
		return nil, errs.NewObjectNotFoundError("orderId", orderID)
	}
	return newest, nil
}

func (r fakeJobRepo) List(_ context.Context, _ ports.JobFilter) ([]*job.Job, int64, error) {
	return nil, 0, nil
}

type fakeProofRepo struct{ store *fakeStore }

func (r fakeProofRepo) Add(_ context.Context, p *pod.Proof) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := p.OrderID().String()
	r.store.proofs[key] = append(r.store.proofs[key], p)
	return nil
}

func (r fakeProofRepo) GetLatestByOrder(_ context.Context, orderID kernel.UUID) (*pod.Proof, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	proofs := r.store.proofs[orderID.String()]
	if len(proofs) == 0 {
		return nil, errs.NewObjectNotFoundError("orderId", orderID)
	}
	return proofs[len(proofs)-1], nil
}

type fakeFleetClient struct {
	drones []fleet.DroneTelemetry
	err    error
}

func (c fakeFleetClient) GetLatestTelemetry(context.Context) ([]fleet.DroneTelemetry, error) {
	return c.drones, c.err
}

type fakePublisher struct {
	mu        sync.Mutex
	published []mission.Intent
	rejectErr error
}

func (p *fakePublisher) PublishMissionIntent(_ context.Context, intent mission.Intent) error {
	if p.rejectErr != nil {
		return p.rejectErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, intent)
	return nil
}
