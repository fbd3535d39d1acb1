package service

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"credits/internal/core/domain"
)

// memoryRepository reproduz a escrita condicional por versão do DynamoDB
type memoryRepository struct {
	mu            sync.Mutex
	items         map[string]*domain.Account
	seq           int
	writes        int
	conflictsLeft int
	failWith      error
}

func newMemoryRepository(seed ...*domain.Account) *memoryRepository {
	r := &memoryRepository{items: make(map[string]*domain.Account)}
	for _, a := range seed {
		if a.Version == 0 {
			a.Version = 1
		}
		r.items[a.ID] = a.Clone()
	}
	return r
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (r *memoryRepository) snapshot(match func(*domain.Account) bool) []*domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.items))
	for _, a := range r.items {
		if match(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryRepository) seq2(accounts []*domain.Account) iter.Seq2[*domain.Account, error] {
	return func(yield func(*domain.Account, error) bool) {
		for _, a := range accounts {
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (r *memoryRepository) List(context.Context) iter.Seq2[*domain.Account, error] {
	return r.seq2(r.snapshot(func(*domain.Account) bool { return true }))
}

func (r *memoryRepository) ListByCustomer(_ context.Context, customerID string) iter.Seq2[*domain.Account, error] {
	return r.seq2(r.snapshot(func(a *domain.Account) bool { return a.CustomerID == customerID }))
}

func (r *memoryRepository) FindFirst(_ context.Context, customerID, label, customerType string) (*domain.Account, error) {
	found := r.snapshot(func(a *domain.Account) bool {
		return a.CustomerID == customerID && a.ProductTypeLabel == label && a.CustomerType == customerType
	})
	if len(found) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return found[0], nil
}

func (r *memoryRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.seq++
	account.ID = fmt.Sprintf("acc-%d", r.seq)
	account.Version = 1
	r.items[account.ID] = account.Clone()
	r.writes++
	return nil
}

func (r *memoryRepository) put(account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	stored, ok := r.items[account.ID]
	if !ok {
		return domain.ErrVersionConflict
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		stored.Version++
		return domain.ErrVersionConflict
	}
	if stored.Version != account.Version {
		return domain.ErrVersionConflict
	}
	account.Version++
	r.items[account.ID] = account.Clone()
	r.writes++
	return nil
}

func (r *memoryRepository) Update(_ context.Context, account *domain.Account) error {
	return r.put(account)
}

func (r *memoryRepository) UpdateBalance(_ context.Context, account *domain.Account) error {
	return r.put(account)
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	r.writes++
	return nil
}

func (r *memoryRepository) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *memoryRepository) stored(id string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.items[id]; ok {
		return a.Clone()
	}
	return nil
}

type fakeDirectory struct {
	persons   map[string]string
	companies map[string]string
	err       error
}

func (d *fakeDirectory) lookup(m map[string]string, kind domain.CustomerKind, id string) (*domain.Customer, error) {
	if d.err != nil {
		return nil, d.err
	}
	customerType, ok := m[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &domain.Customer{ID: id, Kind: kind, CustomerType: customerType}, nil
}

func (d *fakeDirectory) GetPerson(_ context.Context, id string) (*domain.Customer, error) {
	return d.lookup(d.persons, domain.CustomerPerson, id)
}

func (d *fakeDirectory) GetCompany(_ context.Context, id string) (*domain.Customer, error) {
	return d.lookup(d.companies, domain.CustomerCompany, id)
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []*domain.Transaction
	err     error
}

func (l *fakeLedger) Record(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	recorded := *tx
	recorded.ID = fmt.Sprintf("tx-%d", len(l.entries)+1)
	l.entries = append(l.entries, &recorded)
	return &recorded, nil
}

func (l *fakeLedger) recorded() []*domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.Transaction(nil), l.entries...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.AccountEvent
	delay  time.Duration
}

func (p *fakePublisher) Publish(_ context.Context, event *domain.AccountEvent) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.Event == name {
			return true
		}
	}
	return false
}

type fakeGuard struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (g *fakeGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.keys == nil {
		g.keys = make(map[string]bool)
	}
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) IncrementOperationCounter(string, domain.Outcome) {}
func (nopMetrics) RecordOperationLatency(string, float64) {}
func (nopMetrics) RecordBusinessMetric(string, float64, map[string]string) {}
func (nopMetrics) IncrementErrorCounter(string) {}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, interface{}) {
	return ctx, nil
}
func (nopTracer) FinishSpan(interface{}, error) {}
func (nopTracer) AddTag(interface{}, string, interface{}) {}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, map[string]interface{}) {}
func (nopLogger) Error(context.Context, string, error, map[string]interface{}) {}
func (nopLogger) Warn(context.Context, string, map[string]interface{}) {}
func (nopLogger) Debug(context.Context, string, map[string]interface{}) {}
