package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

type entry struct {
	seq    uint64
	report *domain.Report
}

// InMemoryRepository is a thread-safe repository for development and tests.
// A single mutex serializes every Update, which is stronger than the
// per-id ordering the domain needs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	seq     uint64
	entries map[string]*entry
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[string]*entry)}
}

// Create stores a copy of r.
func (r *InMemoryRepository) Create(ctx context.Context, rep *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[rep.ID]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			fmt.Sprintf("report %s already exists", rep.ID), nil, "report-repo-create-001")
	}
	r.seq++
	r.entries[rep.ID] = &entry{seq: r.seq, report: rep.Clone()}
	return nil
}

// FindByID returns a copy of the stored report.
func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.report.Clone(), nil
}

// Update applies mutate to a copy and stores it only when mutate succeeds.
func (r *InMemoryRepository) Update(ctx context.Context, id string, mutate domain.MutateFunc) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	working := e.report.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	e.report = working
	return working.Clone(), nil
}

// Delete removes id if present.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

// List returns the filtered page and the total number of matches.
func (r *InMemoryRepository) List(ctx context.Context, filter *domain.Filter) ([]*domain.Report, int64, error) {
	if filter == nil {
		filter = domain.NewFilter()
	}
	matches := r.collect(func(rep *domain.Report) bool { return filter.Matches(rep) })
	total := int64(len(matches))

	start := min(max(filter.Offset, 0), len(matches))
	end := len(matches)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matches))
	}
	return matches[start:end], total, nil
}

// Search returns reports whose reference number or title contains query.
func (r *InMemoryRepository) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	return r.collect(func(rep *domain.Report) bool { return domain.MatchesQuery(rep, query) }), nil
}

// Count returns the number of stored reports.
func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}

// collect returns copies of matching reports, newest first. Reports created
// at the same instant keep reverse insertion order so results are stable.
func (r *InMemoryRepository) collect(match func(*domain.Report) bool) []*domain.Report {
	r.mu.RLock()
	found := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		if match(e.report) {
			found = append(found, entry{seq: e.seq, report: e.report.Clone()})
		}
	}
	r.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i].report, found[j].report
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return found[i].seq > found[j].seq
	})

	out := make([]*domain.Report, 0, len(found))
	for _, e := range found {
		out = append(out, e.report)
	}
	return out
}
