package reporttemplate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// InMemoryRepository keeps templates in a map guarded by one mutex.
type InMemoryRepository struct {
	mu        sync.RWMutex
	templates map[string]*domain.Template
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{templates: make(map[string]*domain.Template)}
}

// Create stores a copy of t.
func (r *InMemoryRepository) Create(ctx context.Context, t *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.ID]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			fmt.Sprintf("template %s already exists", t.ID), nil, "template-repo-create-001")
	}
	r.templates[t.ID] = t.Clone()
	return nil
}

// FindByID returns a copy of the stored template.
func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t.Clone(), nil
}

// Update applies mutate to a copy and stores it only when mutate succeeds.
func (r *InMemoryRepository) Update(ctx context.Context, id string, mutate domain.MutateFunc) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	r.templates[id] = working
	return working.Clone(), nil
}

// Delete removes id if present.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.templates, id)
	return nil
}

// List returns the filtered page ordered by name and the total number of matches.
func (r *InMemoryRepository) List(ctx context.Context, filter *domain.Filter) ([]*domain.Template, int64, error) {
	r.mu.RLock()
	matches := make([]*domain.Template, 0, len(r.templates))
	for _, t := range r.templates {
		if filter.Matches(t) {
			matches = append(matches, t.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})
	total := int64(len(matches))
	if filter == nil {
		return matches, total, nil
	}

	start := min(max(filter.Offset, 0), len(matches))
	end := len(matches)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matches))
	}
	return matches[start:end], total, nil
}

// Count returns the number of stored templates.
func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.templates)), nil
}
