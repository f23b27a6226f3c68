package reporttemplate

import (
	"context"

	"jan-server/services/report-api/internal/domain/report"
)

// MutateFunc changes a template in place. Returning an error aborts the write.
type MutateFunc func(t *Template) error

// Filter narrows template listings. Nil fields match everything.
type Filter struct {
	OrganizationID *string
	Category       *report.Category
	ActiveOnly     bool
	Limit          int
	Offset         int
}

// Matches reports whether t satisfies every set criterion.
func (f *Filter) Matches(t *Template) bool {
	if f == nil {
		return true
	}
	if f.OrganizationID != nil && t.OrganizationID != *f.OrganizationID {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.ActiveOnly && !t.IsActive {
		return false
	}
	return true
}

// Repository exposes persistence for templates.
type Repository interface {
	Create(ctx context.Context, t *Template) error
	// FindByID returns ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*Template, error)
	// Update runs mutate against the current stored state and persists the
	// result. Calls for the same id are serialized.
	Update(ctx context.Context, id string, mutate MutateFunc) (*Template, error)
	// Delete removes a template; deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns matching templates ordered by name, with the total count
	// before pagination.
	List(ctx context.Context, filter *Filter) ([]*Template, int64, error)
	Count(ctx context.Context) (int64, error)
}
