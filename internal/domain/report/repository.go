package report

import "context"

// MutateFunc changes a report in place. Returning an error aborts the write.
type MutateFunc func(r *Report) error

// Repository exposes persistence for reports. Implementations may be remote;
// callers must not assume synchronous completion.
type Repository interface {
	// Create stores a new report. The report's ID is set by the caller.
	Create(ctx context.Context, r *Report) error
	// FindByID returns ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*Report, error)
	// Update runs mutate against the current stored state and persists the
	// result. Calls for the same id are serialized so that mutate always sees
	// the effect of every earlier successful Update.
	Update(ctx context.Context, id string, mutate MutateFunc) (*Report, error)
	// Delete removes a report; deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns matching reports, most recent first, with the total count
	// before pagination.
	List(ctx context.Context, filter *Filter) ([]*Report, int64, error)
	// Search matches query case-insensitively against reference number or
	// title, most recent first.
	Search(ctx context.Context, query string) ([]*Report, error)
	// Count returns the number of stored reports.
	Count(ctx context.Context) (int64, error)
}
