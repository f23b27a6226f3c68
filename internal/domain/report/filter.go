package report

import "strings"

// Filter contains criteria for listing reports.
type Filter struct {
	Status     *Status
	Category   *Category
	Priority   *Priority
	Department *string
	// AuthorID and OrganizationID match exactly.
	AuthorID       *string
	OrganizationID *string

	// Pagination
	Limit  int
	Offset int
}

// NewFilter creates a new filter with default pagination.
func NewFilter() *Filter {
	return &Filter{
		Limit:  20,
		Offset: 0,
	}
}

// WithStatus sets the status filter.
func (f *Filter) WithStatus(s Status) *Filter {
	f.Status = &s
	return f
}

// WithCategory sets the category filter.
func (f *Filter) WithCategory(c Category) *Filter {
	f.Category = &c
	return f
}

// WithPriority sets the priority filter.
func (f *Filter) WithPriority(p Priority) *Filter {
	f.Priority = &p
	return f
}

// WithDepartment sets the department filter (exact, case-insensitive).
func (f *Filter) WithDepartment(department string) *Filter {
	f.Department = &department
	return f
}

// WithAuthor restricts the listing to reports written by authorID.
func (f *Filter) WithAuthor(authorID string) *Filter {
	f.AuthorID = &authorID
	return f
}

// WithOrganization restricts the listing to one organization.
func (f *Filter) WithOrganization(organizationID string) *Filter {
	f.OrganizationID = &organizationID
	return f
}

// WithPagination sets the pagination parameters.
func (f *Filter) WithPagination(limit, offset int) *Filter {
	f.Limit = limit
	f.Offset = offset
	return f
}

// Matches reports whether r satisfies every set criterion. Pagination is
// not considered.
func (f *Filter) Matches(r *Report) bool {
	if f == nil {
		return true
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.Category != nil && r.Metadata.Category != *f.Category {
		return false
	}
	if f.Priority != nil && r.Metadata.Priority != *f.Priority {
		return false
	}
	if f.Department != nil && !strings.EqualFold(r.Metadata.Department, *f.Department) {
		return false
	}
	if f.AuthorID != nil && r.AuthorID != *f.AuthorID {
		return false
	}
	if f.OrganizationID != nil && r.OrganizationID != *f.OrganizationID {
		return false
	}
	return true
}

// MatchesQuery reports whether query occurs case-insensitively in the
// reference number or the title of r. An empty query matches everything.
func MatchesQuery(r *Report, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.ReferenceNumber), q) ||
		strings.Contains(strings.ToLower(r.Title), q)
}
