// Package report defines the justification report aggregate, its status
// graph and the service that validates and applies every mutation.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is a justification report tracked through the approval lifecycle.
type Report struct {
	ID              string       `json:"id"`
	ReferenceNumber string       `json:"referenceNumber"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	AuthorID        string       `json:"authorId"`
	OrganizationID  string       `json:"organizationId"`
	Status          Status       `json:"status"`
	ReviewStatus    ReviewStatus `json:"reviewStatus,omitempty"`
	Metadata        Metadata     `json:"metadata"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Version         int          `json:"version"`
}

// Metadata holds the classification and bookkeeping fields of a report.
type Metadata struct {
	Category        Category         `json:"category"`
	Priority        Priority         `json:"priority"`
	Department      string           `json:"department"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget,omitempty"`
	Tags            []string         `json:"tags"`
	RelatedReports  []string         `json:"relatedReports"`
	Attachments     []Attachment     `json:"attachments"`
}

// Attachment references a document stored outside the report.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Category groups reports by the kind of expense they justify.
type Category string

const (
	CategoryProcurement    Category = "procurement"
	CategoryTechnology     Category = "technology"
	CategoryServices       Category = "services"
	CategoryInfrastructure Category = "infrastructure"
	CategoryOther          Category = "other"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProcurement, CategoryTechnology, CategoryServices, CategoryInfrastructure, CategoryOther:
		return true
	}
	return false
}

// Priority orders reports for reviewers.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Clone returns a deep copy so callers never share slices with a store.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Metadata.Tags = append([]string(nil), r.Metadata.Tags...)
	out.Metadata.RelatedReports = append([]string(nil), r.Metadata.RelatedReports...)
	out.Metadata.Attachments = append([]Attachment(nil), r.Metadata.Attachments...)
	if r.Metadata.EstimatedBudget != nil {
		budget := *r.Metadata.EstimatedBudget
		out.Metadata.EstimatedBudget = &budget
	}
	return &out
}

// touch records a successful mutation: exactly one version step and a fresh
// updatedAt that never goes backwards.
func (r *Report) touch(now time.Time) {
	r.Version++
	if now.Before(r.UpdatedAt) {
		now = r.UpdatedAt
	}
	r.UpdatedAt = now
}
