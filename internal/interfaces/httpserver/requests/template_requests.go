package requests

import (
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
)

// CreateTemplateRequest is the body of POST /v1/templates.
type CreateTemplateRequest struct {
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	OrganizationID string                   `json:"organizationId"`
	Category       report.Category          `json:"category"`
	Fields         []reporttemplate.Field   `json:"fields"`
	Structure      reporttemplate.Structure `json:"structure"`
	IsActive       *bool                    `json:"isActive"`
}

// Params converts the request into domain parameters.
func (r CreateTemplateRequest) Params() reporttemplate.CreateParams {
	return reporttemplate.CreateParams{
		Name:           r.Name,
		Description:    r.Description,
		OrganizationID: r.OrganizationID,
		Category:       r.Category,
		Fields:         r.Fields,
		Structure:      r.Structure,
		IsActive:       r.IsActive,
	}
}

// UpdateTemplateRequest is the body of PATCH /v1/templates/:id.
type UpdateTemplateRequest struct {
	Name            *string                   `json:"name"`
	Description     *string                   `json:"description"`
	Category        *report.Category          `json:"category"`
	Fields          *[]reporttemplate.Field   `json:"fields"`
	Structure       *reporttemplate.Structure `json:"structure"`
	IsActive        *bool                     `json:"isActive"`
	ExpectedVersion *int                      `json:"expectedVersion" binding:"omitempty,min=1"`
}

// Params converts the request into domain parameters.
func (r UpdateTemplateRequest) Params() reporttemplate.UpdateParams {
	return reporttemplate.UpdateParams{
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		Fields:          r.Fields,
		Structure:       r.Structure,
		IsActive:        r.IsActive,
		ExpectedVersion: r.ExpectedVersion,
	}
}

// ListTemplatesQuery holds the query string of GET /v1/templates.
type ListTemplatesQuery struct {
	Organization string `form:"organization"`
	Category     string `form:"category" binding:"omitempty,oneof=procurement technology services infrastructure other"`
	Active       bool   `form:"active"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter converts the query into a domain filter.
func (q ListTemplatesQuery) Filter() *reporttemplate.Filter {
	f := &reporttemplate.Filter{ActiveOnly: q.Active, Limit: q.Limit, Offset: q.Offset}
	if q.Organization != "" {
		organization := q.Organization
		f.OrganizationID = &organization
	}
	if q.Category != "" {
		category := report.Category(q.Category)
		f.Category = &category
	}
	return f
}
