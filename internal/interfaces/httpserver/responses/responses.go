package responses

import (
	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
)

// ReportListResponse is a page of reports.
type ReportListResponse struct {
	Data   []*report.Report `json:"data"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
	Query  string           `json:"query,omitempty"`
}

// NewReportPage builds a paginated list response.
func NewReportPage(reports []*report.Report, total int64, filter *report.Filter) ReportListResponse {
	if reports == nil {
		reports = []*report.Report{}
	}
	return ReportListResponse{Data: reports, Total: total, Limit: filter.Limit, Offset: filter.Offset}
}

// NewSearchResult builds the response of a free-text search.
func NewSearchResult(reports []*report.Report, query string) ReportListResponse {
	if reports == nil {
		reports = []*report.Report{}
	}
	return ReportListResponse{Data: reports, Total: int64(len(reports)), Query: query}
}

// TemplateListResponse is a page of templates.
type TemplateListResponse struct {
	Data   []*reporttemplate.Template `json:"data"`
	Total  int64                      `json:"total"`
	Limit  int                        `json:"limit,omitempty"`
	Offset int                        `json:"offset,omitempty"`
}

// NewTemplatePage builds a paginated template list response.
func NewTemplatePage(templates []*reporttemplate.Template, total int64, filter *reporttemplate.Filter) TemplateListResponse {
	if templates == nil {
		templates = []*reporttemplate.Template{}
	}
	return TemplateListResponse{Data: templates, Total: total, Limit: filter.Limit, Offset: filter.Offset}
}

// MessagesResponse is the ordered history of a conversation.
type MessagesResponse struct {
	ConversationID string                  `json:"conversationId"`
	Messages       []*conversation.Message `json:"messages"`
}

// ConversationStatusResponse tells clients whether a turn is in flight and
// what the latest extraction was.
type ConversationStatusResponse struct {
	ConversationID  string         `json:"conversationId"`
	Generating      bool           `json:"generating"`
	ExtractedFields *intent.Fields `json:"extractedFields,omitempty"`
}
