package handlers

import (
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Report       *ReportHandler
	Template     *TemplateHandler
	Conversation *ConversationHandler
	Draft        *DraftHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(reports report.Service, templates reporttemplate.Service, store ConversationStore, turns TurnRunner, events EventSource, drafts DraftService, log zerolog.Logger) *Provider {
	return &Provider{
		Report:       NewReportHandler(reports, log),
		Template:     NewTemplateHandler(templates, log),
		Conversation: NewConversationHandler(store, turns, events, log),
		Draft:        NewDraftHandler(drafts, log),
	}
}
