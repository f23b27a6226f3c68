//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/draft"
	"jan-server/services/report-api/internal/domain/generation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/infrastructure/auth"
	"jan-server/services/report-api/internal/infrastructure/logger"
	"jan-server/services/report-api/internal/infrastructure/metrics"
	"jan-server/services/report-api/internal/interfaces/httpserver"
	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
)

var domainSet = wire.NewSet(
	newReportService,
	wire.Bind(new(report.Service), new(*report.DefaultService)),
	wire.Bind(new(draft.Saver), new(*report.DefaultService)),
	newTemplateService,
	wire.Bind(new(reporttemplate.Service), new(*reporttemplate.DefaultService)),
	newConversationService,
	wire.Bind(new(generation.MessageStore), new(*conversation.Service)),
	wire.Bind(new(handlers.ConversationStore), new(*conversation.Service)),
	generation.NewBus,
	wire.Bind(new(handlers.EventSource), new(*generation.Bus)),
	newDraftService,
	wire.Bind(new(handlers.DraftService), new(*draft.Service)),
	newCoordinator,
	wire.Bind(new(handlers.TurnRunner), new(*generation.Coordinator)),
)

// BuildApplication assembles the report service with Wire. Storage and the
// generation guard follow STORAGE_BACKEND and GUARD_BACKEND.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideStorage,
		provideGuard,
		newClassifier,
		domainSet,
		newAuthValidator,
		handlers.NewProvider,
		provideReadiness,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}

type guardHandle struct {
	guard generation.Guard
	ping  func(ctx context.Context) error
}

func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, func(), error) {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SeedDemoReports {
		if _, err := seedDemoData(ctx, store); err != nil {
			_ = store.close()
			return nil, nil, err
		}
	}
	return store, func() { _ = store.close() }, nil
}

func provideGuard(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*guardHandle, func(), error) {
	g, ping, closeGuard, err := openGuard(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return &guardHandle{guard: g, ping: ping}, func() { _ = closeGuard() }, nil
}

func provideReadiness(store *storage, g *guardHandle) httpserver.ReadinessCheck {
	return readiness(store.ping, g.ping)
}

func newReportService(store *storage, log zerolog.Logger) *report.DefaultService {
	return report.NewService(store.reports, log, report.WithObserver(metrics.NewReportObserver()))
}

func newTemplateService(store *storage, log zerolog.Logger) *reporttemplate.DefaultService {
	return reporttemplate.NewService(store.templates, log)
}

func newConversationService(store *storage, cfg *config.Config, log zerolog.Logger) (*conversation.Service, error) {
	return conversation.NewService(store.messages, log, cfg.ExtractionCacheEntries())
}

func newDraftService(reports *report.DefaultService, bus *generation.Bus, log zerolog.Logger) (*draft.Service, func()) {
	drafts := draft.NewService(reports, log)
	return drafts, drafts.Attach(bus)
}

func newCoordinator(store generation.MessageStore, classifier intent.Classifier, g *guardHandle, bus *generation.Bus, cfg *config.Config, log zerolog.Logger) *generation.Coordinator {
	return generation.NewCoordinator(store, classifier, g.guard, bus,
		generation.Config{Timeout: cfg.GenerationTimeout}, metrics.NewGenerationObserver(), log)
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}
