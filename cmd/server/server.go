package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/draft"
	"jan-server/services/report-api/internal/domain/generation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/infrastructure/auth"
	"jan-server/services/report-api/internal/infrastructure/database"
	"jan-server/services/report-api/internal/infrastructure/guard"
	"jan-server/services/report-api/internal/infrastructure/logger"
	"jan-server/services/report-api/internal/infrastructure/metrics"
	"jan-server/services/report-api/internal/infrastructure/observability"
	convrepo "jan-server/services/report-api/internal/infrastructure/repository/conversation"
	reportrepo "jan-server/services/report-api/internal/infrastructure/repository/report"
	templaterepo "jan-server/services/report-api/internal/infrastructure/repository/reporttemplate"
	"jan-server/services/report-api/internal/interfaces/httpserver"
	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.httpServer.Run(ctx)
	})
	return eg.Wait()
}

// storage holds the repositories of the selected backend.
type storage struct {
	reports   report.Repository
	templates reporttemplate.Repository
	messages  conversation.Repository
	ping      func(ctx context.Context) error
	close     func() error
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	var (
		store      *storage
		turnGuard  generation.Guard
		guardPing  func(ctx context.Context) error
		closeGuard func() error
	)
	startup, startupCtx := errgroup.WithContext(ctx)
	startup.Go(func() (err error) {
		store, err = openStorage(startupCtx, cfg, log)
		return err
	})
	startup.Go(func() (err error) {
		turnGuard, guardPing, closeGuard, err = openGuard(startupCtx, cfg, log)
		return err
	})
	if err := startup.Wait(); err != nil {
		log.Fatal().Err(err).Msg("initialize infrastructure")
	}
	defer func() {
		if err := errors.Join(store.close(), closeGuard()); err != nil {
			log.Error().Err(err).Msg("close infrastructure")
		}
	}()

	if cfg.SeedDemoReports {
		seeded, err := seedDemoData(ctx, store)
		if err != nil {
			log.Fatal().Err(err).Msg("seed demo data")
		}
		log.Info().Int("count", seeded).Msg("demo reports and templates seeded")
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load intent rules")
	}

	conversations, err := conversation.NewService(store.messages, log, cfg.ExtractionCacheEntries())
	if err != nil {
		log.Fatal().Err(err).Msg("initialize conversation service")
	}
	reports := report.NewService(store.reports, log, report.WithObserver(metrics.NewReportObserver()))
	templates := reporttemplate.NewService(store.templates, log)

	bus := generation.NewBus()
	drafts := draft.NewService(reports, log)
	defer drafts.Attach(bus)()

	coordinator := generation.NewCoordinator(conversations, classifier, turnGuard, bus,
		generation.Config{Timeout: cfg.GenerationTimeout}, metrics.NewGenerationObserver(), log)

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	handlerProvider := handlers.NewProvider(reports, templates, conversations, coordinator, bus, drafts, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator, readiness(store.ping, guardPing))
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageBackend == config.BackendMemory {
		log.Info().Msg("Using in-memory storage")
		return &storage{
			reports:   reportrepo.NewInMemoryRepository(),
			templates: templaterepo.NewInMemoryRepository(),
			messages:  convrepo.NewInMemoryRepository(),
			ping:      func(context.Context) error { return nil },
			close:     func() error { return nil },
		}, nil
	}

	db, err := database.Connect(newDatabaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info().Msg("Using PostgreSQL storage")
	return &storage{
		reports:   reportrepo.NewPostgresRepository(db),
		templates: templaterepo.NewPostgresRepository(db),
		messages:  convrepo.NewPostgresRepository(db),
		ping:      pingDatabase(db),
		close:     func() error { return database.Close(db) },
	}, nil
}

// seedDemoData fills empty report and template stores with the demo set.
func seedDemoData(ctx context.Context, store *storage) (int, error) {
	reports, err := report.Seed(ctx, store.reports)
	if err != nil {
		return 0, fmt.Errorf("seed reports: %w", err)
	}
	templates, err := reporttemplate.Seed(ctx, store.templates)
	if err != nil {
		return 0, fmt.Errorf("seed templates: %w", err)
	}
	return reports + templates, nil
}

func openGuard(ctx context.Context, cfg *config.Config, log zerolog.Logger) (generation.Guard, func(context.Context) error, func() error, error) {
	if cfg.GuardBackend == config.BackendMemory {
		return generation.NewMemoryGuard(), func(context.Context) error { return nil }, func() error { return nil }, nil
	}

	redisGuard, err := guard.NewRedisGuard(ctx, cfg.RedisURL, cfg.GuardTTL, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return redisGuard, redisGuard.Ping, redisGuard.Close, nil
}

func newClassifier(cfg *config.Config) (intent.Classifier, error) {
	rules, err := intent.DefaultRules()
	if cfg.IntentRulesFile != "" {
		rules, err = intent.LoadRules(cfg.IntentRulesFile)
	}
	if err != nil {
		return nil, err
	}
	return intent.NewDelayedClassifier(intent.NewKeywordClassifier(rules), cfg.GenerationLatency), nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func pingDatabase(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func readiness(checks ...func(ctx context.Context) error) httpserver.ReadinessCheck {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
