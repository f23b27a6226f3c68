package main

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/infrastructure/database"
	"jan-server/services/report-api/internal/infrastructure/logger"
	reportrepo "jan-server/services/report-api/internal/infrastructure/repository/report"
	templaterepo "jan-server/services/report-api/internal/infrastructure/repository/reporttemplate"
)

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management",
		Long:  `Migrate and seed the PostgreSQL database configured by DB_POSTGRESQL_WRITE_DSN.`,
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the report tables",
		RunE:  runDBMigrate,
	})
	dbCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Seed the demo reports and templates into an empty database",
		RunE:  runDBSeed,
	})
	return dbCmd
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	db, log, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(cmd.Context(), db, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
	return nil
}

func runDBSeed(cmd *cobra.Command, args []string) error {
	db, log, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(cmd.Context(), db, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	seeded, err := report.Seed(cmd.Context(), reportrepo.NewPostgresRepository(db))
	if err != nil {
		return fmt.Errorf("seed reports: %w", err)
	}
	templates, err := reporttemplate.Seed(cmd.Context(), templaterepo.NewPostgresRepository(db))
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d reports and %d templates\n", seeded, templates)
	return nil
}

func openDatabase(cmd *cobra.Command) (*gorm.DB, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(cfg)
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    1,
		MaxOpenConns:    2,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, log, fmt.Errorf("connect database %s: %w", redactURL(cfg.DatabaseURL), err)
	}
	return db, log, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// redactURL hides the password of a connection URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
