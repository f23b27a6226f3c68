package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jan-server/services/report-api/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		Long:  `Validate and inspect the environment driven configuration.`,
	}

	configValidateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration from the environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE:  runConfigShow,
	}
	configShowCmd.Flags().String("format", "yaml", "Output format: yaml, json")

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	return configCmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	view := redact(cfg)

	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(view)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// configView is the printable subset of the configuration.
type configView struct {
	ServiceName           string `json:"serviceName" yaml:"serviceName"`
	Environment           string `json:"environment" yaml:"environment"`
	Addr                  string `json:"addr" yaml:"addr"`
	StorageBackend        string `json:"storageBackend" yaml:"storageBackend"`
	DatabaseURL           string `json:"databaseUrl,omitempty" yaml:"databaseUrl,omitempty"`
	GuardBackend          string `json:"guardBackend" yaml:"guardBackend"`
	RedisURL              string `json:"redisUrl,omitempty" yaml:"redisUrl,omitempty"`
	GuardTTL              string `json:"guardTtl" yaml:"guardTtl"`
	GenerationLatency     string `json:"generationLatency" yaml:"generationLatency"`
	GenerationTimeout     string `json:"generationTimeout" yaml:"generationTimeout"`
	ExtractionCacheSize   int    `json:"extractionCacheSize" yaml:"extractionCacheSize"`
	IntentRulesFile       string `json:"intentRulesFile,omitempty" yaml:"intentRulesFile,omitempty"`
	SeedDemoReports       bool   `json:"seedDemoReports" yaml:"seedDemoReports"`
	AuthEnabled           bool   `json:"authEnabled" yaml:"authEnabled"`
	DefaultAuthorID       string `json:"defaultAuthorId" yaml:"defaultAuthorId"`
	DefaultOrganizationID string `json:"defaultOrganizationId" yaml:"defaultOrganizationId"`
}

func redact(cfg *config.Config) configView {
	view := configView{
		ServiceName:           cfg.ServiceName,
		Environment:           cfg.Environment,
		Addr:                  cfg.Addr(),
		StorageBackend:        cfg.StorageBackend,
		GuardBackend:          cfg.GuardBackend,
		GuardTTL:              cfg.GuardTTL.String(),
		GenerationLatency:     cfg.GenerationLatency.String(),
		GenerationTimeout:     cfg.GenerationTimeout.String(),
		ExtractionCacheSize:   cfg.ExtractionCacheEntries(),
		IntentRulesFile:       cfg.IntentRulesFile,
		SeedDemoReports:       cfg.SeedDemoReports,
		AuthEnabled:           cfg.AuthEnabled,
		DefaultAuthorID:       cfg.DefaultAuthorID,
		DefaultOrganizationID: cfg.DefaultOrganizationID,
	}
	if cfg.StorageBackend == config.BackendPostgres {
		view.DatabaseURL = redactURL(cfg.DatabaseURL)
	}
	if cfg.GuardBackend == config.BackendRedis {
		view.RedisURL = redactURL(cfg.RedisURL)
	}
	return view
}
