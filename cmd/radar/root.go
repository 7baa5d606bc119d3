package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roleradar/internal/config"
	"roleradar/internal/logger"
)

var (
	cfgFile string
	envOnly bool

	rootCmd = &cobra.Command{
		Use:          "radar",
		Short:        "radar discovers companies worth applying to from public job-market chatter",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.yaml, or RR_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&envOnly, "env-only", false, "skip the config file and read RR_* environment variables only")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("RR_CONFIG")
	}
	if path == "" {
		path = "config/config.yaml"
	}
	only := envOnly
	if raw := os.Getenv("RR_ENV_ONLY"); raw != "" {
		only = strings.EqualFold(raw, "true") || raw == "1"
	}
	return config.Load(path, only)
}

func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
