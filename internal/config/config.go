package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"spends-pipeline/internal/model"
	"spends-pipeline/pkg/utils"
)

// Config holds the environment-driven settings shared by the CLI and the
// API server. A .env file in the working directory is honored when present.
type Config struct {
	DataDir    string
	ConfigPath string
	DBPath     string
	ListenAddr string
	BaseURL    string

	// HTTPTimeout bounds a single table download. Full-table streaming
	// exports run to hundreds of MB, hence the generous default.
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment with sensible defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DataDir:     getEnv("SPENDS_DATA_DIR", "public"),
		ConfigPath:  getEnv("SPENDS_CONFIG", "dashboard_configs.json"),
		DBPath:      getEnv("SPENDS_DB", "dashboards.db"),
		ListenAddr:  getEnv("SPENDS_LISTEN_ADDR", ":8080"),
		BaseURL:     getEnv("SPENDS_BASE_URL", ""),
		HTTPTimeout: utils.ParseDuration(getEnv("SPENDS_HTTP_TIMEOUT", "10m")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDashboards reads the dashboard configuration document. A missing or
// unreadable document is fatal for the whole run; there is nothing to build
// without it.
func LoadDashboards(path string) ([]model.DashboardConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dashboard config: %w", err)
	}

	var file model.ConfigFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse dashboard config %s: %w", path, err)
	}
	return file.Dashboards, nil
}

// LoadMapping reads an auxiliary filter document, folding the legacy
// includeContains key into Contains so the engine only sees one shape.
func LoadMapping(path string) (*model.FilterSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}

	var spec model.FilterSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	if spec.IncludeContains != nil {
		spec.Contains = append(spec.Contains, spec.IncludeContains...)
		spec.IncludeContains = nil
	}
	return &spec, nil
}
