package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spends-pipeline/internal/model"
)

// WriteDashboard writes the pre-aggregated document for one dashboard into
// dashboardsDir, creating it when missing. Returns the output path and the
// written size in bytes.
func WriteDashboard(cfg model.DashboardConfig, aggregated *model.AggregatedData, dashboardsDir string) (string, int64, error) {
	if err := os.MkdirAll(dashboardsDir, 0755); err != nil {
		return "", 0, fmt.Errorf("create dashboards directory: %w", err)
	}

	doc := model.DashboardDocument{
		ID:          cfg.ID,
		Title:       cfg.Title,
		Subtitle:    cfg.Subtitle,
		Note:        cfg.Note,
		Description: cfg.Description,
		Aggregated:  aggregated,
	}

	outPath := filepath.Join(dashboardsDir, cfg.ID+".json")
	file, err := os.Create(outPath)
	if err != nil {
		return "", 0, fmt.Errorf("create dashboard file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(doc); err != nil {
		return "", 0, fmt.Errorf("encode dashboard: %w", err)
	}

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	return outPath, size, nil
}
