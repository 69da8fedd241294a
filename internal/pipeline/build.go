package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spends-pipeline/internal/config"
	"spends-pipeline/internal/model"
	"spends-pipeline/internal/store"
)

// Builder runs dashboard builds against a data directory. Builds are
// independent of each other: each run reads its own rows and writes its own
// accumulators, so callers are free to build dashboards in parallel.
type Builder struct {
	DataDir       string
	DashboardsDir string

	// ConfigDir is the base for resolving relative mapping document paths;
	// normally the directory holding dashboard_configs.json.
	ConfigDir string
}

func NewBuilder(dataDir string) *Builder {
	return &Builder{
		DataDir:       dataDir,
		DashboardsDir: filepath.Join(dataDir, "dashboards"),
		ConfigDir:     ".",
	}
}

// BuildDashboard builds one pre-aggregated dashboard document end to end:
// load the configured data files, resolve the row filter, aggregate, write
// the document. The returned report carries the row and drop counts for
// tracking.
func (b *Builder) BuildDashboard(ctx context.Context, cfg model.DashboardConfig) (*model.BuildReport, error) {
	start := time.Now()
	fmt.Printf("\nBuilding dashboard: %s\n", cfg.ID)

	files := cfg.Files()
	if len(files) == 0 {
		return nil, fmt.Errorf("dashboard %s: no data files configured", cfg.ID)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rows := LoadDataFiles(files, b.DataDir)

	aggCfg := cfg.AggregationConfig
	if cfg.Mapping != "" && aggCfg.Filter == nil {
		filter, err := config.LoadMapping(b.resolveMapping(cfg.Mapping))
		if err != nil {
			fmt.Printf("  Warning: could not load mapping %s: %v\n", cfg.Mapping, err)
		} else {
			aggCfg.Filter = filter
		}
	}

	aggregated, skipped, err := AggregateRecords(rows, aggCfg)
	if err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", cfg.ID, err)
	}
	if skipped > 0 {
		fmt.Printf("  Skipped %d rows with invalid year values\n", skipped)
	}
	fmt.Printf("  Aggregated: %d groups, %d series\n", len(aggregated.Groups), len(aggregated.Series))

	outPath, size, err := WriteDashboard(cfg, aggregated, b.DashboardsDir)
	if err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", cfg.ID, err)
	}
	fmt.Printf("  Saved: %s (%.1f KB)\n", filepath.Base(outPath), float64(size)/1024)

	return &model.BuildReport{
		DashboardID: cfg.ID,
		RowsLoaded:  len(rows),
		RowsSkipped: skipped,
		GroupCount:  len(aggregated.Groups),
		SeriesCount: len(aggregated.Series),
		OutputPath:  outPath,
		OutputBytes: size,
		Duration:    time.Since(start),
	}, nil
}

func (b *Builder) resolveMapping(mapping string) string {
	if filepath.IsAbs(mapping) {
		return mapping
	}
	return filepath.Join(b.ConfigDir, mapping)
}

// trackBuild reports a build-store failure without failing the build; a
// broken tracking database should not stop dashboards from being written.
func trackBuild(err error) {
	if err != nil {
		fmt.Printf("  Warning: build tracking failed: %v\n", err)
	}
}

// BuildAll builds every configured dashboard, recording each run in the
// build store. A failing dashboard is logged and skipped; the rest still
// build. Returns the number of dashboards built.
func (b *Builder) BuildAll(ctx context.Context, dashboards []model.DashboardConfig) (int, error) {
	built := 0
	for _, cfg := range dashboards {
		select {
		case <-ctx.Done():
			return built, ctx.Err()
		default:
		}

		buildID := uuid.New().String()
		trackBuild(store.SaveBuild(buildID, cfg.ID))
		trackBuild(store.UpdateBuildStatus(buildID, "running"))
		trackBuild(store.SaveBuildLog(buildID, "build", "info", "Starting dashboard build", map[string]interface{}{
			"dashboard": cfg.ID,
			"files":     cfg.Files(),
		}))

		report, err := b.BuildDashboard(ctx, cfg)
		if err != nil {
			fmt.Printf("  Build failed: %v\n", err)
			trackBuild(store.UpdateBuildStatus(buildID, "failed"))
			trackBuild(store.SaveBuildError(buildID, err))
			continue
		}

		trackBuild(store.FinishBuild(buildID, report))
		trackBuild(store.SaveBuildLog(buildID, "build", "info", "Dashboard build completed", map[string]interface{}{
			"rows_loaded":  report.RowsLoaded,
			"rows_skipped": report.RowsSkipped,
			"groups":       report.GroupCount,
			"series":       report.SeriesCount,
			"duration_ms":  report.Duration.Milliseconds(),
		}))
		built++
	}
	return built, nil
}
