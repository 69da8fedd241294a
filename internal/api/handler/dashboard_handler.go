package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"spends-pipeline/internal/config"
	"spends-pipeline/internal/model"
	"spends-pipeline/internal/pipeline"
	"spends-pipeline/internal/store"
	"spends-pipeline/pkg/utils"
)

var (
	cfg    config.Config
	paths  utils.DataPaths
	logger = zap.NewNop()
)

// Init wires the handler package to its runtime configuration.
func Init(c config.Config, l *zap.Logger) {
	cfg = c
	paths = utils.NewDataPaths(c.DataDir)
	if l != nil {
		logger = l
	}
}

// BuildRequest is the body of POST /builds.
type BuildRequest struct {
	// Dashboard restricts the run to one dashboard id; empty builds all.
	Dashboard string `json:"dashboard,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// CreateBuild triggers a dashboard build run
// @Summary Trigger a build run
// @Description Start building pre-aggregated dashboard documents, either all of them or a single dashboard by id
// @Tags builds
// @Accept json
// @Produce json
// @Param build body BuildRequest false "Build options"
// @Success 202 {object} map[string]interface{} "Build run accepted"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 404 {object} map[string]interface{} "Dashboard not found"
// @Failure 500 {object} map[string]interface{} "Configuration unreadable"
// @Router /builds [post]
func CreateBuild(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}

	dashboards, err := config.LoadDashboards(cfg.ConfigPath)
	if err != nil {
		logger.Error("dashboard config unreadable", zap.Error(err))
		http.Error(w, "Dashboard configuration unreadable", http.StatusInternalServerError)
		return
	}

	if req.Dashboard != "" {
		var matched []model.DashboardConfig
		for _, d := range dashboards {
			if d.ID == req.Dashboard {
				matched = append(matched, d)
				break
			}
		}
		if matched == nil {
			http.Error(w, "Dashboard not found: "+req.Dashboard, http.StatusNotFound)
			return
		}
		dashboards = matched
	}

	builder := pipeline.NewBuilder(cfg.DataDir)
	builder.ConfigDir = filepath.Dir(cfg.ConfigPath)

	ids := make([]string, 0, len(dashboards))
	for _, d := range dashboards {
		ids = append(ids, d.ID)
	}

	go func() {
		// The run is detached from the request; a build takes as long as a
		// build takes.
		built, err := builder.BuildAll(context.Background(), dashboards)
		if err != nil {
			logger.Error("build run aborted", zap.Int("built", built), zap.Error(err))
			return
		}
		logger.Info("build run finished", zap.Int("built", built), zap.Int("configured", len(dashboards)))
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":    "Build run started",
		"dashboards": ids,
	})
}

// ListBuilds lists build runs
// @Summary List build runs
// @Description Get all recorded build runs, newest first
// @Tags builds
// @Produce json
// @Success 200 {array} map[string]interface{} "Build runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /builds [get]
func ListBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := store.ListBuilds()
	if err != nil {
		logger.Error("list builds failed", zap.Error(err))
		http.Error(w, "Failed to fetch builds", http.StatusInternalServerError)
		return
	}
	if builds == nil {
		builds = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, builds)
}

// buildIDFromPath pulls the build id out of /api/v1/builds/<id>[/suffix].
func buildIDFromPath(path, suffix string) string {
	const prefix = "/api/v1/builds/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	id := strings.TrimPrefix(path, prefix)
	id = strings.TrimSuffix(id, suffix)
	return strings.Trim(id, "/")
}

// GetBuild fetches one build run
// @Summary Get a build run
// @Description Retrieve one build run by id
// @Tags builds
// @Produce json
// @Param id path string true "Build ID"
// @Success 200 {object} map[string]interface{} "Build run"
// @Failure 404 {object} map[string]interface{} "Build not found"
// @Router /builds/{id} [get]
func GetBuild(w http.ResponseWriter, r *http.Request) {
	id := buildIDFromPath(r.URL.Path, "")
	if id == "" {
		http.Error(w, "Build ID is required", http.StatusBadRequest)
		return
	}

	build, err := store.GetBuild(id)
	if err != nil {
		http.Error(w, "Build not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, build)
}

// GetBuildErrors lists the errors of one build run
// @Summary Get build errors
// @Description Retrieve the recorded errors for one build run
// @Tags builds
// @Produce json
// @Param id path string true "Build ID"
// @Success 200 {array} map[string]interface{} "Errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /builds/{id}/errors [get]
func GetBuildErrors(w http.ResponseWriter, r *http.Request) {
	id := buildIDFromPath(r.URL.Path, "/errors")
	if id == "" {
		http.Error(w, "Build ID is required", http.StatusBadRequest)
		return
	}

	errors, err := store.ListBuildErrors(id)
	if err != nil {
		logger.Error("list build errors failed", zap.String("build", id), zap.Error(err))
		http.Error(w, "Failed to fetch build errors", http.StatusInternalServerError)
		return
	}
	if errors == nil {
		errors = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, errors)
}

// ListDashboards lists built dashboard documents
// @Summary List built dashboards
// @Description Enumerate the pre-aggregated dashboard documents on disk
// @Tags dashboards
// @Produce json
// @Success 200 {array} map[string]interface{} "Dashboard documents"
// @Router /dashboards [get]
func ListDashboards(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(paths.DashboardsDir())
	if err != nil {
		// Nothing built yet is an empty list, not an error
		writeJSON(w, http.StatusOK, []map[string]interface{}{})
		return
	}

	docs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		doc := map[string]interface{}{
			"id": strings.TrimSuffix(entry.Name(), ".json"),
		}
		if info, err := entry.Info(); err == nil {
			doc["sizeBytes"] = info.Size()
			doc["modifiedAt"] = info.ModTime().UTC()
		}
		docs = append(docs, doc)
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDashboard serves one built dashboard document
// @Summary Get a dashboard document
// @Description Serve the pre-aggregated JSON document for one dashboard id
// @Tags dashboards
// @Produce json
// @Param id path string true "Dashboard ID"
// @Success 200 {object} map[string]interface{} "Dashboard document"
// @Failure 404 {object} map[string]interface{} "Dashboard not built"
// @Router /dashboards/{id} [get]
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/dashboards/"
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if id == "" {
		http.Error(w, "Dashboard ID is required", http.StatusBadRequest)
		return
	}

	path := paths.DashboardPath(id)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "Dashboard not built: "+id, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, path)
}

// ListTables reports source table status
// @Summary List source tables
// @Description List the source tables with their snapshot and columnar cache status
// @Tags tables
// @Produce json
// @Success 200 {array} map[string]interface{} "Tables"
// @Router /tables [get]
func ListTables(w http.ResponseWriter, r *http.Request) {
	downloader := pipeline.NewDownloader(cfg.BaseURL)

	tables := make([]map[string]interface{}, 0, len(pipeline.DefaultTables))
	for _, table := range pipeline.DefaultTables {
		csvSize := paths.FileSize(paths.CSVPath(table))
		colSize := paths.FileSize(paths.ColumnarPath(table))
		tables = append(tables, map[string]interface{}{
			"table":         table,
			"url":           downloader.TableURL(table),
			"csvBytes":      csvSize,
			"columnarBytes": colSize,
			"downloaded":    csvSize > 0,
			"converted":     colSize > 0,
		})
	}
	writeJSON(w, http.StatusOK, tables)
}
