package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"spends-pipeline/internal/model"
)

var db *sql.DB

// InitDB opens the build-tracking database and creates the schema.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	buildTable := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		dashboard_id TEXT,
		status TEXT,
		rows_loaded INTEGER DEFAULT 0,
		rows_skipped INTEGER DEFAULT 0,
		groups_count INTEGER DEFAULT 0,
		series_count INTEGER DEFAULT 0,
		output_path TEXT,
		duration_ms INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS build_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	logTable := `
	CREATE TABLE IF NOT EXISTS build_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT,
		stage TEXT,
		level TEXT,
		message TEXT,
		details TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{buildTable, errorTable, logTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveBuild records a new dashboard build run.
func SaveBuild(buildID, dashboardID string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO builds (id, dashboard_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		buildID, dashboardID, "pending", now, now)
	return err
}

// UpdateBuildStatus moves a build through its lifecycle states.
func UpdateBuildStatus(buildID, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE builds SET status = ?, updated_at = ? WHERE id = ?`, status, now, buildID)
	return err
}

// FinishBuild marks a build completed and stores its report columns.
func FinishBuild(buildID string, report *model.BuildReport) error {
	if db == nil || report == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE builds SET
		status = 'completed',
		rows_loaded = ?, rows_skipped = ?, groups_count = ?, series_count = ?,
		output_path = ?, duration_ms = ?, updated_at = ?
		WHERE id = ?`,
		report.RowsLoaded, report.RowsSkipped, report.GroupCount, report.SeriesCount,
		report.OutputPath, report.Duration.Milliseconds(), now, buildID)
	return err
}

// SaveBuildError records an error for a build.
func SaveBuildError(buildID string, buildErr error) error {
	if db == nil || buildErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO build_errors (build_id, error_message, created_at) VALUES (?, ?, ?)`,
		buildID, buildErr.Error(), now)
	return err
}

// SaveBuildLog records a structured log entry for a build stage.
func SaveBuildLog(buildID, stage, level, message string, details map[string]interface{}) error {
	if db == nil {
		return nil
	}
	detailsJSON := ""
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			detailsJSON = string(raw)
		}
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO build_logs (build_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		buildID, stage, level, message, detailsJSON, now)
	return err
}

// ListBuilds returns all build runs, newest first.
func ListBuilds() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	rows, err := db.Query(`SELECT id, dashboard_id, status, rows_loaded, rows_skipped,
		groups_count, series_count, created_at, updated_at
		FROM builds ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []map[string]interface{}
	for rows.Next() {
		var id, dashboardID, status string
		var rowsLoaded, rowsSkipped, groupsCount, seriesCount int
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &dashboardID, &status, &rowsLoaded, &rowsSkipped,
			&groupsCount, &seriesCount, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		builds = append(builds, map[string]interface{}{
			"id":          id,
			"dashboardId": dashboardID,
			"status":      status,
			"rowsLoaded":  rowsLoaded,
			"rowsSkipped": rowsSkipped,
			"groups":      groupsCount,
			"series":      seriesCount,
			"createdAt":   createdAt,
			"updatedAt":   updatedAt,
		})
	}
	return builds, rows.Err()
}

// GetBuild fetches one build run by id.
func GetBuild(buildID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	var dashboardID, status string
	var rowsLoaded, rowsSkipped, groupsCount, seriesCount int
	var outputPath sql.NullString
	var durationMS int64
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT dashboard_id, status, rows_loaded, rows_skipped,
		groups_count, series_count, output_path, duration_ms, created_at, updated_at
		FROM builds WHERE id = ?`, buildID).
		Scan(&dashboardID, &status, &rowsLoaded, &rowsSkipped, &groupsCount,
			&seriesCount, &outputPath, &durationMS, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":          buildID,
		"dashboardId": dashboardID,
		"status":      status,
		"rowsLoaded":  rowsLoaded,
		"rowsSkipped": rowsSkipped,
		"groups":      groupsCount,
		"series":      seriesCount,
		"outputPath":  outputPath.String,
		"durationMs":  durationMS,
		"createdAt":   createdAt,
		"updatedAt":   updatedAt,
	}, nil
}

// ListBuildErrors returns the recorded errors for a build.
func ListBuildErrors(buildID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	rows, err := db.Query(`SELECT id, error_message, created_at FROM build_errors WHERE build_id = ? ORDER BY created_at`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []map[string]interface{}
	for rows.Next() {
		var id int64
		var message string
		var createdAt time.Time
		if err := rows.Scan(&id, &message, &createdAt); err != nil {
			return nil, err
		}
		errors = append(errors, map[string]interface{}{
			"id":        id,
			"message":   message,
			"createdAt": createdAt,
		})
	}
	return errors, rows.Err()
}
