package utils

import (
	"os"
	"path/filepath"
)

// DataPaths centralizes the on-disk layout of the data directory: raw CSV
// snapshots and columnar caches side by side, built dashboard documents in
// a dashboards/ subdirectory.
type DataPaths struct {
	DataDir string
}

func NewDataPaths(dataDir string) DataPaths {
	return DataPaths{DataDir: dataDir}
}

// CSVPath returns the raw snapshot path for a table.
func (p DataPaths) CSVPath(table string) string {
	return filepath.Join(p.DataDir, table+".csv")
}

// ColumnarPath returns the compressed columnar cache path for a table.
func (p DataPaths) ColumnarPath(table string) string {
	return filepath.Join(p.DataDir, table+".colz")
}

// DashboardsDir returns the directory holding built dashboard documents.
func (p DataPaths) DashboardsDir() string {
	return filepath.Join(p.DataDir, "dashboards")
}

// DashboardPath returns the document path for a dashboard id. The id is
// flattened to its base name so a crafted id cannot escape the directory.
func (p DataPaths) DashboardPath(id string) string {
	return filepath.Join(p.DashboardsDir(), filepath.Base(id)+".json")
}

// EnsureDataDir creates the data directory when missing.
func (p DataPaths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir, 0755)
}

// FileSize returns a file's size in bytes, or 0 when it does not exist.
func (p DataPaths) FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
