package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"spends-pipeline/pkg/utils"
)

// LoadCSV reads a row-oriented CSV file into records, inferring cell types
// the same way ingestion types freshly downloaded tables.
func LoadCSV(path string) ([]GenericRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV: %w", err)
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(r io.Reader) ([]GenericRecord, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i, h := range headers {
		// Clean header names: trim whitespace and strip stray quotes
		h = strings.TrimSpace(h)
		headers[i] = strings.ReplaceAll(h, `"`, "")
	}

	var rows []GenericRecord
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn row should not abort the whole table
			continue
		}

		rec := make(GenericRecord, len(headers))
		for i, h := range headers {
			if i < len(record) {
				rec[h] = utils.ParseValue(record[i])
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// LoadTable loads one data file, dispatching on extension between the
// columnar cache and raw CSV.
func LoadTable(path string) ([]GenericRecord, error) {
	if strings.EqualFold(filepath.Ext(path), columnarExt) {
		return ReadColumnar(path)
	}
	return LoadCSV(path)
}

// LoadDataFiles resolves the data files configured for a dashboard against
// the data directory, preferring the columnar cache over the raw CSV, and
// concatenates all their rows. Missing or unreadable files are reported and
// skipped so one absent table only affects the dashboards that use it.
func LoadDataFiles(names []string, dataDir string) []GenericRecord {
	var all []GenericRecord
	for _, name := range names {
		path, ok := resolveDataFile(name, dataDir)
		if !ok {
			fmt.Printf("  Data file not found: %s\n", name)
			continue
		}

		fmt.Printf("  Loading: %s\n", filepath.Base(path))
		rows, err := LoadTable(path)
		if err != nil {
			fmt.Printf("  Failed to load %s: %v\n", filepath.Base(path), err)
			continue
		}
		fmt.Printf("  Loaded %d rows\n", len(rows))
		all = append(all, rows...)
	}
	return all
}

// resolveDataFile tries the columnar cache first, then the CSV snapshot,
// then the configured name verbatim (it might be a full path).
func resolveDataFile(name, dataDir string) (string, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, candidate := range []string{
		filepath.Join(dataDir, base+columnarExt),
		filepath.Join(dataDir, base+".csv"),
		filepath.Join(dataDir, name),
		name,
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
