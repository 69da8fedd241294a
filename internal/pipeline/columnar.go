package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/snappy"
)

// columnarExt marks the compressed column-major cache files that sit next
// to the raw CSV snapshots. Aggregation reads them noticeably faster than
// re-parsing multi-hundred-MB CSVs.
const columnarExt = ".colz"

// columnarFile is the decoded layout of a cache file: one value array per
// column, all of length Rows. The JSON body is snappy block compressed on
// disk.
type columnarFile struct {
	Columns []string        `json:"columns"`
	Rows    int             `json:"rows"`
	Data    [][]interface{} `json:"data"`
}

// WriteColumnar re-encodes rows into a compressed column-major file.
// Columns are the sorted union of fields across all rows; fields a row
// lacks are stored as null.
func WriteColumnar(rows []GenericRecord, path string) error {
	fields := make(map[string]bool)
	for _, rec := range rows {
		for field := range rec {
			fields[field] = true
		}
	}
	columns := make([]string, 0, len(fields))
	for field := range fields {
		columns = append(columns, field)
	}
	sort.Strings(columns)

	cf := columnarFile{
		Columns: columns,
		Rows:    len(rows),
		Data:    make([][]interface{}, len(columns)),
	}
	for i, col := range columns {
		values := make([]interface{}, len(rows))
		for j, rec := range rows {
			values[j] = rec[col]
		}
		cf.Data[i] = values
	}

	body, err := json.Marshal(cf)
	if err != nil {
		return fmt.Errorf("encode columnar body: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	return os.WriteFile(path, snappy.Encode(nil, body), 0644)
}

// ReadColumnar restores records from a columnar cache file. Null cells are
// omitted from the record, matching how a missing CSV field reads.
func ReadColumnar(path string) ([]GenericRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	body, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", filepath.Base(path), err)
	}

	var cf columnarFile
	if err := json.Unmarshal(body, &cf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if len(cf.Data) != len(cf.Columns) {
		return nil, fmt.Errorf("%s: %d columns but %d value arrays", filepath.Base(path), len(cf.Columns), len(cf.Data))
	}
	for i, col := range cf.Data {
		if len(col) != cf.Rows {
			return nil, fmt.Errorf("%s: column %s has %d values for %d rows", filepath.Base(path), cf.Columns[i], len(col), cf.Rows)
		}
	}

	rows := make([]GenericRecord, cf.Rows)
	for j := range rows {
		rec := make(GenericRecord, len(cf.Columns))
		for i, name := range cf.Columns {
			if v := cf.Data[i][j]; v != nil {
				rec[name] = v
			}
		}
		rows[j] = rec
	}
	return rows, nil
}

// ConvertTable re-encodes a CSV snapshot into the columnar cache format.
func ConvertTable(csvPath, colPath string) error {
	rows, err := LoadCSV(csvPath)
	if err != nil {
		return err
	}

	fmt.Printf("  Converting to columnar: %s\n", filepath.Base(colPath))
	if err := WriteColumnar(rows, colPath); err != nil {
		return err
	}

	if info, err := os.Stat(colPath); err == nil {
		fmt.Printf("  Columnar size: %.1f MB\n", float64(info.Size())/1024/1024)
	}
	return nil
}
