package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the Canada Spends streaming CSV export endpoint.
const DefaultBaseURL = "https://api.canadasbuilding.com/canada-spends"

// DefaultTables lists the source tables the dashboards draw from.
var DefaultTables = []string{
	"aggregated-contracts-under-10k",
	"contracts-over-10k",
	"cihr_grants",
	"global_affairs_grants",
	"nserc_grants",
	"sshrc_grants",
	"transfers",
}

const (
	downloadAttempts    = 3
	downloadBackoff     = 2 * time.Second
	concurrentDownloads = 4
)

// Downloader fetches source tables as CSV snapshots.
type Downloader struct {
	BaseURL string
	Client  *http.Client
}

func NewDownloader(baseURL string) *Downloader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Downloader{
		BaseURL: baseURL,
		// Full-table streaming exports run to hundreds of MB
		Client: &http.Client{Timeout: 10 * time.Minute},
	}
}

// TableURL returns the streaming CSV export URL for a table.
func (d *Downloader) TableURL(table string) string {
	return fmt.Sprintf("%s/%s.csv?_stream=on&_size=max", d.BaseURL, table)
}

// DownloadTable fetches one table into dir as <table>.csv, retrying
// transient failures with exponential backoff.
func (d *Downloader) DownloadTable(ctx context.Context, table, dir string) error {
	url := d.TableURL(table)
	outPath := filepath.Join(dir, table+".csv")

	fmt.Printf("\nDownloading: %s\n", table)
	fmt.Printf("  URL: %s\n", url)

	var lastErr error
	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		if attempt > 1 {
			delay := downloadBackoff * time.Duration(1<<(attempt-2))
			fmt.Printf("  Retry %d/%d in %v\n", attempt, downloadAttempts, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		size, rows, err := d.fetchTable(ctx, url, outPath)
		if err != nil {
			lastErr = err
			fmt.Printf("  ERROR: %v\n", err)
			continue
		}

		fmt.Printf("  Success: %d rows, %.1f MB\n", rows, float64(size)/1024/1024)
		return nil
	}
	return fmt.Errorf("download %s: %w", table, lastErr)
}

func (d *Downloader) fetchTable(ctx context.Context, url, outPath string) (int64, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Stream into a temp file and rename only after the body copied cleanly,
	// so a failed download never clobbers the previous snapshot or leaves a
	// truncated CSV for later loads to pick up.
	tmpPath := outPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, 0, err
	}

	counter := &lineCounter{}
	size, err := io.Copy(io.MultiWriter(file, counter), resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, 0, err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return 0, 0, err
	}
	return size, counter.lines, nil
}

// lineCounter counts newlines as bytes stream through, so row counts can be
// reported without buffering whole tables in memory.
type lineCounter struct{ lines int }

func (c *lineCounter) Write(p []byte) (int, error) {
	c.lines += bytes.Count(p, []byte{'\n'})
	return len(p), nil
}

// DownloadTables fetches tables concurrently. One failed table does not
// stop the rest; it only affects the dashboards that read it. Returns how
// many tables landed.
func (d *Downloader) DownloadTables(ctx context.Context, tables []string, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	var mu sync.Mutex
	downloaded := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrentDownloads)
	for _, table := range tables {
		table := table
		g.Go(func() error {
			if err := d.DownloadTable(ctx, table, dir); err != nil {
				fmt.Printf("  %s failed: %v\n", table, err)
				return nil
			}
			mu.Lock()
			downloaded++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return downloaded, err
	}
	return downloaded, nil
}

// ConvertTables re-encodes every downloaded CSV snapshot that exists into
// the columnar cache format. Returns how many tables were converted.
func ConvertTables(tables []string, dir string) int {
	converted := 0
	for _, table := range tables {
		csvPath := filepath.Join(dir, table+".csv")
		if _, err := os.Stat(csvPath); err != nil {
			continue
		}
		if err := ConvertTable(csvPath, filepath.Join(dir, table+columnarExt)); err != nil {
			fmt.Printf("  Columnar conversion failed for %s: %v\n", table, err)
			continue
		}
		converted++
	}
	return converted
}
