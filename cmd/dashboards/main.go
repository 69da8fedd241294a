package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spends-pipeline/internal/config"
	"spends-pipeline/internal/pipeline"
	"spends-pipeline/internal/store"
	"spends-pipeline/pkg/utils"
)

var (
	dataDir    string
	configPath string
	dbPath     string
	baseURL    string

	skipDL        bool
	onlyDashboard string
	httpTimeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "dashboards",
	Short: "Canada Spends dashboard data tooling",
	Long: `dashboards downloads Canada Spends source tables, caches them in a
compressed columnar format, and builds pre-aggregated dashboard JSON
documents from dashboard_configs.json.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := config.Load()
		if dataDir == "" {
			dataDir = env.DataDir
		}
		if configPath == "" {
			configPath = env.ConfigPath
		}
		if dbPath == "" {
			dbPath = env.DBPath
		}
		if baseURL == "" {
			baseURL = env.BaseURL
		}
		httpTimeout = env.HTTPTimeout
		return store.InitDB(dbPath)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		store.Close()
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download source tables and refresh the columnar caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := utils.NewDataPaths(dataDir)
		if err := paths.EnsureDataDir(); err != nil {
			return err
		}

		banner("Canada Spends Data Updater")

		if skipDL {
			fmt.Println("\n[1/2] Skipping download (--skip-download)")
		} else {
			fmt.Println("\n[1/2] Downloading CSV data...")
			downloader := pipeline.NewDownloader(baseURL)
			if httpTimeout > 0 {
				downloader.Client.Timeout = httpTimeout
			}
			downloaded, err := downloader.DownloadTables(cmd.Context(), pipeline.DefaultTables, dataDir)
			if err != nil {
				return err
			}
			fmt.Printf("\nDownloaded %d/%d tables\n", downloaded, len(pipeline.DefaultTables))
		}

		fmt.Println("\n[2/2] Converting to columnar cache...")
		converted := pipeline.ConvertTables(pipeline.DefaultTables, dataDir)
		fmt.Printf("\nConverted %d/%d tables\n", converted, len(pipeline.DefaultTables))

		banner("Complete!")
		printDataFiles(dataDir)
		fmt.Println("\nNext step: run 'dashboards build' to generate dashboard JSON files")
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build pre-aggregated dashboard JSON documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		banner("Dashboard Builder")

		dashboards, err := config.LoadDashboards(configPath)
		if err != nil {
			return err
		}

		if onlyDashboard != "" {
			filtered := dashboards[:0]
			for _, d := range dashboards {
				if d.ID == onlyDashboard {
					filtered = append(filtered, d)
				}
			}
			if len(filtered) == 0 {
				return fmt.Errorf("dashboard not found: %s", onlyDashboard)
			}
			dashboards = filtered
		}

		builder := pipeline.NewBuilder(dataDir)
		builder.ConfigDir = filepath.Dir(configPath)

		built, err := builder.BuildAll(cmd.Context(), dashboards)
		if err != nil {
			return err
		}

		banner(fmt.Sprintf("Complete! Built %d/%d dashboards", built, len(dashboards)))
		printDashboardFiles(utils.NewDataPaths(dataDir).DashboardsDir())

		if built < len(dashboards) {
			return fmt.Errorf("%d dashboard(s) failed to build", len(dashboards)-built)
		}
		return nil
	},
}

func banner(title string) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 60))
}

func printDataFiles(dir string) {
	fmt.Println("\nData files:")
	for _, ext := range []string{".colz", ".csv"} {
		matches, _ := filepath.Glob(filepath.Join(dir, "*"+ext))
		sort.Strings(matches)
		for _, path := range matches {
			if info, err := os.Stat(path); err == nil {
				fmt.Printf("  %s: %.1f MB\n", filepath.Base(path), float64(info.Size())/1024/1024)
			}
		}
	}
}

func printDashboardFiles(dir string) {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	sort.Strings(matches)
	fmt.Println("\nGenerated dashboard files:")
	for _, path := range matches {
		if info, err := os.Stat(path); err == nil {
			fmt.Printf("  %s: %.1f KB\n", filepath.Base(path), float64(info.Size())/1024)
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: SPENDS_DATA_DIR or public)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "dashboard config file (default: SPENDS_CONFIG or dashboard_configs.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "build tracking database (default: SPENDS_DB or dashboards.db)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "source API base URL")

	updateCmd.Flags().BoolVar(&skipDL, "skip-download", false, "only rebuild columnar caches from existing CSVs")
	buildCmd.Flags().StringVar(&onlyDashboard, "dashboard", "", "build a single dashboard by id")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(buildCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
