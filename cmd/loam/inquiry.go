package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openacre/loam/internal/config"
	"github.com/openacre/loam/internal/store"
)

var (
	inquiryDBOverride string
	inquiryJSONOutput bool
)

var inquiryCmd = &cobra.Command{
	Use:   "inquiry",
	Short: "Manage property inquiries",
	Long:  "List, inspect, and delete property inquiries without running the server.",
}

func init() {
	inquiryCmd.PersistentFlags().StringVar(&inquiryDBOverride, "db", "", "Database path (overrides config and LOAM_DB_PATH)")
	inquiryCmd.PersistentFlags().BoolVar(&inquiryJSONOutput, "json", false, "Output in JSON format")

	inquiryCmd.AddCommand(inquiryListCmd)
	inquiryCmd.AddCommand(inquiryInfoCmd)
	inquiryCmd.AddCommand(inquiryDeleteCmd)
	inquiryCmd.AddCommand(inquiryStatsCmd)

	rootCmd.AddCommand(inquiryCmd)
}

// resolveStore opens the database the same way the server does, honoring
// the --db override. With --db the snapshot directory follows the database
// instead of the configured location. Callers must Close() the returned store.
func resolveStore() (*store.SQLiteStore, error) {
	cfg, err := config.LoadToolConfig()
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database.Path
	snapshotDir := cfg.Database.SnapshotDir
	if inquiryDBOverride != "" {
		dbPath = inquiryDBOverride
		snapshotDir = ""
	}

	return store.NewSQLiteStore(dbPath, snapshotDir)
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a tabwriter configured for aligned column output.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// formatSize renders a byte count in human units.
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
