package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openacre/loam/internal/config"
	"github.com/openacre/loam/internal/snapshot"
	"github.com/openacre/loam/internal/store"
)

var (
	snapshotDBOverride string
	snapshotJSONOutput bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Generate a database snapshot",
	Long:  "Generate a point-in-time snapshot of the database, and upload it to S3 when snapshot storage is configured.",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDBOverride, "db", "", "Database path (overrides config and LOAM_DB_PATH)")
	snapshotCmd.Flags().BoolVar(&snapshotJSONOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadToolConfig()
	if err != nil {
		return err
	}

	dbPath := cfg.Database.Path
	snapshotDir := cfg.Database.SnapshotDir
	if snapshotDBOverride != "" {
		dbPath = snapshotDBOverride
		snapshotDir = ""
	}

	db, err := store.NewSQLiteStore(dbPath, snapshotDir)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.GenerateSnapshot(ctx); err != nil {
		return fmt.Errorf("generate snapshot: %w", err)
	}

	path, err := db.GetSnapshotPath(ctx)
	if err != nil {
		return fmt.Errorf("get snapshot path: %w", err)
	}

	var sizeBytes int64
	if info, statErr := os.Stat(path); statErr == nil {
		sizeBytes = info.Size()
	}

	uploader, err := snapshot.NewUploader(cfg.SnapshotStorage)
	if err != nil {
		return err
	}
	if err := uploader.Upload(ctx, path); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	var downloadURL string
	if cfg.SnapshotStorage.Bucket != "" {
		url, _, err := uploader.PresignedURL(ctx)
		if err != nil {
			return fmt.Errorf("presign snapshot URL: %w", err)
		}
		downloadURL = url
	}

	out := cmd.OutOrStdout()

	if snapshotJSONOutput {
		result := map[string]any{
			"path":       path,
			"size_bytes": sizeBytes,
		}
		if downloadURL != "" {
			result["download_url"] = downloadURL
		}
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Snapshot: %s\n", path)
	fmt.Fprintf(out, "Size:     %s\n", formatSize(sizeBytes))
	if downloadURL != "" {
		fmt.Fprintf(out, "URL:      %s\n", downloadURL)
	}

	return nil
}
