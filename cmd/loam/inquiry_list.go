package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openacre/loam/internal/types"
)

var (
	inquiryListStatus string
	inquiryListLimit  int
	inquiryListOffset int
)

var inquiryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inquiries",
	Args:  cobra.NoArgs,
	RunE:  runInquiryList,
}

func init() {
	inquiryListCmd.Flags().StringVar(&inquiryListStatus, "status", "", "Filter by status (pending|processing|completed|failed)")
	inquiryListCmd.Flags().IntVar(&inquiryListLimit, "limit", 50, "Maximum number of inquiries to return")
	inquiryListCmd.Flags().IntVar(&inquiryListOffset, "offset", 0, "Number of inquiries to skip")
}

func runInquiryList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	status := types.InquiryStatus(inquiryListStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("invalid status %q: must be pending, processing, completed, or failed", inquiryListStatus)
	}

	db, err := resolveStore()
	if err != nil {
		return err
	}
	defer db.Close()

	inquiries, err := db.ListInquiries(ctx, status, inquiryListLimit, inquiryListOffset)
	if err != nil {
		return fmt.Errorf("list inquiries: %w", err)
	}

	if inquiryJSONOutput {
		items := make([]map[string]any, len(inquiries))
		for i, inq := range inquiries {
			items[i] = map[string]any{
				"id":             inq.ID,
				"status":         inq.Status,
				"address":        inq.Address,
				"lot_size_acres": inq.LotSizeAcres,
				"progress":       inq.ProgressPercent(),
				"created_at":     inq.CreatedAt,
			}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"inquiries": items,
			"total":     len(items),
		})
	}

	if len(inquiries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No inquiries found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tSTATUS\tADDRESS\tACRES\tPROGRESS\tCREATED")
	for _, inq := range inquiries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d%%\t%s\n",
			inq.ID,
			inq.Status,
			inq.Address,
			inq.LotSizeAcres,
			inq.ProgressPercent(),
			inq.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	return nil
}
