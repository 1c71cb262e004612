package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openacre/loam/internal/types"
)

var inquiryInfoCmd = &cobra.Command{
	Use:   "info <inquiry-id>",
	Short: "Show detailed information about an inquiry",
	Args:  cobra.ExactArgs(1),
	RunE:  runInquiryInfo,
}

func runInquiryInfo(cmd *cobra.Command, args []string) error {
	inquiryID := args[0]
	ctx := context.Background()

	db, err := resolveStore()
	if err != nil {
		return err
	}
	defer db.Close()

	inq, err := db.GetInquiry(ctx, inquiryID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if inquiryJSONOutput {
		return printJSON(out, inq)
	}

	fmt.Fprintf(out, "Inquiry:       %s\n", inq.ID)
	fmt.Fprintf(out, "Status:        %s\n", inq.Status)
	fmt.Fprintf(out, "Address:       %s\n", inq.Address)
	fmt.Fprintf(out, "Lot Size:      %.2f acres\n", inq.LotSizeAcres)
	if inq.UserContext != "" {
		fmt.Fprintf(out, "Context:       %s\n", inq.UserContext)
	}
	fmt.Fprintf(out, "Progress:      %d%%\n", inq.ProgressPercent())
	fmt.Fprintf(out, "Created:       %s\n", inq.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Updated:       %s\n", inq.UpdatedAt.Format("2006-01-02 15:04:05 MST"))

	if len(inq.Answers) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Answers:")
		for _, q := range types.Questions() {
			answer, ok := inq.Answers[q.Number]
			if !ok {
				continue
			}
			fmt.Fprintf(out, "  %d. %s\n", q.Number, q.Title)
			fmt.Fprintf(out, "     %s\n", answer)
		}
	}

	if inq.Result != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Projection:")
		fmt.Fprintf(out, "  Project:     %s\n", inq.Result.ProjectName)
		fmt.Fprintf(out, "  Revenue:     $%.2f over 10 years\n", inq.Result.TotalRevenue)
		fmt.Fprintf(out, "  Costs:       $%.2f over 10 years\n", inq.Result.TotalCosts)
		fmt.Fprintf(out, "  Net Cash:    $%.2f over 10 years\n", inq.Result.TotalNetCashFlow)
		if roi := inq.Result.ROIPercentage(); roi != nil {
			fmt.Fprintf(out, "  ROI:         %.2f%%\n", *roi)
		}
		fmt.Fprintf(out, "  Model:       %s\n", inq.Result.ModelUsed)
	}

	if inq.ErrorMessage != "" {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Error:         %s\n", inq.ErrorMessage)
	}

	return nil
}
