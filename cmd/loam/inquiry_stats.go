package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var inquiryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate inquiry statistics",
	Args:  cobra.NoArgs,
	RunE:  runInquiryStats,
}

func runInquiryStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := resolveStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetExtendedStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	out := cmd.OutOrStdout()

	if inquiryJSONOutput {
		return printJSON(out, stats)
	}

	fmt.Fprintf(out, "Total Inquiries: %d\n", stats.TotalInquiries)

	if len(stats.StatusCounts) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "By Status:")
		for _, status := range sortedKeys(stats.StatusCounts) {
			fmt.Fprintf(out, "  %-12s %d\n", status, stats.StatusCounts[status])
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Questionnaire:")
	fmt.Fprintf(out, "  Complete:    %d\n", stats.QuestionnaireStats.Complete)
	fmt.Fprintf(out, "  In Progress: %d\n", stats.QuestionnaireStats.InProgress)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Generation:")
	fmt.Fprintf(out, "  Completed:   %d\n", stats.GenerationStats.Completed)
	fmt.Fprintf(out, "  Failed:      %d\n", stats.GenerationStats.Failed)
	if stats.GenerationStats.Completed > 0 {
		fmt.Fprintf(out, "  Average:     %.2fs\n", stats.GenerationStats.AverageSeconds)
	}
	for _, model := range sortedKeys(stats.GenerationStats.ModelCounts) {
		fmt.Fprintf(out, "  %-12s %d\n", model+":", stats.GenerationStats.ModelCounts[model])
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Land:")
	fmt.Fprintf(out, "  Total:       %.2f acres\n", stats.LandStats.TotalAcres)
	fmt.Fprintf(out, "  Average:     %.2f acres\n", stats.LandStats.AverageAcres)
	fmt.Fprintf(out, "  Largest:     %.2f acres\n", stats.LandStats.LargestAcres)

	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
