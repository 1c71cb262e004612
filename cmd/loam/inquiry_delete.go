package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openacre/loam/internal/validation"
)

var deleteForce bool

var inquiryDeleteCmd = &cobra.Command{
	Use:   "delete <inquiry-id>",
	Short: "Delete an inquiry and its projection",
	Long:  "Permanently delete an inquiry, its answers, and any generated projection. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInquiryDelete,
}

func init() {
	inquiryDeleteCmd.Flags().BoolVar(&deleteForce, "force", false,
		"Skip confirmation prompt")
}

func runInquiryDelete(cmd *cobra.Command, args []string) error {
	inquiryID := args[0]
	ctx := context.Background()

	if verr := validation.ValidateULID("id", inquiryID); verr != nil {
		return fmt.Errorf("invalid inquiry ID %q", inquiryID)
	}

	db, err := resolveStore()
	if err != nil {
		return err
	}
	defer db.Close()

	// Interactive confirmation unless --force
	if !deleteForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will permanently delete inquiry %q and its projection.\n", inquiryID)
		fmt.Fprint(errOut, "Type the inquiry ID to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}

		if strings.TrimSpace(input) != inquiryID {
			fmt.Fprintln(errOut, "Aborted. Inquiry ID did not match.")
			return nil
		}
	}

	if err := db.DeleteInquiry(ctx, inquiryID); err != nil {
		return err
	}

	if inquiryJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      inquiryID,
			"deleted": true,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted inquiry %q\n", inquiryID)
	return nil
}
