package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := ctx.client().History(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(history.Entries) == 0 {
				fmt.Fprintln(out, "no conversions recorded")
				return nil
			}

			rows := make([][]string, 0, len(history.Entries))
			for _, entry := range history.Entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.CreatedAt,
					entry.SourceFormat,
					entry.Outcome,
					strconv.FormatInt(entry.InputBytes, 10),
					strconv.FormatInt(entry.OutputBytes, 10),
					strconv.FormatInt(entry.DurationMS, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "When", "Format", "Outcome", "In (B)", "Out (B)", "ms"},
				rows,
				1, 5, 6, 7,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum entries to show")
	return cmd
}
