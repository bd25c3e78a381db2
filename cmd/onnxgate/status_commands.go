package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon health and backend availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := ctx.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "status: %s\n", health.Status)

			names := make([]string, 0, len(health.Backends))
			for name := range health.Backends {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %-12s %s\n", name, availabilityLabel(health.Backends[name], colorize))
			}
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show detailed daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintf(out, "onnxgate daemon %s (pid %d, up %s, %d workers)\n",
				status.Version, status.PID, status.Uptime, status.Workers)
			fmt.Fprintf(out, "supported formats: %v\n", status.SupportedFormats)
			fmt.Fprintf(out, "journal: %s\n\n", yesNo(status.JournalEnabled))

			backendRows := make([][]string, 0, len(status.Backends))
			for _, st := range status.Backends {
				backendRows = append(backendRows, []string{
					st.Name,
					availabilityLabel(st.Available, colorize),
					st.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Backend", "Available", "Detail"},
				backendRows,
			))

			if len(status.Preflight) > 0 {
				checkRows := make([][]string, 0, len(status.Preflight))
				for _, check := range status.Preflight {
					checkRows = append(checkRows, []string{
						check.Name,
						passedLabel(check.Passed, colorize),
						check.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Check", "Status", "Detail"},
					checkRows,
				))
			}
			return nil
		},
	}
}

func availabilityLabel(available, colorize bool) string {
	if available {
		return colorLabel("available", ansiGreen, colorize)
	}
	return colorLabel("unavailable", ansiRed, colorize)
}

func passedLabel(passed, colorize bool) string {
	if passed {
		return colorLabel("ok", ansiGreen, colorize)
	}
	return colorLabel("failed", ansiYellow, colorize)
}

func colorLabel(label, color string, colorize bool) string {
	if !colorize {
		return label
	}
	return color + label + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
