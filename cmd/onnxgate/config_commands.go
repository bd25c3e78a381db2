package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"onnxgate/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				target = defaultPath
			}
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return err
			}
			if _, err := os.Stat(expanded); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", expanded)
			}
			if err := config.CreateSample(expanded); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample configuration to %s\n", expanded)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Target path for the sample config")
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			_, resolved, usedDefaults, err := config.Load(path)
			if err != nil {
				return err
			}
			if usedDefaults {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file found; built-in defaults are valid")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", resolved)
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Show the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cfg, resolved, usedDefaults, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if usedDefaults {
				fmt.Fprintln(out, "source: built-in defaults")
			} else {
				fmt.Fprintf(out, "source: %s\n", resolved)
			}
			rows := [][]string{
				{"scratch_dir", cfg.Paths.ScratchDir},
				{"log_dir", cfg.Paths.LogDir},
				{"api_bind", cfg.Paths.APIBind},
				{"default_opset", fmt.Sprintf("%d", cfg.Converter.DefaultOpset)},
				{"workers", fmt.Sprintf("%d", cfg.Converter.Workers)},
				{"max_upload_mib", fmt.Sprintf("%d", cfg.Converter.MaxUploadMiB)},
				{"tensorflow_command", cfg.Converter.TensorFlowCommand},
				{"tensorflow_timeout", fmt.Sprintf("%ds", cfg.Converter.TensorFlowTimeout)},
				{"journal.enabled", yesNo(cfg.Journal.Enabled)},
				{"journal.path", cfg.Journal.Path},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}
