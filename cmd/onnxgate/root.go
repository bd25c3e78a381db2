package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var addressFlag string
	var configFlag string

	ctx := newCommandContext(&addressFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "onnxgate",
		Short:         "Model conversion gateway CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&addressFlag, "address", "", "Daemon API address (host:port)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newHealthCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
