package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var opsetFlag int
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "convert <model-file>",
		Short: "Convert a model artifact through the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]
			payload, err := os.ReadFile(sourcePath)
			if err != nil {
				return fmt.Errorf("read model file: %w", err)
			}

			format := strings.TrimSpace(formatFlag)
			if format == "" {
				return fmt.Errorf("--format is required")
			}

			converted, err := ctx.client().Convert(cmd.Context(), payload, sourcePath, format, opsetFlag)
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = "model.onnx"
			}
			if err := os.WriteFile(output, converted, 0o644); err != nil {
				return fmt.Errorf("write converted model: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(converted))
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Source format (pytorch, tensorflow, sklearn, or a synonym)")
	cmd.Flags().IntVar(&opsetFlag, "opset", 0, "Target operator-set version (daemon default when omitted)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output path (default model.onnx)")

	return cmd
}
