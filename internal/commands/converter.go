package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankrec-dev/bankrec/internal/convert"
	"github.com/bankrec-dev/bankrec/internal/format"
)

// NewConverterCommand creates the root command of the converter binary.
func NewConverterCommand() *cobra.Command {
	var (
		input        string
		inputFormat  string
		outputFormat string
		currencies   string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:     "converter",
		Short:   "Convert bank record files between csv, txt, and bin",
		Version: versionString(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)

			scales, err := loadScales(currencies)
			if err != nil {
				return err
			}
			reg := format.Default(scales)

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("reading %s: %w", input, err)
			}

			src, err := resolveCodec(reg, inputFormat, data, logger)
			if err != nil {
				return err
			}

			out, err := convert.Convert(data, src.Name(), outputFormat, reg)
			if err != nil {
				return err
			}
			logger.Debug("converted", "from", src.Name(), "to", outputFormat, "bytes", len(out))

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "input file path (required)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "input format: csv, txt, or bin (detected by content when omitted)")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "output format: csv, txt, or bin (required)")
	_ = cmd.MarkFlagRequired("output-format")
	cmd.Flags().StringVar(&currencies, "currencies", "", "YAML file overriding currency minor-unit scales")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug diagnostics to stderr")

	return cmd
}
