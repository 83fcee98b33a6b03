package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/bankrec-dev/bankrec/internal/compare"
	"github.com/bankrec-dev/bankrec/internal/format"
)

// ErrDifferencesFound is returned by the comparer command after printing a
// non-empty diff report, so main can map it to its own exit code.
var ErrDifferencesFound = errors.New("differences found")

// NewComparerCommand creates the root command of the comparer binary.
func NewComparerCommand() *cobra.Command {
	var (
		file1      string
		format1    string
		file2      string
		format2    string
		currencies string
		output     string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "comparer",
		Short:   "Compare two bank record files, in any mix of csv, txt, and bin",
		Version: versionString(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)

			scales, err := loadScales(currencies)
			if err != nil {
				return err
			}
			reg := format.Default(scales)

			left, err := decodeFile(reg, file1, format1, logger)
			if err != nil {
				return err
			}
			right, err := decodeFile(reg, file2, format2, logger)
			if err != nil {
				return err
			}

			report, err := compare.Compare(left, right, scales)
			if err != nil {
				return err
			}

			if err := renderReport(cmd.OutOrStdout(), report, output, scales); err != nil {
				return err
			}
			if !report.Empty() {
				return ErrDifferencesFound
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file1, "file1", "", "first file path (required)")
	_ = cmd.MarkFlagRequired("file1")
	cmd.Flags().StringVar(&format1, "format1", "", "first file format: csv, txt, or bin (detected when omitted)")
	cmd.Flags().StringVar(&file2, "file2", "", "second file path (required)")
	_ = cmd.MarkFlagRequired("file2")
	cmd.Flags().StringVar(&format2, "format2", "", "second file format: csv, txt, or bin (detected when omitted)")
	cmd.Flags().StringVar(&currencies, "currencies", "", "YAML file overriding currency minor-unit scales")
	cmd.Flags().StringVar(&output, "output", "text", "report style: text or yaml")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug diagnostics to stderr")

	return cmd
}
