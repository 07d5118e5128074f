package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfoutline/internal/pipeline"
)

var (
	batchInput  string
	batchOutput string
	batchFormat string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract outlines for every PDF in a directory",
	Long: `Process every .pdf file directly inside the input directory and write
one outline file per document into the output directory. A document that
cannot be read is logged and skipped; the rest of the batch continues.

Examples:
  pdfoutline batch
  pdfoutline batch --input ./pdfs --output ./outlines --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(batchFormat)
		if err != nil {
			return err
		}
		in, out := cfg.InputDir, cfg.OutputDir
		if batchInput != "" {
			in = batchInput
		}
		if batchOutput != "" {
			out = batchOutput
		}

		orch := pipeline.NewOrchestrator(cfg, logger)
		orch.Start(cmd.Context())
		defer orch.Stop()

		sum, err := orch.RunBatch(cmd.Context(), in, out, format)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, f := range sum.Files {
			switch {
			case f.Error != "":
				fmt.Fprintf(w, "%-9s %s: %s\n", f.Status, f.Input, f.Error)
			default:
				fmt.Fprintf(w, "%-9s %s -> %s\n", f.Status, f.Input, f.Output)
			}
		}
		fmt.Fprintf(w, "%d completed, %d failed, %d rejected in %s\n",
			sum.Completed, sum.Failed, sum.Rejected, sum.Elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "input directory (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output directory (default from config)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "output format: json, yaml, markdown, html")
}
