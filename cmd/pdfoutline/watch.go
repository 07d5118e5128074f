package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfoutline/internal/pipeline"
)

var (
	watchInput  string
	watchOutput string
	watchFormat string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract outlines as PDFs land in a directory",
	Long: `Watch the input directory and extract each PDF that is created or
rewritten there. Files already present are processed first. Runs until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format, err := outputFormat(watchFormat)
		if err != nil {
			return err
		}
		in, out := cfg.InputDir, cfg.OutputDir
		if watchInput != "" {
			in = watchInput
		}
		if watchOutput != "" {
			out = watchOutput
		}

		orch := pipeline.NewOrchestrator(cfg, logger)
		orch.Start(ctx)
		defer orch.Stop()

		if _, err := orch.RunBatch(ctx, in, out, format); err != nil {
			return err
		}

		return orch.Watch(ctx, in, out, format, cfg.WatchDebounce, func(job *pipeline.Job) {
			logger.Debug("document queued", "job_id", job.ID, "filename", job.Filename)
		})
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "", "input directory (default from config)")
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "output directory (default from config)")
	watchCmd.Flags().StringVar(&watchFormat, "format", "", "output format: json, yaml, markdown, html")
}
