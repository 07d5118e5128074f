package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/dgallion1/pdfoutline/internal/render"
)

var (
	extractOut    string
	extractFormat string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the outline of a single document",
	Long: `Extract the outline of one document and print it.

Examples:
  pdfoutline extract report.pdf
  pdfoutline extract report.pdf --format markdown
  pdfoutline extract report.pdf -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := outputFormat(extractFormat)
		if err != nil {
			return err
		}

		p, err := parser.ForFile(path, pipeline.ParserOptions(cfg, logger))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		o, err := p.Parse(cmd.Context(), f, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("extract %s: %w", path, err)
		}
		data, err := render.Render(o, format)
		if err != nil {
			return err
		}
		if format == render.FormatJSON && cfg.ValidateOutput {
			if err := render.Validate(data); err != nil {
				return err
			}
		}

		if extractOut == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(extractOut, data, 0o644); err != nil {
			return err
		}
		logger.Info("outline written", "input", path, "output", extractOut, "headings", len(o.Headings))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "write to this file instead of stdout")
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "output format: json, yaml, markdown, html")
}
