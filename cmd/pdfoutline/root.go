package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/render"
	"github.com/dgallion1/pdfoutline/internal/version"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdfoutline",
	Short: "Extract a title and H1-H3 outline from PDF documents",
	Long: `pdfoutline reads PDF documents and emits their title and heading
outline (H1, H2, H3 with page numbers) as JSON, YAML, Markdown or HTML.

Headings are inferred from font size, weight, position and numbering.
Markdown, HTML and DOCX inputs are read from their explicit heading markup.

Configuration is read from ./pdfoutline.yaml, ~/.pdfoutline/pdfoutline.yaml
or the file named by --config. PDFOUTLINE_<KEY> environment variables
override file values.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if logFormat != "" {
			loaded.LogFormat = logFormat
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		logger = newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./pdfoutline.yaml or ~/.pdfoutline/pdfoutline.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or text")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// outputFormat resolves a --format flag, falling back to the configured one.
func outputFormat(flag string) (render.Format, error) {
	if flag == "" {
		flag = cfg.Format
	}
	return render.ParseFormat(flag)
}
