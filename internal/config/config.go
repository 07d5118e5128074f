package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Batch driver
	InputDir  string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Format    string `mapstructure:"format" yaml:"format"`

	// Worker pool
	WorkerCount  int `mapstructure:"workers" yaml:"workers"`
	MaxQueueSize int `mapstructure:"max_queue_size" yaml:"max_queue_size"`

	// Limits
	MaxPages       int   `mapstructure:"max_pages" yaml:"max_pages"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Outline
	MaxHeadings    int    `mapstructure:"max_headings" yaml:"max_headings"`
	LevelPolicy    string `mapstructure:"level_policy" yaml:"level_policy"`
	ValidateOutput bool   `mapstructure:"validate_output" yaml:"validate_output"`

	// HTTP
	Port   string `mapstructure:"port" yaml:"port"`
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Job state
	JobTTL        time.Duration `mapstructure:"job_ttl" yaml:"job_ttl"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`

	// Logging
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		InputDir:       "/app/input",
		OutputDir:      "/app/output",
		Format:         "json",
		WorkerCount:    4,
		MaxQueueSize:   100,
		MaxPages:       50,
		MaxUploadBytes: 52428800, // 50MB
		MaxHeadings:    50,
		LevelPolicy:    "permit",
		ValidateOutput: true,
		Port:           "8090",
		JobTTL:         1 * time.Hour,
		WatchDebounce:  500 * time.Millisecond,
		LogFormat:      "json",
		LogLevel:       "info",
	}
}

// Load reads defaults, an optional YAML file, and PDFOUTLINE_* environment
// variables, in increasing precedence. INPUT_DIR and OUTPUT_DIR are honored
// without the prefix. cfgFile may be empty.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("format", d.Format)
	v.SetDefault("workers", d.WorkerCount)
	v.SetDefault("max_queue_size", d.MaxQueueSize)
	v.SetDefault("max_pages", d.MaxPages)
	v.SetDefault("max_upload_bytes", d.MaxUploadBytes)
	v.SetDefault("max_headings", d.MaxHeadings)
	v.SetDefault("level_policy", d.LevelPolicy)
	v.SetDefault("validate_output", d.ValidateOutput)
	v.SetDefault("port", d.Port)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("job_ttl", d.JobTTL)
	v.SetDefault("watch_debounce", d.WatchDebounce)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix("PDFOUTLINE")
	v.AutomaticEnv()
	_ = v.BindEnv("input_dir", "PDFOUTLINE_INPUT_DIR", "INPUT_DIR")
	_ = v.BindEnv("output_dir", "PDFOUTLINE_OUTPUT_DIR", "OUTPUT_DIR")
	_ = v.BindEnv("port", "PDFOUTLINE_PORT", "PORT")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdfoutline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pdfoutline")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	d := Default()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.MaxHeadings <= 0 {
		c.MaxHeadings = d.MaxHeadings
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = d.WatchDebounce
	}
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case "", "json", "yaml", "yml", "markdown", "md", "html", "htm":
	default:
		return fmt.Errorf("format %q is not one of json, yaml, markdown, html", c.Format)
	}
	switch strings.ToLower(c.LevelPolicy) {
	case "", "permit", "reparent":
	default:
		return fmt.Errorf("level_policy %q is not one of permit, reparent", c.LevelPolicy)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log_format %q is not one of json, text", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.InputDir != "" && c.InputDir == c.OutputDir {
		return fmt.Errorf("input_dir and output_dir must differ")
	}
	return nil
}

// WriteDefault writes the default configuration to path as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# pdfoutline configuration\n# Environment variables PDFOUTLINE_<KEY> override these values.\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
