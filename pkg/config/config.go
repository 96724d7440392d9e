// Package config loads finstat settings from a YAML file, a .env file and
// FINSTAT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/anomaly"
	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/extract"
	n "finstat/pkg/core/normalize"
	"finstat/pkg/core/pipeline"
	"finstat/pkg/core/statement"
	"finstat/pkg/core/validate"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FINSTAT_"

// Config is the complete runtime configuration.
type Config struct {
	MaxDocumentBytes int64              `yaml:"max_document_bytes"`
	CSVDelimiter     string             `yaml:"csv_delimiter"`
	PDFGapFactor     float64            `yaml:"pdf_gap_factor"`
	DefaultUnit      n.Unit             `yaml:"default_unit"`
	Tolerance        validate.Tolerance `yaml:"tolerance"`
	Thresholds       anomaly.Thresholds `yaml:"anomaly_thresholds"`
	Weights          map[string]float64 `yaml:"benchmark_weights"`
	Workers          int                `yaml:"workers"`
	IndustryData     string             `yaml:"industry_data"`
	DatabaseURL      string             `yaml:"database_url"`
	CacheDir         string             `yaml:"cache_dir"`
	Port             int                `yaml:"port"`
	LogLevel         string             `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxDocumentBytes: pipeline.DefaultMaxDocumentBytes,
		DefaultUnit:      n.UnitYen,
		Tolerance:        validate.DefaultTolerance,
		Thresholds:       anomaly.DefaultThresholds,
		Workers:          analysis.DefaultWorkers,
		Port:             8080,
		LogLevel:         "info",
	}
}

// Load reads path (optional when empty) over the defaults, loads envFiles
// (".env" when none is given; missing files are skipped) and applies the
// environment overrides.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, set func(float64)) error {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		set(f)
		return nil
	}

	str("CSV_DELIMITER", &c.CSVDelimiter)
	str("INDUSTRY_DATA", &c.IndustryData)
	str("CACHE_DIR", &c.CacheDir)
	str("LOG_LEVEL", &c.LogLevel)
	unit := string(c.DefaultUnit)
	str("DEFAULT_UNIT", &unit)
	c.DefaultUnit = n.Unit(unit)

	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	str("DATABASE_URL", &c.DatabaseURL)

	for _, e := range []struct {
		key string
		set func(float64)
	}{
		{"MAX_DOCUMENT_BYTES", func(f float64) { c.MaxDocumentBytes = int64(f) }},
		{"PDF_GAP_FACTOR", func(f float64) { c.PDFGapFactor = f }},
		{"TOLERANCE_PCT", func(f float64) { c.Tolerance.Pct = f }},
		{"TOLERANCE_ABS", func(f float64) { c.Tolerance.Abs = f }},
		{"THRESHOLD_RATIO", func(f float64) { c.Thresholds.Ratio = f }},
		{"THRESHOLD_GROWTH", func(f float64) { c.Thresholds.Growth = f }},
		{"WORKERS", func(f float64) { c.Workers = int(f) }},
		{"PORT", func(f float64) { c.Port = int(f) }},
	} {
		if err := num(e.key, e.set); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDocumentBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_document_bytes must be positive"))
	}
	if c.Tolerance.Pct < 0 || c.Tolerance.Abs < 0 {
		errs = append(errs, fmt.Errorf("tolerance must not be negative"))
	}
	if c.Thresholds.Ratio <= 0 || c.Thresholds.Growth <= 0 {
		errs = append(errs, fmt.Errorf("anomaly thresholds must be positive"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative"))
	}
	if utf8.RuneCountInString(c.CSVDelimiter) > 1 {
		errs = append(errs, fmt.Errorf("csv_delimiter must be a single character"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.DefaultUnit {
	case n.UnitYen, n.UnitThousandYen, n.UnitMillionYen, n.UnitHundredMillionYen:
	default:
		errs = append(errs, fmt.Errorf("unknown default_unit %q", c.DefaultUnit))
	}
	return errors.Join(errs...)
}

// =============================================================================
// COMPONENT WIRING
// =============================================================================

// Industries loads the reference catalog from IndustryData, or the embedded
// catalog when unset.
func (c Config) Industries() (*benchmark.Catalog, error) {
	if c.IndustryData == "" {
		return benchmark.DefaultCatalog(), nil
	}
	return benchmark.LoadCatalog(c.IndustryData)
}

// Pipeline converts the settings into pipeline stage options. industries
// may be nil.
func (c Config) Pipeline(industries benchmark.Source, log *slog.Logger) pipeline.Config {
	var delim rune
	if c.CSVDelimiter != "" {
		delim, _ = utf8.DecodeRuneInString(c.CSVDelimiter)
	}
	return pipeline.Config{
		MaxDocumentBytes: c.MaxDocumentBytes,
		Extract: extract.Options{
			CSVDelimiter: delim,
			PDFGapFactor: c.PDFGapFactor,
		},
		Statement: statement.Options{
			Tolerance:   c.Tolerance,
			DefaultUnit: c.DefaultUnit,
		},
		Analysis: analysis.Options{
			Thresholds: c.Thresholds,
			Weights:    c.Weights,
			Industries: industries,
			Workers:    c.Workers,
			Logger:     log,
		},
	}
}

// Logger builds a text logger at LogLevel writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
