package config

import (
	"os"
	"path/filepath"
	"testing"

	n "finstat/pkg/core/normalize"
	"finstat/pkg/core/pipeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxDocumentBytes != pipeline.DefaultMaxDocumentBytes {
		t.Errorf("ceiling = %d, want %d", cfg.MaxDocumentBytes, pipeline.DefaultMaxDocumentBytes)
	}
	if cfg.Tolerance.Pct != 1 || cfg.Tolerance.Abs != 1 {
		t.Errorf("unexpected default tolerance %+v", cfg.Tolerance)
	}
	if cfg.Thresholds.Ratio != 30 || cfg.Thresholds.Growth != 50 {
		t.Errorf("unexpected default thresholds %+v", cfg.Thresholds)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "finstat.yaml", `
max_document_bytes: 1048576
csv_delimiter: ";"
default_unit: thousand_yen
tolerance:
  pct: 0.5
  abs: 1000
anomaly_thresholds:
  ratio: 20
  growth: 40
benchmark_weights:
  roe: 2
  debt_ratio: 0
workers: 8
`)
	envFile := writeFile(t, "test.env", "FINSTAT_THRESHOLD_GROWTH=75\n")
	t.Setenv("FINSTAT_WORKERS", "2")
	t.Setenv("FINSTAT_DATABASE_URL", "postgres://localhost/finstat")

	cfg, err := Load(path, envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FINSTAT_THRESHOLD_GROWTH") })

	if cfg.MaxDocumentBytes != 1<<20 {
		t.Errorf("ceiling = %d", cfg.MaxDocumentBytes)
	}
	if cfg.DefaultUnit != n.UnitThousandYen {
		t.Errorf("unit = %s", cfg.DefaultUnit)
	}
	if cfg.Tolerance.Pct != 0.5 || cfg.Tolerance.Abs != 1000 {
		t.Errorf("tolerance = %+v", cfg.Tolerance)
	}
	if cfg.Thresholds.Ratio != 20 || cfg.Thresholds.Growth != 75 {
		t.Errorf(".env should override the file: %+v", cfg.Thresholds)
	}
	if cfg.Workers != 2 {
		t.Errorf("environment should override the file: workers = %d", cfg.Workers)
	}
	if cfg.Weights["roe"] != 2 {
		t.Errorf("weights = %v", cfg.Weights)
	}
	if cfg.DatabaseURL != "postgres://localhost/finstat" {
		t.Errorf("database url = %q", cfg.DatabaseURL)
	}

	pc := cfg.Pipeline(nil, nil)
	if pc.Extract.CSVDelimiter != ';' {
		t.Errorf("delimiter = %q", pc.Extract.CSVDelimiter)
	}
	if pc.Statement.DefaultUnit != n.UnitThousandYen || pc.Analysis.Workers != 2 {
		t.Errorf("pipeline config not wired: %+v", pc)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"negative ceiling", "max_document_bytes: -1\n", nil},
		{"zero threshold", "anomaly_thresholds: {ratio: 0, growth: 50}\n", nil},
		{"long delimiter", "csv_delimiter: ';;'\n", nil},
		{"unknown unit", "default_unit: dollars\n", nil},
		{"bad env number", "", map[string]string{"FINSTAT_PORT": "eighty"}},
		{"malformed yaml", "tolerance: [\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "c.yaml", tt.yaml)
			if _, err := Load(path, filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestIndustries(t *testing.T) {
	cat, err := Default().Industries()
	if err != nil {
		t.Fatalf("Industries: %v", err)
	}
	if len(cat.All()) == 0 {
		t.Error("embedded catalog is empty")
	}

	if _, err := (Config{IndustryData: "/does/not/exist.hjson"}).Industries(); err == nil {
		t.Error("missing catalog file must fail")
	}
}
