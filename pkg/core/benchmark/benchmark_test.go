package benchmark

import (
	"context"
	"errors"
	"testing"

	"finstat/pkg/core/calc"
)

func TestBenchmarkMetric_Bands(t *testing.T) {
	tests := []struct {
		value float64
		want  Rating
	}{
		{15, RatingTop},
		{12, RatingTop},
		{11.9, RatingAboveAverage},
		{10, RatingAboveAverage},
		{8, RatingAverage},
		{7.99, RatingBelowAverage},
		{5, RatingBelowAverage},
		{4.99, RatingBottom},
		{-3, RatingBottom},
	}
	for _, tt := range tests {
		got := BenchmarkMetric(tt.value, 10, 12)
		if got.Rating != tt.want {
			t.Errorf("BenchmarkMetric(%v, 10, 12) = %s, want %s", tt.value, got.Rating, tt.want)
		}
		if got.DeltaFromAverage != tt.value-10 {
			t.Errorf("delta for %v = %v", tt.value, got.DeltaFromAverage)
		}
	}
}

func TestBenchmarkLowerIsBetter_Bands(t *testing.T) {
	tests := []struct {
		value float64
		want  Rating
	}{
		{30, RatingTop},
		{45, RatingTop},
		{80, RatingAboveAverage},
		{100, RatingAverage},
		{160, RatingBelowAverage},
		{161, RatingBottom},
	}
	for _, tt := range tests {
		got := BenchmarkLowerIsBetter(tt.value, 80, 45)
		if got.Rating != tt.want {
			t.Errorf("BenchmarkLowerIsBetter(%v, 80, 45) = %s, want %s", tt.value, got.Rating, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Metric: "a", Rating: RatingTop},
		{Metric: "b", Rating: RatingBottom},
		{Metric: "c", Rating: RatingAverage},
	}

	s := Summarize(results, nil)
	if s.Score == nil || *s.Score != 3 {
		t.Fatalf("equal weights: score = %v, want 3", s.Score)
	}
	if s.Rating != RatingAverage || s.Rated != 3 {
		t.Errorf("unexpected summary %+v", s)
	}

	s = Summarize(results, map[string]float64{"a": 3, "c": 0})
	if s.Score == nil || *s.Score != 4 {
		t.Fatalf("weighted: score = %v, want 4", s.Score)
	}
	if s.Rated != 2 || s.Ratings[RatingAverage] != 0 {
		t.Errorf("zero weight should drop the metric: %+v", s)
	}

	if s := Summarize(nil, nil); s.Score != nil || s.Rating != "" {
		t.Errorf("empty summary should have no score: %+v", s)
	}
}

func TestParseCatalogAndCompare(t *testing.T) {
	c, err := LoadCatalog("testdata/industries.hjson")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	ind, err := c.Industry(context.Background(), "3650")
	if err != nil {
		t.Fatalf("Industry: %v", err)
	}
	if ind.Name != "電気機器" || ind.Year != 2023 {
		t.Errorf("defaults not applied: %+v", ind)
	}
	if ind.Metrics[calc.MetricEquityRatio].TopQuartile != 50 {
		t.Errorf("missing top quartile should default to the average")
	}

	other, _ := c.Industry(context.Background(), "9050")
	if other.Year != 2024 || other.Name != "サービス業" {
		t.Errorf("explicit fields overwritten: %+v", other)
	}

	if _, err := c.Industry(context.Background(), "0000"); !errors.Is(err, ErrIndustryNotFound) {
		t.Errorf("expected ErrIndustryNotFound, got %v", err)
	}

	rep := Compare(map[string]float64{
		calc.MetricROE:             13,
		calc.MetricOperatingMargin: 4,
		calc.MetricDebtRatio:       60,
		calc.MetricCurrentRatio:    150,
		calc.MetricQuickRatio:      120,
	}, ind, nil)

	if len(rep.Results) != 3 {
		t.Fatalf("expected 3 rated metrics, got %+v", rep.Results)
	}
	want := map[string]Rating{
		calc.MetricROE:             RatingTop,
		calc.MetricOperatingMargin: RatingBottom,
		calc.MetricDebtRatio:       RatingAboveAverage,
	}
	for _, r := range rep.Results {
		if r.Rating != want[r.Metric] {
			t.Errorf("%s rated %s, want %s", r.Metric, r.Rating, want[r.Metric])
		}
	}
	if len(rep.Unrated) != 2 {
		t.Errorf("zero-average and missing references should be unrated: %v", rep.Unrated)
	}
	if rep.Summary.Rated != 3 {
		t.Errorf("summary rated %d", rep.Summary.Rated)
	}
}

func TestCompare_NilIndustry(t *testing.T) {
	if rep := Compare(map[string]float64{calc.MetricROE: 1}, nil, nil); rep != nil {
		t.Errorf("expected nil report, got %+v", rep)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	all := c.All()
	if len(all) == 0 {
		t.Fatal("bundled catalog is empty")
	}
	for _, d := range all {
		for _, key := range calc.MetricKeys {
			if _, ok := d.Metrics[key]; !ok {
				t.Errorf("industry %s lacks %s", d.Code, key)
			}
		}
	}
}
