package benchmark

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	hjson "github.com/hjson/hjson-go/v4"

	"finstat/pkg/core/normalize"
)

// Reference is the industry average and top-quartile value of one metric.
type Reference struct {
	Average     float64 `json:"average"`
	TopQuartile float64 `json:"top_quartile"`
}

// IndustryData holds the reference values of one industry, keyed by metric
// key (see calc.MetricKeys).
type IndustryData struct {
	Code    string               `json:"code"`
	Name    string               `json:"name"`
	Year    int                  `json:"year,omitempty"`
	Metrics map[string]Reference `json:"metrics"`
}

// Averages returns metric key → industry average, the peer baseline for
// anomaly detection.
func (d *IndustryData) Averages() map[string]float64 {
	out := make(map[string]float64, len(d.Metrics))
	for k, ref := range d.Metrics {
		out[k] = ref.Average
	}
	return out
}

// ErrIndustryNotFound is returned by a Source with no data for a code.
var ErrIndustryNotFound = errors.New("industry reference data not found")

// Source looks up industry reference data by industry code.
type Source interface {
	Industry(ctx context.Context, code string) (*IndustryData, error)
}

// =============================================================================
// HJSON CATALOG
// =============================================================================

//go:embed data/industries.hjson
var defaultIndustries []byte

type catalogFile struct {
	Year       int            `json:"year"`
	Industries []IndustryData `json:"industries"`
}

// Catalog is an in-memory Source loaded from an Hjson document.
type Catalog struct {
	byCode map[string]*IndustryData
}

// ParseCatalog reads an Hjson document of the form
//
//	{ industries: [ { code: "3650", name: 電気機器, metrics: { roe: { average: 8, top_quartile: 12 } } } ] }
//
// Industry names default to the code table when omitted.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := hjson.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse industry data: %w", err)
	}
	c := &Catalog{byCode: make(map[string]*IndustryData, len(f.Industries))}
	for i := range f.Industries {
		d := f.Industries[i]
		if d.Code == "" {
			return nil, fmt.Errorf("parse industry data: entry %d has no code", i)
		}
		if d.Name == "" {
			d.Name = normalize.IndustryName(d.Code)
		}
		if d.Year == 0 {
			d.Year = f.Year
		}
		for key, ref := range d.Metrics {
			if ref.TopQuartile == 0 {
				ref.TopQuartile = ref.Average
				d.Metrics[key] = ref
			}
		}
		c.byCode[d.Code] = &d
	}
	return c, nil
}

// LoadCatalog reads an Hjson catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read industry data: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the reference data bundled with the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultIndustries)
	if err != nil {
		panic(err)
	}
	return c
}

// Industry implements Source.
func (c *Catalog) Industry(_ context.Context, code string) (*IndustryData, error) {
	if d, ok := c.byCode[code]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrIndustryNotFound, code)
}

// All returns every industry ordered by code.
func (c *Catalog) All() []*IndustryData {
	out := make([]*IndustryData, 0, len(c.byCode))
	for _, d := range c.byCode {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
