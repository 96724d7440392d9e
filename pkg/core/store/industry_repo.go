package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"finstat/pkg/core/benchmark"
)

// IndustryRepo serves industry reference data from the database. It
// implements benchmark.Source.
type IndustryRepo struct {
	DB *sql.DB
}

func NewIndustryRepo(db *sql.DB) *IndustryRepo {
	return &IndustryRepo{DB: db}
}

// Industry loads the reference values of one industry. An unknown code
// yields an error wrapping benchmark.ErrIndustryNotFound.
func (r *IndustryRepo) Industry(ctx context.Context, code string) (*benchmark.IndustryData, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("database not configured")
	}

	d := &benchmark.IndustryData{Code: code, Metrics: map[string]benchmark.Reference{}}
	err := r.DB.QueryRowContext(ctx, `SELECT name, year FROM industries WHERE code = $1`, code).Scan(&d.Name, &d.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", benchmark.ErrIndustryNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("load industry %s: %w", code, err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT metric, average, top_quartile FROM industry_metrics WHERE industry_code = $1`, code)
	if err != nil {
		return nil, fmt.Errorf("load industry metrics %s: %w", code, err)
	}
	defer rows.Close()
	for rows.Next() {
		var metric string
		var ref benchmark.Reference
		if err := rows.Scan(&metric, &ref.Average, &ref.TopQuartile); err != nil {
			return nil, fmt.Errorf("scan industry metric: %w", err)
		}
		d.Metrics[metric] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load industry metrics %s: %w", code, err)
	}
	return d, nil
}

// Seed upserts every industry in one transaction. Metrics absent from an
// entry are removed from the table.
func (r *IndustryRepo) Seed(ctx context.Context, industries []*benchmark.IndustryData) error {
	if r.DB == nil {
		return fmt.Errorf("database not configured")
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range industries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO industries (code, name, year, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (code)
			DO UPDATE SET name = EXCLUDED.name, year = EXCLUDED.year, updated_at = NOW()`,
			d.Code, d.Name, d.Year); err != nil {
			return fmt.Errorf("seed industry %s: %w", d.Code, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM industry_metrics WHERE industry_code = $1`, d.Code); err != nil {
			return fmt.Errorf("seed industry %s: %w", d.Code, err)
		}

		keys := make([]string, 0, len(d.Metrics))
		for k := range d.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ref := d.Metrics[k]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO industry_metrics (industry_code, metric, average, top_quartile)
				VALUES ($1, $2, $3, $4)`,
				d.Code, k, ref.Average, ref.TopQuartile); err != nil {
				return fmt.Errorf("seed metric %s/%s: %w", d.Code, k, err)
			}
		}
	}
	return tx.Commit()
}
