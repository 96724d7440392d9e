package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/statement"
)

// AnalysisRepo stores each analysis together with the statement it was
// computed from, as JSONB.
type AnalysisRepo struct {
	DB *sql.DB
}

// NewAnalysisRepo creates a new repository instance.
func NewAnalysisRepo(db *sql.DB) *AnalysisRepo {
	return &AnalysisRepo{DB: db}
}

// StoredAnalysis is one saved row.
type StoredAnalysis struct {
	ID        string                     `json:"id"`
	Statement *statement.ParsedStatement `json:"statement"`
	Result    *analysis.AnalysisResult   `json:"result"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// SaveAnalysis upserts the analysis under id.
func (r *AnalysisRepo) SaveAnalysis(ctx context.Context, id string, stmt *statement.ParsedStatement, res *analysis.AnalysisResult) error {
	if r.DB == nil {
		return fmt.Errorf("database not configured")
	}
	if id == "" {
		return fmt.Errorf("save analysis: empty id")
	}

	stmtJSON, err := json.Marshal(stmt)
	if err != nil {
		return fmt.Errorf("failed to marshal statement: %w", err)
	}
	resJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	const query = `
		INSERT INTO statement_analyses (
			id, company_name, industry_code, period_start, period_end,
			quality_score, statement_json, result_json, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			company_name = EXCLUDED.company_name,
			industry_code = EXCLUDED.industry_code,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			quality_score = EXCLUDED.quality_score,
			statement_json = EXCLUDED.statement_json,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at`

	_, err = r.DB.ExecContext(ctx, query,
		id, res.Company.Name, res.Company.IndustryCode,
		nullTime(res.Period.Start), nullTime(res.Period.End),
		res.QualityScore, stmtJSON, resJSON, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Load retrieves a saved analysis; ErrNotFound when id is unknown.
func (r *AnalysisRepo) Load(ctx context.Context, id string) (*StoredAnalysis, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("database not configured")
	}

	var stmtJSON, resJSON []byte
	out := &StoredAnalysis{ID: id}
	err := r.DB.QueryRowContext(ctx,
		`SELECT statement_json, result_json, updated_at FROM statement_analyses WHERE id = $1`, id,
	).Scan(&stmtJSON, &resJSON, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: analysis %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	if err := json.Unmarshal(stmtJSON, &out.Statement); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}
	if err := json.Unmarshal(resJSON, &out.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return out, nil
}

// ListByCompany returns the ids of a company's analyses, latest period
// first.
func (r *AnalysisRepo) ListByCompany(ctx context.Context, company string) ([]string, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("database not configured")
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id FROM statement_analyses WHERE company_name = $1 ORDER BY period_end DESC NULLS LAST, id`, company)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
