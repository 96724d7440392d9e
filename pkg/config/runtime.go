package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"finstat/pkg/core/benchmark"
	"finstat/pkg/core/pipeline"
	"finstat/pkg/core/store"
)

// Runtime is a pipeline wired to its optional storage.
type Runtime struct {
	Pipeline *pipeline.Pipeline
	Catalog  *benchmark.Catalog
	// DB is nil when no database is configured.
	DB *sql.DB
}

// Open builds the pipeline. With a database URL the industry reference,
// analysis store and statement cache are backed by PostgreSQL; otherwise
// the catalog serves benchmarks and the cache lives under CacheDir.
func (c Config) Open(ctx context.Context, log *slog.Logger) (*Runtime, error) {
	catalog, err := c.Industries()
	if err != nil {
		return nil, fmt.Errorf("load industry catalog: %w", err)
	}
	rt := &Runtime{Catalog: catalog}

	var industries benchmark.Source = catalog
	if c.DatabaseURL != "" {
		db, err := store.Connect(ctx, c.DatabaseURL, store.DefaultOptions())
		if err != nil {
			return nil, err
		}
		rt.DB = db
		industries = store.NewIndustryRepo(db)
	}

	rt.Pipeline = pipeline.New(c.Pipeline(industries, log), log)
	if rt.DB != nil {
		rt.Pipeline.SetRepository(store.NewAnalysisRepo(rt.DB))
	}
	if rt.DB != nil || c.CacheDir != "" {
		cache, err := store.NewStatementCache(rt.DB, c.CacheDir)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Pipeline.SetCache(cache)
	}
	return rt, nil
}

// Close releases the database connection, if any.
func (r *Runtime) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
