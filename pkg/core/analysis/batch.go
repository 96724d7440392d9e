package analysis

import (
	"context"
	"fmt"
	"time"

	"finstat/pkg/core/statement"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch analyzes every item on a bounded pool of workers. The result
// has one slot per item in input order; a failing or panicking item fills
// its own slot with an error and never affects its siblings. Items not yet
// started when ctx is cancelled get the context error.
func AnalyzeBatch(ctx context.Context, items []BatchItem, opts Options) []BatchResult {
	runID := uuid.NewString()
	log := opts.logger().With("run_id", runID)
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]BatchResult, len(items))
	var g errgroup.Group
	g.SetLimit(workers)

	for i := range items {
		i := i
		results[i] = BatchResult{Index: i, ID: items[i].ID}
		g.Go(func() error {
			res, err := analyzeItem(ctx, items[i], opts)
			slot := &results[i]
			if err != nil {
				slot.Err = err
				slot.Error = err.Error()
				log.Warn("batch item failed", "index", i, "id", items[i].ID, "error", err)
				return nil
			}
			slot.Result = res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("batch analyzed", "items", len(items), "failed", failed, "workers", workers, "elapsed", time.Since(start))
	return results
}

func analyzeItem(ctx context.Context, item BatchItem, opts Options) (res *AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	if item.Err != nil {
		return nil, item.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	industry := item.Industry
	if industry == nil {
		industry, err = resolveIndustry(ctx, opts.Industries, item.Statement)
		if err != nil {
			opts.logger().Warn("industry lookup failed", "id", item.ID, "error", err)
		}
	}
	res, err = AnalyzeFinancialData(item.Statement, item.Previous, industry, opts)
	if err != nil || len(item.Warnings) == 0 {
		return res, err
	}
	// res.Warnings shares its array with the statement's.
	res.Warnings = append(append([]statement.Warning{}, res.Warnings...), item.Warnings...)
	return res, nil
}
