package cpm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/ctxlog"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

// BatchResult is the outcome of scheduling one program in a batch. Exactly
// one of Schedule and Err is set.
type BatchResult struct {
	Program  string
	Schedule *Schedule
	Err      error
}

// CalculateAll schedules every program on its own Engine, at most
// maxParallel at a time (unbounded when maxParallel <= 0). Invalid or cyclic
// programs record their error in the matching BatchResult and do not stop
// the batch. Results are in input order. Cancelling ctx stops dispatching
// further programs and is returned as an error.
func CalculateAll(ctx context.Context, programs []*network.Program, maxParallel int) ([]BatchResult, error) {
	logger := ctxlog.FromContext(ctx)
	results := make([]BatchResult, len(programs))

	g, gctx := errgroup.WithContext(ctx)
	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}

	for i, p := range programs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eng := NewEngine(WithLogger(logger.With("program", p.Name)))
			if _, err := eng.CalculateProgram(p); err != nil {
				logger.Debug("program failed", "program", p.Name, "error", err)
				results[i] = BatchResult{Program: p.Name, Err: err}
				return nil
			}
			results[i] = BatchResult{Program: p.Name, Schedule: eng.Schedule()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch cancelled: %w", err)
	}
	return results, nil
}
