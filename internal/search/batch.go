package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/orizon-prover/internal/term"
)

// Result is the outcome of one goal in a batch: a proof, or Ok=false when
// the search exhausted its depth budget.
type Result struct {
	Proof *term.Expr
	Ok    bool
}

// ProveAll searches the goals concurrently. Each goal gets its own engine,
// sequent state, and scratch pool; no search state is shared. The first
// fatal internalization error cancels the remaining goals; depth exhaustion
// is reported per goal, not as an error.
func ProveAll(ctx context.Context, cfg Config, norm Normalizer, goals []Goal, opts ...Option) ([]Result, error) {
	results := make([]Result, len(goals))
	g, ctx := errgroup.WithContext(ctx)
	for i, goal := range goals {
		i, goal := i, goal
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			eng := New(cfg, norm, opts...)
			proof, ok, err := eng.Prove(goal)
			if err != nil {
				return err
			}
			results[i] = Result{Proof: proof, Ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
