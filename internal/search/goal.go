// Package search implements the proof-search engine: goal internalization,
// the action loop with choice-point backtracking, outer iterative deepening,
// and extraction of the found proof back into the external representation.
package search

import "github.com/orizon-lang/orizon-prover/internal/term"

// Goal is an external proof obligation: a context of external local
// constants and a target type. The context is assumed well-formed by the
// host framework's type checker; the engine only re-derives scoping within
// its own state.
type Goal struct {
	Hyps   []*term.Expr // external locals, dependency order
	Target *term.Expr
}

// Normalizer is the one collaborator surface toward the external type
// checker: normalize a type unfolding reducible definitions only, keeping
// the result close to the surface form.
type Normalizer interface {
	Normalize(e *term.Expr) (*term.Expr, error)
}

// NopNormalizer is a Normalizer for inputs that are already normal.
type NopNormalizer struct{}

// Normalize returns e unchanged.
func (NopNormalizer) Normalize(e *term.Expr) (*term.Expr, error) { return e, nil }
