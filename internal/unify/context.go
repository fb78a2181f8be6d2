// Package unify implements the unification substrate of the proof search:
// the abstract type-context capability contract that search actions and
// helper algorithms (application building, congruence synthesis) unify
// against, with exactly two implementations: one backed by the sequent
// state, one scratch-backed for short-lived helper calls.
package unify

import (
	"github.com/orizon-lang/orizon-prover/internal/term"
)

// Context is the capability contract toward the unification substrate.
// Implementations are transactional: every Push must be balanced by exactly
// one Pop (restore) or Commit (keep), strictly stack-ordered.
type Context interface {
	// IsUvar reports whether l is a universe variable of this context.
	IsUvar(l *term.Level) bool
	// IsMvar reports whether e is a term metavariable of this context.
	IsMvar(e *term.Expr) bool

	// LevelAssignment returns the assignment of a universe variable.
	LevelAssignment(l *term.Level) (*term.Level, bool)
	// ExprAssignment returns the assignment of a term metavariable.
	ExprAssignment(e *term.Expr) (*term.Expr, bool)
	// AssignLevel records a universe assignment unconditionally.
	AssignLevel(l, v *term.Level)
	// AssignExpr records a term assignment unconditionally. Callers run
	// ValidateAssignment first.
	AssignExpr(m, v *term.Expr)

	// ValidateAssignment runs the occurs and scope checks required before
	// assigning v to m: v must be closed, and locals lists the external
	// local constants allowed to occur in v. Restricting the context of other metavariables found
	// in v is a side effect of validation. A false result means the caller
	// must abandon the assignment attempt without mutating state.
	ValidateAssignment(m *term.Expr, locals []*term.Expr, v *term.Expr) bool

	// InferLocal returns the type of a local: hypothesis references are
	// looked up in the sequent state, external locals carry their type.
	InferLocal(e *term.Expr) (*term.Expr, error)
	// InferMetavar returns the declared type of a metavariable.
	InferMetavar(e *term.Expr) (*term.Expr, error)

	// MkUvar allocates a fresh universe variable.
	MkUvar() *term.Level
	// MkMvar allocates a fresh term metavariable of the given type.
	MkMvar(typ *term.Expr) *term.Expr

	// IsExtraOpaque reports that a name must never be delta-unfolded during
	// unification: non-reducible definitions and structure projections
	// (projections get dedicated reduction rules elsewhere).
	IsExtraOpaque(name string) bool

	Push()
	Pop()
	Commit()
}

// Environment carries the opacity information shared by all contexts of one
// search: names marked non-reducible and structure projections.
type Environment struct {
	NotReducible map[string]bool
	Projections  map[string]bool
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		NotReducible: make(map[string]bool),
		Projections:  make(map[string]bool),
	}
}

// IsExtraOpaque reports whether the name is non-reducible or a projection.
func (env *Environment) IsExtraOpaque(name string) bool {
	if env == nil {
		return false
	}
	return env.NotReducible[name] || env.Projections[name]
}
