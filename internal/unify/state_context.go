package unify

import (
	"fmt"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
)

// StateContext implements Context on top of the sequent state of the running
// search. Assignment lookups and updates delegate straight to the state;
// push/pop/commit checkpoint its assignment tables.
type StateContext struct {
	state *sequent.State
	env   *Environment
	stack []sequent.AssignmentSnapshot
}

var _ Context = (*StateContext)(nil)

// NewStateContext returns a context backed by the given state.
func NewStateContext(s *sequent.State, env *Environment) *StateContext {
	return &StateContext{state: s, env: env}
}

// SetState rebinds the context to a new current state. Choice-point
// backtracking swaps whole states; the context follows the engine's notion
// of "current".
func (c *StateContext) SetState(s *sequent.State) { c.state = s }

// State returns the currently bound sequent state.
func (c *StateContext) State() *sequent.State { return c.state }

// IsUvar reports whether l is an internal universe reference.
func (c *StateContext) IsUvar(l *term.Level) bool { return term.IsUref(l) }

// IsMvar reports whether e is an internal metavariable reference.
func (c *StateContext) IsMvar(e *term.Expr) bool { return term.IsMref(e) }

// LevelAssignment returns the state's assignment of a universe reference.
func (c *StateContext) LevelAssignment(l *term.Level) (*term.Level, bool) {
	if !term.IsUref(l) {
		return nil, false
	}
	return c.state.UrefAssignment(l)
}

// ExprAssignment returns the state's assignment of a metavariable reference.
func (c *StateContext) ExprAssignment(e *term.Expr) (*term.Expr, bool) {
	if !term.IsMref(e) {
		return nil, false
	}
	return c.state.MrefAssignment(e)
}

// AssignLevel records a universe assignment in the state.
func (c *StateContext) AssignLevel(l, v *term.Level) { c.state.AssignUref(l, v) }

// AssignExpr records a term assignment in the state.
func (c *StateContext) AssignExpr(m, v *term.Expr) { c.state.AssignMref(m, v) }

// ValidateAssignment checks, before v may be assigned to m, that
//  1. v has no loose bound variables (assignments outlive any binder the
//     unifier is currently under),
//  2. every hypothesis reference in v is in m's declared context,
//  3. the context of any other metavariable in v is restricted to be
//     consistent with m's context (a side effect, not merely a check),
//  4. every plain external local in v occurs in locals,
//  5. m itself does not occur in v.
func (c *StateContext) ValidateAssignment(m *term.Expr, locals []*term.Expr, v *term.Expr) bool {
	if !term.Closed(v) {
		return false
	}
	decl, err := c.state.MetavarDeclOf(m)
	if err != nil {
		return false
	}
	ok := true
	term.ForEach(v, func(e *term.Expr, _ int) bool {
		if !ok {
			return false
		}
		switch {
		case term.IsHref(e):
			if !decl.ContainsHref(term.RefIndex(e)) {
				ok = false // failed 2
				return false
			}
		case term.IsLocal(e):
			allowed := false
			for _, l := range locals {
				if term.IsLocal(l) && term.LocalName(l) == term.LocalName(e) {
					allowed = true
					break
				}
			}
			if !allowed {
				ok = false // failed 4
				return false
			}
		case term.IsMref(e):
			if term.RefIndex(e) == term.RefIndex(m) {
				ok = false // failed 5
				return false
			}
			c.state.RestrictMrefContextUsing(e, m) // enforce 3
			// Deeper occurrences are covered transitively by the
			// restriction; stop scanning this branch.
			return false
		}
		return true
	})
	return ok
}

// InferLocal returns the type of a hypothesis reference from the hypothesis
// table, or the embedded type of a plain external local.
func (c *StateContext) InferLocal(e *term.Expr) (*term.Expr, error) {
	if term.IsHref(e) {
		decl, err := c.state.HypothesisDecl(e)
		if err != nil {
			return nil, err
		}
		return decl.Type, nil
	}
	if term.IsLocal(e) {
		return e.Data.(*term.LocalExpr).Type, nil
	}
	return nil, fmt.Errorf("infer local: %s is not a local", e)
}

// InferMetavar returns the declared type of a metavariable reference.
// External metavariables are not tolerated here; only scratch contexts
// accept them.
func (c *StateContext) InferMetavar(e *term.Expr) (*term.Expr, error) {
	decl, err := c.state.MetavarDeclOf(e)
	if err != nil {
		return nil, err
	}
	return decl.Type, nil
}

// MkUvar allocates a fresh universe reference in the state.
func (c *StateContext) MkUvar() *term.Level { return c.state.MkUref() }

// MkMvar allocates a fresh metavariable over the full current context.
func (c *StateContext) MkMvar(typ *term.Expr) *term.Expr {
	return c.state.MkMetavarAll(typ)
}

// IsExtraOpaque consults the search environment.
func (c *StateContext) IsExtraOpaque(name string) bool { return c.env.IsExtraOpaque(name) }

// Push saves an assignment snapshot.
func (c *StateContext) Push() {
	c.stack = append(c.stack, c.state.SaveAssignment())
}

// Pop restores the most recent snapshot and discards it.
func (c *StateContext) Pop() {
	snap := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.state.RestoreAssignment(snap)
}

// Commit discards the most recent snapshot, keeping current assignments.
func (c *StateContext) Commit() {
	c.stack = c.stack[:len(c.stack)-1]
}
