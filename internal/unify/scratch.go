package unify

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
)

// Name prefixes of the temporary variables minted by scratch contexts.
const (
	tmpLevelPrefix = "_tmp_u."
	tmpMetaPrefix  = "_tmp_m."
)

// ScratchContext implements Context for short-lived helper calls. Internal
// references (href/mref/uref) delegate to the sequent state; everything the
// scratch context mints itself is a self-contained external metavariable
// whose type travels with it, so helpers can create and resolve temporary
// metavariables without polluting the search state.
type ScratchContext struct {
	env     *Environment
	state   *sequent.State
	counter int
	uassign map[string]*term.Level
	massign map[string]*term.Expr
	stack   []scratchSnapshot
}

type scratchSnapshot struct {
	uassign map[string]*term.Level
	massign map[string]*term.Expr
	state   sequent.AssignmentSnapshot
}

var _ Context = (*ScratchContext)(nil)

// NewScratchContext returns an empty scratch context bound to the given
// environment and state.
func NewScratchContext(env *Environment, s *sequent.State) *ScratchContext {
	return &ScratchContext{
		env:     env,
		state:   s,
		uassign: make(map[string]*term.Level),
		massign: make(map[string]*term.Expr),
	}
}

// Clear drops all transient state: temporary variables, assignments, and the
// transaction stack. The context can then be reused for another helper call.
func (c *ScratchContext) Clear() {
	c.counter = 0
	c.uassign = make(map[string]*term.Level)
	c.massign = make(map[string]*term.Expr)
	c.stack = nil
}

// SetState rebinds the scratch context to a (possibly different) state.
func (c *ScratchContext) SetState(s *sequent.State) { c.state = s }

func isTmpLevel(l *term.Level) bool {
	return l.Kind == term.LevelMeta && strings.HasPrefix(term.LevelName(l), tmpLevelPrefix)
}

func isTmpMeta(e *term.Expr) bool {
	return e.Kind == term.ExprMeta && strings.HasPrefix(e.Data.(*term.MetaExpr).Name, tmpMetaPrefix)
}

// IsUvar reports internal universe references and temporary level variables.
func (c *ScratchContext) IsUvar(l *term.Level) bool {
	return term.IsUref(l) || isTmpLevel(l)
}

// IsMvar reports internal metavariable references and temporary
// metavariables.
func (c *ScratchContext) IsMvar(e *term.Expr) bool {
	return term.IsMref(e) || isTmpMeta(e)
}

// LevelAssignment looks up temporary variables locally and internal
// references in the state.
func (c *ScratchContext) LevelAssignment(l *term.Level) (*term.Level, bool) {
	if isTmpLevel(l) {
		v, ok := c.uassign[term.LevelName(l)]
		return v, ok
	}
	if term.IsUref(l) {
		return c.state.UrefAssignment(l)
	}
	return nil, false
}

// ExprAssignment looks up temporary metavariables locally and internal
// references in the state.
func (c *ScratchContext) ExprAssignment(e *term.Expr) (*term.Expr, bool) {
	if isTmpMeta(e) {
		v, ok := c.massign[e.Data.(*term.MetaExpr).Name]
		return v, ok
	}
	if term.IsMref(e) {
		return c.state.MrefAssignment(e)
	}
	return nil, false
}

// AssignLevel records the assignment in the proper table.
func (c *ScratchContext) AssignLevel(l, v *term.Level) {
	if isTmpLevel(l) {
		c.uassign[term.LevelName(l)] = v
		return
	}
	c.state.AssignUref(l, v)
}

// AssignExpr records the assignment in the proper table.
func (c *ScratchContext) AssignExpr(m, v *term.Expr) {
	if isTmpMeta(m) {
		c.massign[m.Data.(*term.MetaExpr).Name] = v
		return
	}
	c.state.AssignMref(m, v)
}

// ValidateAssignment applies the state-context rules to internal references.
// Assignments to temporary metavariables reject loose bound variables and a
// direct self-occurrence; their scope is the helper call itself.
func (c *ScratchContext) ValidateAssignment(m *term.Expr, locals []*term.Expr, v *term.Expr) bool {
	if term.IsMref(m) {
		sc := StateContext{state: c.state, env: c.env}
		return sc.ValidateAssignment(m, locals, v)
	}
	if !term.Closed(v) {
		return false
	}
	name := m.Data.(*term.MetaExpr).Name
	ok := true
	term.ForEach(v, func(e *term.Expr, _ int) bool {
		if !ok {
			return false
		}
		if e.Kind == term.ExprMeta && e.Data.(*term.MetaExpr).Name == name {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// InferLocal delegates hypothesis references to the state and reads the
// embedded type of plain locals.
func (c *ScratchContext) InferLocal(e *term.Expr) (*term.Expr, error) {
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

// InferMetavar delegates internal references to the state; the type of a
// temporary metavariable is stored with it.
func (c *ScratchContext) InferMetavar(e *term.Expr) (*term.Expr, error) {
	if term.IsMref(e) {
		decl, err := c.state.MetavarDeclOf(e)
		if err != nil {
			return nil, err
		}
		return decl.Type, nil
	}
	if e.Kind == term.ExprMeta {
		return e.Data.(*term.MetaExpr).Type, nil
	}
	return nil, fmt.Errorf("infer metavar: %s is not a metavariable", e)
}

// MkUvar mints a fresh temporary level variable.
func (c *ScratchContext) MkUvar() *term.Level {
	l := term.MkLevelMeta(fmt.Sprintf("%s%d", tmpLevelPrefix, c.counter))
	c.counter++
	return l
}

// MkMvar mints a fresh temporary metavariable carrying its type.
func (c *ScratchContext) MkMvar(typ *term.Expr) *term.Expr {
	e := term.MkMeta(fmt.Sprintf("%s%d", tmpMetaPrefix, c.counter), typ)
	c.counter++
	return e
}

// IsExtraOpaque consults the shared environment.
func (c *ScratchContext) IsExtraOpaque(name string) bool { return c.env.IsExtraOpaque(name) }

// Push checkpoints the local tables and the state's assignment tables.
func (c *ScratchContext) Push() {
	snap := scratchSnapshot{
		uassign: make(map[string]*term.Level, len(c.uassign)),
		massign: make(map[string]*term.Expr, len(c.massign)),
		state:   c.state.SaveAssignment(),
	}
	for k, v := range c.uassign {
		snap.uassign[k] = v
	}
	for k, v := range c.massign {
		snap.massign[k] = v
	}
	c.stack = append(c.stack, snap)
}

// Pop restores the most recent checkpoint.
func (c *ScratchContext) Pop() {
	snap := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.uassign = snap.uassign
	c.massign = snap.massign
	c.state.RestoreAssignment(snap.state)
}

// Commit discards the most recent checkpoint.
func (c *ScratchContext) Commit() {
	c.stack = c.stack[:len(c.stack)-1]
}

// Pool recycles scratch contexts across helper calls. Released contexts are
// cleared, not freed. A pool belongs to one search; it is not safe for
// concurrent use, matching the single-goroutine contract of the engine.
type Pool struct {
	env   *Environment
	state *sequent.State
	free  []*ScratchContext
}

// NewPool returns an empty pool bound to the given environment.
func NewPool(env *Environment) *Pool {
	return &Pool{env: env}
}

// SetState rebinds the pool (and future acquisitions) to the current state.
func (p *Pool) SetState(s *sequent.State) { p.state = s }

// Acquire returns a recycled scratch context re-initialized against the
// current state, or allocates a new one if the pool is empty.
func (p *Pool) Acquire() *ScratchContext {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		c.Clear()
		c.SetState(p.state)
		return c
	}
	return NewScratchContext(p.env, p.state)
}

// Release clears the context's transient state and returns it to the pool.
func (p *Pool) Release(c *ScratchContext) {
	if c == nil {
		return
	}
	c.Clear()
	p.free = append(p.free, c)
}
