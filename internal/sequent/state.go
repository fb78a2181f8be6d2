// Package sequent implements the mutable state of one proof search: the
// hypothesis and metavariable tables, the universe and term assignment
// tables, the proof-step stack, and snapshot/restore support for choice-point
// backtracking and transactional assignment.
package sequent

import (
	"fmt"

	"github.com/orizon-lang/orizon-prover/internal/term"
)

// Hypothesis is a declaration in the sequent's context. Hypotheses are owned
// by the state; they are created during internalization or by actions and are
// never deleted, only discarded by state rollback.
type Hypothesis struct {
	Index      int
	Name       string
	Type       *term.Expr
	Provenance *term.Expr // originating external local, if any
	Value      *term.Expr // set when the hypothesis is a local definition
	Active     bool
}

// MetavarDecl declares an internal metavariable: its type and the ordered set
// of hypotheses it may depend on. Assignments live in a separate table so
// they can be snapshotted independently of declarations.
type MetavarDecl struct {
	Index   int
	Context []int // hypothesis indices, insertion order
	Type    *term.Expr
}

// ContainsHref reports whether the declared context contains the hypothesis.
func (d *MetavarDecl) ContainsHref(hidx int) bool {
	for _, h := range d.Context {
		if h == hidx {
			return true
		}
	}
	return false
}

// ProofStep is a pending obligation on the proof-step stack. Resolve either
// consumes a child proof to build the parent proof (ok=true), or declines
// because the obligation is not yet satisfied and search must continue.
type ProofStep interface {
	Resolve(s *State, proof *term.Expr) (*term.Expr, bool)
}

// State is the sequent state of one search. It is a single-goroutine value;
// concurrent searches must each own their own State.
type State struct {
	hyps     []Hypothesis
	metavars []MetavarDecl
	uassign  map[int]*term.Level
	massign  map[int]*term.Expr
	steps    []ProofStep
	depth    int
	target   *term.Expr
	nextUref int
}

// NewState returns an empty sequent state.
func NewState() *State {
	return &State{
		uassign: make(map[int]*term.Level),
		massign: make(map[int]*term.Expr),
	}
}

// MkHypothesis appends a new inactive hypothesis and returns its reference.
func (s *State) MkHypothesis(name string, typ, provenance *term.Expr) *term.Expr {
	idx := len(s.hyps)
	s.hyps = append(s.hyps, Hypothesis{
		Index:      idx,
		Name:       name,
		Type:       typ,
		Provenance: provenance,
	})
	return term.MkHref(idx)
}

// MkDefinition appends a new inactive hypothesis carrying a value.
func (s *State) MkDefinition(name string, typ, value *term.Expr) *term.Expr {
	h := s.MkHypothesis(name, typ, nil)
	s.hyps[term.RefIndex(h)].Value = value
	return h
}

// MkMetavar declares a fresh metavariable with the given context and type.
func (s *State) MkMetavar(ctx []int, typ *term.Expr) *term.Expr {
	idx := len(s.metavars)
	s.metavars = append(s.metavars, MetavarDecl{
		Index:   idx,
		Context: append([]int(nil), ctx...),
		Type:    typ,
	})
	return term.MkMref(idx)
}

// MkMetavarAll declares a fresh metavariable whose context is the whole
// current hypothesis table.
func (s *State) MkMetavarAll(typ *term.Expr) *term.Expr {
	ctx := make([]int, len(s.hyps))
	for i := range s.hyps {
		ctx[i] = i
	}
	return s.MkMetavar(ctx, typ)
}

// MkUref allocates a fresh universe reference.
func (s *State) MkUref() *term.Level {
	l := term.MkUref(s.nextUref)
	s.nextUref++
	return l
}

// NumHypotheses returns the number of declared hypotheses.
func (s *State) NumHypotheses() int { return len(s.hyps) }

// NumMetavars returns the number of declared metavariables.
func (s *State) NumMetavars() int { return len(s.metavars) }

// HypothesisDecl returns the declaration of the given hypothesis reference.
func (s *State) HypothesisDecl(h *term.Expr) (*Hypothesis, error) {
	if !term.IsHref(h) {
		return nil, fmt.Errorf("ill-formed reference: %s is not a hypothesis reference", h)
	}
	idx := term.RefIndex(h)
	if idx < 0 || idx >= len(s.hyps) {
		return nil, fmt.Errorf("ill-formed reference: hypothesis %d is not declared", idx)
	}
	return &s.hyps[idx], nil
}

// MetavarDeclOf returns the declaration of the given metavariable reference.
func (s *State) MetavarDeclOf(m *term.Expr) (*MetavarDecl, error) {
	if !term.IsMref(m) {
		return nil, fmt.Errorf("ill-formed reference: %s is not a metavariable reference", m)
	}
	idx := term.RefIndex(m)
	if idx < 0 || idx >= len(s.metavars) {
		return nil, fmt.Errorf("ill-formed reference: metavariable %d is not declared", idx)
	}
	return &s.metavars[idx], nil
}

// AssignUref records a universe assignment, overwriting any previous one.
// Callers are responsible for transaction discipline.
func (s *State) AssignUref(u *term.Level, v *term.Level) {
	s.uassign[term.UrefIndex(u)] = v
}

// AssignMref records a metavariable assignment, overwriting any previous one.
// Callers are responsible for transaction discipline and validation.
func (s *State) AssignMref(m *term.Expr, v *term.Expr) {
	s.massign[term.RefIndex(m)] = v
}

// UrefAssignment returns the assignment of a universe reference, if any.
func (s *State) UrefAssignment(u *term.Level) (*term.Level, bool) {
	v, ok := s.uassign[term.UrefIndex(u)]
	return v, ok
}

// MrefAssignment returns the assignment of a metavariable reference, if any.
func (s *State) MrefAssignment(m *term.Expr) (*term.Expr, bool) {
	v, ok := s.massign[term.RefIndex(m)]
	return v, ok
}

// RestrictMrefContextUsing shrinks target's declared context to the
// hypotheses also present in cutoff's context, preserving order. It is used
// during assignment validation to enforce scope monotonicity.
func (s *State) RestrictMrefContextUsing(target, cutoff *term.Expr) {
	td, err := s.MetavarDeclOf(target)
	if err != nil {
		return
	}
	cd, err := s.MetavarDeclOf(cutoff)
	if err != nil {
		return
	}
	allowed := make(map[int]struct{}, len(cd.Context))
	for _, h := range cd.Context {
		allowed[h] = struct{}{}
	}
	restricted := make([]int, 0, len(td.Context))
	for _, h := range td.Context {
		if _, ok := allowed[h]; ok {
			restricted = append(restricted, h)
		}
	}
	// Fresh slice: cloned states may share the old backing array.
	s.metavars[td.Index].Context = restricted
}

// ActivateNext activates the next inactive hypothesis in insertion order and
// returns its index. ok is false when none remain.
func (s *State) ActivateNext() (int, bool) {
	for i := range s.hyps {
		if !s.hyps[i].Active {
			s.hyps[i].Active = true
			return i, true
		}
	}
	return 0, false
}

// Activate marks the hypothesis with the given index as active. Actions that
// introduce hypotheses themselves (e.g. intros) activate them eagerly.
func (s *State) Activate(idx int) {
	if idx >= 0 && idx < len(s.hyps) {
		s.hyps[idx].Active = true
	}
}

// ActiveHypotheses returns the indices of activated hypotheses in order.
func (s *State) ActiveHypotheses() []int {
	var out []int
	for i := range s.hyps {
		if s.hyps[i].Active {
			out = append(out, i)
		}
	}
	return out
}

// SetTarget sets the goal of the sequent.
func (s *State) SetTarget(t *term.Expr) { s.target = t }

// Target returns the goal of the sequent.
func (s *State) Target() *term.Expr { return s.target }

// PushProofStep pushes a pending obligation.
func (s *State) PushProofStep(step ProofStep) {
	s.steps = append(s.steps, step)
}

// HasProofSteps reports whether obligations remain.
func (s *State) HasProofSteps() bool { return len(s.steps) > 0 }

// TopProofStep returns the most recent obligation.
func (s *State) TopProofStep() ProofStep { return s.steps[len(s.steps)-1] }

// PopProofStep removes the most recent obligation.
func (s *State) PopProofStep() {
	s.steps = s.steps[:len(s.steps)-1]
}

// ProofDepth returns the number of actions applied on this branch.
func (s *State) ProofDepth() int { return s.depth }

// BumpProofDepth increments the proof-depth counter.
func (s *State) BumpProofDepth() { s.depth++ }
