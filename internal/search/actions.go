package search

import (
	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
	"github.com/orizon-lang/orizon-prover/internal/unify"
)

// actionStatus is the outcome of one step of the action loop.
type actionStatus int

const (
	// statusNoAction: no action applies; the branch is stuck.
	statusNoAction actionStatus = iota
	// statusClosedBranch: the branch is proved; a proof term is available.
	statusClosedBranch
	// statusContinue: an action fired and produced no proof yet.
	statusContinue
)

// introEntry records one binder introduced by the intros action.
type introEntry struct {
	hidx int
	name string
	typ  *term.Expr
	info term.BinderInfo
}

// introStep is the pending obligation pushed by the intros action: once the
// transformed goal is proved, wrap the proof back into the lambda telescope
// binding the introduced hypotheses.
type introStep struct {
	entries []introEntry
}

// Resolve abstracts the introduced hypothesis references out of the proof
// and rebuilds the binders. Assigned metavariables are instantiated first so
// no reference hides inside an assignment.
func (st *introStep) Resolve(s *sequent.State, proof *term.Expr) (*term.Expr, bool) {
	idxs := make([]int, len(st.entries))
	for i, en := range st.entries {
		idxs[i] = en.hidx
	}
	e := term.AbstractHrefs(s.InstantiateRefs(proof), idxs)
	for k := len(st.entries) - 1; k >= 0; k-- {
		en := st.entries[k]
		dom := term.AbstractHrefs(s.InstantiateRefs(en.typ), idxs[:k])
		e = term.MkLambda(en.name, dom, e, en.info)
	}
	return e, true
}

// introsAction moves the leading Pi binders of the goal into fresh activated
// hypotheses. Reports whether it fired.
func (e *Engine) introsAction() bool {
	s := e.state
	target := s.Target()
	if target == nil || target.Kind != term.ExprPi {
		return false
	}
	step := &introStep{}
	for target.Kind == term.ExprPi {
		d := target.Data.(*term.BindingExpr)
		h := s.MkHypothesis(d.Name, d.Type, nil)
		s.Activate(term.RefIndex(h))
		step.entries = append(step.entries, introEntry{
			hidx: term.RefIndex(h),
			name: d.Name,
			typ:  d.Type,
			info: d.Info,
		})
		target = term.Instantiate(d.Body, h)
	}
	s.SetTarget(target)
	s.PushProofStep(step)
	return true
}

// activateAction activates the next inactive hypothesis, if one exists.
func (e *Engine) activateAction() (int, bool) {
	return e.state.ActivateNext()
}

// assumptionAction closes the goal with the first active hypothesis whose
// type is definitionally equal to the target. Assignments made by a failed
// candidate are rolled back by the unifier's transaction discipline.
func (e *Engine) assumptionAction() (*term.Expr, bool) {
	s := e.state
	target := s.Target()
	for _, hidx := range s.ActiveHypotheses() {
		href := term.MkHref(hidx)
		decl, err := s.HypothesisDecl(href)
		if err != nil {
			continue
		}
		if unify.IsDefEq(e.uctx, decl.Type, target) {
			return href, true
		}
	}
	return nil, false
}
