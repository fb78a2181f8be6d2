package search

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
	"github.com/orizon-lang/orizon-prover/internal/unify"
)

// Engine drives one proof search: internalize the goal, run the action loop
// under iterative deepening with choice-point backtracking, and extract the
// proof on success. An engine is a single-goroutine value; concurrent goals
// each need their own engine (see ProveAll).
type Engine struct {
	cfg  Config
	norm Normalizer
	env  *unify.Environment
	log  *logrus.Entry

	state        *sequent.State
	uctx         *unify.StateContext
	pool         *unify.Pool
	choicePoints []*sequent.State
}

// Option configures an engine.
type Option func(*Engine)

// WithLogger installs a logger for search tracing.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) {
		e.log = l.WithField("search_id", uuid.NewString())
	}
}

// WithEnvironment installs the opacity environment shared by the search's
// unification contexts.
func WithEnvironment(env *unify.Environment) Option {
	return func(e *Engine) { e.env = env }
}

// New returns an engine with the given configuration and normalizer.
func New(cfg Config, norm Normalizer, opts ...Option) *Engine {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	e := &Engine{
		cfg:  cfg,
		norm: norm,
		env:  unify.NewEnvironment(),
		log:  silent.WithField("search_id", uuid.NewString()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pool returns the scratch-context pool of the current search, for helper
// algorithms that need a temporary unification context.
func (e *Engine) Pool() *unify.Pool { return e.pool }

// setState swaps the current state; the unification context and the scratch
// pool follow the engine's notion of "current".
func (e *Engine) setState(s *sequent.State) {
	e.state = s
	e.uctx.SetState(s)
	e.pool.SetState(s)
}

// Prove searches for a proof of the goal. ok reports whether a proof was
// found; exhausting the depth budget is a normal outcome, not an error.
// Internalization failures are fatal and returned as errors.
func (e *Engine) Prove(g Goal) (proof *term.Expr, ok bool, err error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, false, err
	}
	st, err := InternalizeGoal(e.norm, g)
	if err != nil {
		return nil, false, err
	}
	e.state = st
	e.uctx = unify.NewStateContext(st, e.env)
	e.pool = unify.NewPool(e.env)
	e.pool.SetState(st)
	e.choicePoints = nil

	if e.cfg.InitDepth > e.cfg.MaxDepth {
		e.log.WithFields(logrus.Fields{
			"init_depth": e.cfg.InitDepth,
			"max_depth":  e.cfg.MaxDepth,
		}).Warn("initial depth exceeds maximum, not searching")
		return nil, false, nil
	}

	pr, found := e.search()
	if !found {
		e.log.Debug("search exhausted, no proof found")
		return nil, false, nil
	}
	ext := newExtractor(e.state).expr(pr)
	e.log.WithField("proof", ext.String()).Debug("proof found")
	return ext, true, nil
}

// nextChoicePoint resumes the most recent alternative state, if any.
func (e *Engine) nextChoicePoint() bool {
	n := len(e.choicePoints)
	if n == 0 {
		return false
	}
	e.setState(e.choicePoints[n-1])
	e.choicePoints = e.choicePoints[:n-1]
	e.log.WithField("remaining", n-1).Debug("backtracking to choice point")
	return true
}

// pushChoicePoint saves an independent copy of the current state as an
// alternative to resume on backtracking.
func (e *Engine) pushChoicePoint() {
	e.choicePoints = append(e.choicePoints, e.state.Clone())
}

// nextAction tries the actions in fixed priority order; the first that fires
// wins. Additional actions extend this list without altering the skeleton.
func (e *Engine) nextAction() (actionStatus, *term.Expr) {
	if e.introsAction() {
		e.state.BumpProofDepth()
		e.log.WithField("depth", e.state.ProofDepth()).Debug("intros")
		return statusContinue, nil
	}
	if hidx, fired := e.activateAction(); fired {
		e.state.BumpProofDepth()
		e.log.WithFields(logrus.Fields{
			"depth":      e.state.ProofDepth(),
			"hypothesis": hidx,
		}).Debug("activate hypothesis")
		return statusContinue, nil
	}
	if pr, closed := e.assumptionAction(); closed {
		e.log.WithField("depth", e.state.ProofDepth()).Debug("assumption closes branch")
		return statusClosedBranch, pr
	}
	return statusNoAction, nil
}

// resolveProofSteps combines a leaf proof with the pending proof steps. A
// step that declines to consume the proof signals that search must continue;
// an empty stack means every branch is closed.
func (e *Engine) resolveProofSteps(pr *term.Expr) (*term.Expr, bool) {
	for e.state.HasProofSteps() {
		step := e.state.TopProofStep()
		next, consumed := step.Resolve(e.state, pr)
		if !consumed {
			return nil, false // continue the search
		}
		pr = next
		e.state.PopProofStep()
	}
	return pr, true // closed all branches
}

// searchUpto runs the bounded depth-first loop at one depth limit.
func (e *Engine) searchUpto(depth int) (*term.Expr, bool) {
	for {
		if e.state.ProofDepth() > depth {
			if !e.nextChoicePoint() {
				return nil, false
			}
			continue
		}
		status, pr := e.nextAction()
		switch status {
		case statusNoAction:
			if !e.nextChoicePoint() {
				return nil, false
			}
		case statusClosedBranch:
			if full, done := e.resolveProofSteps(pr); done {
				return full, true
			}
		case statusContinue:
		}
	}
}

// search runs the outer iterative-deepening loop: bounded search with
// increasing limits, resetting to the pre-search state between rounds.
func (e *Engine) search() (*term.Expr, bool) {
	initial := e.state
	for depth := e.cfg.InitDepth; depth <= e.cfg.MaxDepth; depth += e.cfg.IncDepth {
		e.log.WithField("bound", depth).Debug("deepening round")
		e.setState(initial.Clone())
		e.choicePoints = nil
		if pr, found := e.searchUpto(depth); found {
			return pr, true
		}
	}
	return nil, false
}
