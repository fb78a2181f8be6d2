package search

import (
	"github.com/pkg/errors"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
)

// internalizer is a one-shot translator from external terms into references
// of one sequent state. It deduplicates external universe metavariables,
// metavariables, and local constants through the three maps below.
type internalizer struct {
	state      *sequent.State
	uvar2uref  map[string]*term.Level
	mvar2mref  map[string]*metaEntry
	local2href map[string]*term.Expr
}

// metaEntry records the first internalized occurrence of an external
// metavariable: the full argument list it was applied to, how much of it is
// the closed prefix, and the mref standing in for that application prefix.
type metaEntry struct {
	args      []*term.Expr // complete first-occurrence arguments
	prefixLen int          // closed prefix consumed by the mref
	mref      *term.Expr
}

func newInternalizer(s *sequent.State) *internalizer {
	return &internalizer{
		state:      s,
		uvar2uref:  make(map[string]*term.Level),
		mvar2mref:  make(map[string]*metaEntry),
		local2href: make(map[string]*term.Expr),
	}
}

// InternalizeGoal normalizes and translates an external goal into a fresh
// sequent state, returning the state ready for search. Failures are fatal
// and abort before any search runs.
func InternalizeGoal(norm Normalizer, g Goal) (*sequent.State, error) {
	s := sequent.NewState()
	iz := newInternalizer(s)
	for _, h := range g.Hyps {
		if !term.IsLocal(h) {
			return nil, &IllFormedGoalError{Term: h}
		}
		ld := h.Data.(*term.LocalExpr)
		normType, err := norm.Normalize(ld.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "normalize type of hypothesis %s", ld.PPName)
		}
		typ, err := iz.visit(normType)
		if err != nil {
			return nil, err
		}
		href := s.MkHypothesis(ld.PPName, typ, h)
		iz.local2href[ld.Name] = href
	}
	normTarget, err := norm.Normalize(g.Target)
	if err != nil {
		return nil, errors.Wrap(err, "normalize target")
	}
	target, err := iz.visit(normTarget)
	if err != nil {
		return nil, err
	}
	s.SetTarget(target)
	return s, nil
}

func (iz *internalizer) visitLevel(l *term.Level) *term.Level {
	switch l.Kind {
	case term.LevelSucc:
		return term.MkSucc(iz.visitLevel(term.SuccOf(l)))
	case term.LevelMax:
		lhs, rhs := term.MaxArgs(l)
		return term.MkMax(iz.visitLevel(lhs), iz.visitLevel(rhs))
	case term.LevelIMax:
		lhs, rhs := term.MaxArgs(l)
		return term.MkIMax(iz.visitLevel(lhs), iz.visitLevel(rhs))
	case term.LevelMeta:
		name := term.LevelName(l)
		if u, ok := iz.uvar2uref[name]; ok {
			return u
		}
		u := iz.state.MkUref()
		iz.uvar2uref[name] = u
		return u
	default:
		return l
	}
}

func (iz *internalizer) visit(e *term.Expr) (*term.Expr, error) {
	switch e.Kind {
	case term.ExprVar, term.ExprHref, term.ExprMref:
		return e, nil
	case term.ExprSort:
		return term.MkSort(iz.visitLevel(e.Data.(*term.SortExpr).Level)), nil
	case term.ExprConst:
		d := e.Data.(*term.ConstExpr)
		if len(d.Levels) == 0 {
			return e, nil
		}
		levels := make([]*term.Level, len(d.Levels))
		for i, l := range d.Levels {
			levels[i] = iz.visitLevel(l)
		}
		return term.MkConst(d.Name, levels...), nil
	case term.ExprMacro:
		d := e.Data.(*term.MacroExpr)
		args := make([]*term.Expr, len(d.Args))
		for i, a := range d.Args {
			na, err := iz.visit(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
		return term.MkMacro(d.Tag, args), nil
	case term.ExprLocal:
		if href, ok := iz.local2href[term.LocalName(e)]; ok {
			return href, nil
		}
		return nil, &IllFormedGoalError{Term: e}
	case term.ExprMeta:
		return iz.visitMetaApp(e)
	case term.ExprApp:
		if term.IsMeta(e) {
			return iz.visitMetaApp(e)
		}
		d := e.Data.(*term.AppExpr)
		fn, err := iz.visit(d.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := iz.visit(d.Arg)
		if err != nil {
			return nil, err
		}
		return term.MkApp(fn, arg), nil
	case term.ExprLambda, term.ExprPi:
		d := e.Data.(*term.BindingExpr)
		typ, err := iz.visit(d.Type)
		if err != nil {
			return nil, err
		}
		body, err := iz.visit(d.Body)
		if err != nil {
			return nil, err
		}
		return &term.Expr{Kind: e.Kind, Data: &term.BindingExpr{
			Name: d.Name, Type: typ, Body: body, Info: d.Info,
		}}, nil
	default:
		return nil, errors.Errorf("internalize: unexpected expression kind %d", e.Kind)
	}
}

// visitMetaApp translates an external metavariable application under the
// higher-order-pattern restriction. The first occurrence fixes the argument
// list (the longest closed prefix is consumed by the mref; only
// already-mapped distinct locals enter its context); later occurrences must
// repeat every recorded argument, closed or not.
func (iz *internalizer) visitMetaApp(e *term.Expr) (*term.Expr, error) {
	mvar, args := term.GetAppArgs(e)
	name := mvar.Data.(*term.MetaExpr).Name

	if ent, ok := iz.mvar2mref[name]; ok {
		if len(ent.args) > len(args) {
			return nil, &UnsupportedMetavarOccurrenceError{Term: e}
		}
		// Every argument recorded at the first occurrence must reappear:
		// name equality on locals, structural equality on everything else.
		for i, p := range ent.args {
			if term.IsLocal(p) {
				if !term.IsLocal(args[i]) || term.LocalName(args[i]) != term.LocalName(p) {
					return nil, &UnsupportedMetavarOccurrenceError{Term: e}
				}
			} else if !term.Equal(p, args[i]) {
				return nil, &UnsupportedMetavarOccurrenceError{Term: e}
			}
		}
		return iz.mkMrefApp(ent.mref, args[ent.prefixLen:])
	}

	// First occurrence: scan the longest closed prefix. Non-local and
	// duplicate arguments are skipped, not rejected; the mref's context is
	// the distinct mapped locals in first-occurrence order.
	var ctx []int
	i := 0
scan:
	for ; i < len(args); i++ {
		if !term.Closed(args[i]) {
			break
		}
		if !term.IsLocal(args[i]) {
			continue
		}
		for _, prev := range args[:i] {
			if term.IsLocal(prev) && term.LocalName(prev) == term.LocalName(args[i]) {
				continue scan // local already processed
			}
		}
		href, ok := iz.local2href[term.LocalName(args[i])]
		if !ok {
			return nil, &UnsupportedMetavarOccurrenceError{Term: e}
		}
		ctx = append(ctx, term.RefIndex(href))
	}
	prefix := args[:i]

	appType, err := iz.metaAppType(mvar, prefix)
	if err != nil {
		return nil, err
	}
	typ, err := iz.visit(appType)
	if err != nil {
		return nil, err
	}
	mref := iz.state.MkMetavar(ctx, typ)
	iz.mvar2mref[name] = &metaEntry{
		args:      append([]*term.Expr(nil), args...),
		prefixLen: len(prefix),
		mref:      mref,
	}
	return iz.mkMrefApp(mref, args[len(prefix):])
}

// mkMrefApp translates the suffix arguments and applies them to the mref.
func (iz *internalizer) mkMrefApp(mref *term.Expr, suffix []*term.Expr) (*term.Expr, error) {
	out := mref
	for _, a := range suffix {
		na, err := iz.visit(a)
		if err != nil {
			return nil, err
		}
		out = term.MkApp(out, na)
	}
	return out, nil
}

// metaAppType computes the external type of mvar applied to the prefix
// arguments by walking the Pi telescope of its declared type.
func (iz *internalizer) metaAppType(mvar *term.Expr, prefix []*term.Expr) (*term.Expr, error) {
	typ := mvar.Data.(*term.MetaExpr).Type
	for _, arg := range prefix {
		if typ.Kind != term.ExprPi {
			return nil, &UnsupportedMetavarOccurrenceError{Term: mvar}
		}
		typ = term.Instantiate(typ.Data.(*term.BindingExpr).Body, arg)
	}
	return typ, nil
}
