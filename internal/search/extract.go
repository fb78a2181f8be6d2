package search

import (
	"fmt"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
)

// extractor converts an internal proof term back into the external
// representation: hypothesis references become their stored values or
// provenance locals, metavariable references become their assignments, and
// unassigned references are re-externalized as fresh external metavariables
// so the host framework can keep working on them.
type extractor struct {
	state *sequent.State
	mrefs map[int]*term.Expr  // re-externalized unassigned mrefs
	urefs map[int]*term.Level // re-externalized unassigned urefs
}

func newExtractor(s *sequent.State) *extractor {
	return &extractor{
		state: s,
		mrefs: make(map[int]*term.Expr),
		urefs: make(map[int]*term.Level),
	}
}

func (x *extractor) level(l *term.Level) *term.Level {
	l = x.state.InstantiateLevel(l)
	switch l.Kind {
	case term.LevelSucc:
		return term.MkSucc(x.level(term.SuccOf(l)))
	case term.LevelMax:
		lhs, rhs := term.MaxArgs(l)
		return term.MkMax(x.level(lhs), x.level(rhs))
	case term.LevelIMax:
		lhs, rhs := term.MaxArgs(l)
		return term.MkIMax(x.level(lhs), x.level(rhs))
	case term.LevelUref:
		idx := term.UrefIndex(l)
		if v, ok := x.urefs[idx]; ok {
			return v
		}
		v := term.MkLevelMeta(fmt.Sprintf("u_%d", idx))
		x.urefs[idx] = v
		return v
	default:
		return l
	}
}

func (x *extractor) expr(e *term.Expr) *term.Expr {
	return term.Replace(e, func(n *term.Expr, _ int) *term.Expr {
		switch n.Kind {
		case term.ExprHref:
			decl, err := x.state.HypothesisDecl(n)
			if err != nil {
				return n
			}
			if decl.Value != nil {
				return x.expr(decl.Value)
			}
			if decl.Provenance != nil {
				return decl.Provenance
			}
			// No provenance: a hypothesis introduced by the search that
			// escaped its binder would be a bug upstream; keep it visible.
			return term.MkLocal(fmt.Sprintf("h_%d", decl.Index), decl.Name, x.expr(decl.Type))
		case term.ExprMref:
			if v, ok := x.state.MrefAssignment(n); ok {
				// Follow assignment chains to a fixed point before
				// re-externalizing what remains.
				return x.expr(x.state.InstantiateRefs(v))
			}
			idx := term.RefIndex(n)
			if m, ok := x.mrefs[idx]; ok {
				return m
			}
			decl, err := x.state.MetavarDeclOf(n)
			if err != nil {
				return n
			}
			m := term.MkMeta(fmt.Sprintf("m_%d", idx), x.expr(decl.Type))
			x.mrefs[idx] = m
			return m
		case term.ExprSort:
			return term.MkSort(x.level(n.Data.(*term.SortExpr).Level))
		case term.ExprConst:
			d := n.Data.(*term.ConstExpr)
			if len(d.Levels) == 0 {
				return nil
			}
			levels := make([]*term.Level, len(d.Levels))
			for i, l := range d.Levels {
				levels[i] = x.level(l)
			}
			return term.MkConst(d.Name, levels...)
		default:
			return nil
		}
	})
}
