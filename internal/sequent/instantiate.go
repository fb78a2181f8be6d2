package sequent

import "github.com/orizon-lang/orizon-prover/internal/term"

// InstantiateLevel replaces assigned universe references in l with their
// assignments, recursively, until no assigned reference remains.
func (s *State) InstantiateLevel(l *term.Level) *term.Level {
	switch l.Kind {
	case term.LevelSucc:
		return term.MkSucc(s.InstantiateLevel(term.SuccOf(l)))
	case term.LevelMax:
		lhs, rhs := term.MaxArgs(l)
		return term.MkMax(s.InstantiateLevel(lhs), s.InstantiateLevel(rhs))
	case term.LevelIMax:
		lhs, rhs := term.MaxArgs(l)
		return term.MkIMax(s.InstantiateLevel(lhs), s.InstantiateLevel(rhs))
	case term.LevelUref:
		if v, ok := s.UrefAssignment(l); ok {
			// Assignment chains are acyclic by validation; follow to a
			// fixed point rather than substituting a single step.
			return s.InstantiateLevel(v)
		}
		return l
	default:
		return l
	}
}

// InstantiateRefs replaces assigned metavariable and universe references in e
// with their assignments, recursively instantiating nested references.
func (s *State) InstantiateRefs(e *term.Expr) *term.Expr {
	return term.Replace(e, func(n *term.Expr, _ int) *term.Expr {
		switch n.Kind {
		case term.ExprMref:
			if v, ok := s.MrefAssignment(n); ok {
				return s.InstantiateRefs(v)
			}
			return n
		case term.ExprSort:
			return term.MkSort(s.InstantiateLevel(n.Data.(*term.SortExpr).Level))
		case term.ExprConst:
			d := n.Data.(*term.ConstExpr)
			if len(d.Levels) == 0 {
				return n
			}
			levels := make([]*term.Level, len(d.Levels))
			for i, l := range d.Levels {
				levels[i] = s.InstantiateLevel(l)
			}
			return term.MkConst(d.Name, levels...)
		default:
			return nil
		}
	})
}
