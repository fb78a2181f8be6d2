package sequent

import (
	"fmt"

	"github.com/orizon-lang/orizon-prover/internal/term"
)

// CheckInvariant verifies the scoping and acyclicity invariants of the state.
// It is intended for test harnesses, not production control flow.
func (s *State) CheckInvariant() error {
	for i := range s.hyps {
		if err := s.checkScoped(s.hyps[i].Type, fmt.Sprintf("hypothesis %d", i)); err != nil {
			return err
		}
	}
	if s.target != nil {
		if err := s.checkScoped(s.target, "target"); err != nil {
			return err
		}
	}
	for midx, v := range s.massign {
		decl := &s.metavars[midx]
		if err := s.checkAssignmentScope(decl, v); err != nil {
			return err
		}
		if s.occursTransitively(midx, v, make(map[int]bool)) {
			return fmt.Errorf("cyclic assignment: ?m%d occurs in its own assigned value", midx)
		}
	}
	return nil
}

// checkScoped verifies that every internal reference in e is declared.
func (s *State) checkScoped(e *term.Expr, where string) error {
	var err error
	term.ForEach(e, func(n *term.Expr, _ int) bool {
		if err != nil {
			return false
		}
		switch n.Kind {
		case term.ExprHref:
			if idx := term.RefIndex(n); idx < 0 || idx >= len(s.hyps) {
				err = fmt.Errorf("%s references undeclared hypothesis %d", where, idx)
				return false
			}
		case term.ExprMref:
			if idx := term.RefIndex(n); idx < 0 || idx >= len(s.metavars) {
				err = fmt.Errorf("%s references undeclared metavariable %d", where, idx)
				return false
			}
		}
		return true
	})
	return err
}

// checkAssignmentScope verifies that every hypothesis reference in an
// assigned value lies within the declared context of the metavariable.
func (s *State) checkAssignmentScope(decl *MetavarDecl, v *term.Expr) error {
	var err error
	term.ForEach(v, func(n *term.Expr, _ int) bool {
		if err != nil {
			return false
		}
		if term.IsHref(n) && !decl.ContainsHref(term.RefIndex(n)) {
			err = fmt.Errorf("assignment of ?m%d mentions h!%d outside its declared context",
				decl.Index, term.RefIndex(n))
			return false
		}
		return true
	})
	return err
}

// occursTransitively reports whether metavariable midx occurs in v, following
// assignments of other metavariables encountered along the way.
func (s *State) occursTransitively(midx int, v *term.Expr, visiting map[int]bool) bool {
	found := false
	term.ForEach(v, func(n *term.Expr, _ int) bool {
		if found || !term.IsMref(n) {
			return !found
		}
		idx := term.RefIndex(n)
		if idx == midx {
			found = true
			return false
		}
		if !visiting[idx] {
			visiting[idx] = true
			if w, ok := s.massign[idx]; ok && s.occursTransitively(midx, w, visiting) {
				found = true
			}
		}
		return !found
	})
	return found
}
