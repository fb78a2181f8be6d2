package sequent

import "github.com/orizon-lang/orizon-prover/internal/term"

// AssignmentSnapshot is a checkpoint of both assignment tables, used for the
// transactional push/pop/commit discipline of unification contexts. It is
// cheaper than a full Clone: declarations and hypotheses are not copied.
type AssignmentSnapshot struct {
	uassign map[int]*term.Level
	massign map[int]*term.Expr
}

// SaveAssignment captures the current assignment tables.
func (s *State) SaveAssignment() AssignmentSnapshot {
	snap := AssignmentSnapshot{
		uassign: make(map[int]*term.Level, len(s.uassign)),
		massign: make(map[int]*term.Expr, len(s.massign)),
	}
	for k, v := range s.uassign {
		snap.uassign[k] = v
	}
	for k, v := range s.massign {
		snap.massign[k] = v
	}
	return snap
}

// RestoreAssignment resets the assignment tables to a saved checkpoint.
func (s *State) RestoreAssignment(snap AssignmentSnapshot) {
	s.uassign = make(map[int]*term.Level, len(snap.uassign))
	for k, v := range snap.uassign {
		s.uassign[k] = v
	}
	s.massign = make(map[int]*term.Expr, len(snap.massign))
	for k, v := range snap.massign {
		s.massign[k] = v
	}
}

// Clone returns an independent copy of the whole state for use as a choice
// point. The copy shares no mutable structure with the receiver: expression
// nodes are immutable and may be shared freely, tables may not.
func (s *State) Clone() *State {
	c := &State{
		hyps:     append([]Hypothesis(nil), s.hyps...),
		metavars: append([]MetavarDecl(nil), s.metavars...),
		uassign:  make(map[int]*term.Level, len(s.uassign)),
		massign:  make(map[int]*term.Expr, len(s.massign)),
		steps:    append([]ProofStep(nil), s.steps...),
		depth:    s.depth,
		target:   s.target,
		nextUref: s.nextUref,
	}
	// Context slices are replaced wholesale on restriction, never mutated in
	// place, so the declaration copies may share their backing arrays.
	for k, v := range s.uassign {
		c.uassign[k] = v
	}
	for k, v := range s.massign {
		c.massign[k] = v
	}
	return c
}
