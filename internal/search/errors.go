package search

import (
	"fmt"

	"github.com/orizon-lang/orizon-prover/internal/term"
)

// IllFormedGoalError reports that the input goal mentions a local constant
// that is not resolvable within the known context. Fatal: the search aborts
// before it starts.
type IllFormedGoalError struct {
	Term *term.Expr
}

func (e *IllFormedGoalError) Error() string {
	return fmt.Sprintf("ill-formed goal: local constant %s is not declared in the context", e.Term)
}

// UnsupportedMetavarOccurrenceError reports a metavariable application that
// does not fit the higher-order-pattern restriction, or whose argument prefix
// diverges from an earlier occurrence. Fatal: the search aborts before it
// starts.
type UnsupportedMetavarOccurrenceError struct {
	Term *term.Expr
}

func (e *UnsupportedMetavarOccurrenceError) Error() string {
	return fmt.Sprintf("goal contains an unsupported metavariable application: %s", e.Term)
}
