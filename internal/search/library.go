package search

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/orizon-lang/orizon-prover/internal/term"
)

// Library resolves hint lemmas against the host environment. Fetching and
// normalizing a lemma statement is an external-type-checker round trip, so
// the result is memoized; concurrent searches interested in the same lemma
// share one in-flight resolution.
type Library struct {
	norm  Normalizer
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*term.Expr
}

// Fetcher retrieves the external statement of a named lemma.
type Fetcher func(name string) (*term.Expr, error)

// NewLibrary returns an empty library normalizing through norm.
func NewLibrary(norm Normalizer) *Library {
	return &Library{
		norm:  norm,
		cache: make(map[string]*term.Expr),
	}
}

// HintType returns the normalized statement of the named lemma, resolving it
// through fetch on first use. Safe for concurrent use across searches; the
// returned expressions are immutable and still external (each search
// internalizes them into its own state).
func (l *Library) HintType(name string, fetch Fetcher) (*term.Expr, error) {
	l.mu.RLock()
	if e, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return e, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do(name, func() (interface{}, error) {
		stmt, err := fetch(name)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch lemma %s", name)
		}
		norm, err := l.norm.Normalize(stmt)
		if err != nil {
			return nil, errors.Wrapf(err, "normalize lemma %s", name)
		}
		l.mu.Lock()
		l.cache[name] = norm
		l.mu.Unlock()
		return norm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*term.Expr), nil
}
