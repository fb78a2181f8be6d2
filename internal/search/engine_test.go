package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
	"github.com/orizon-lang/orizon-prover/internal/unify"
)

func TestProveByAssumption(t *testing.T) {
	a := term.MkConst("A")
	h := term.MkLocal("l.h", "h", a)
	goal := Goal{Hyps: []*term.Expr{h}, Target: a}

	proof, ok, err := New(DefaultConfig(), NopNormalizer{}).Prove(goal)
	require.NoError(t, err)
	require.True(t, ok, "expected a proof")
	assert.True(t, term.Equal(proof, h), "proof must be the provenance local of h, got %s", proof)
}

func TestProveIdentityFunction(t *testing.T) {
	a := term.MkConst("A")
	goal := Goal{Target: term.MkPi("x", a, a, term.BinderDefault)}

	proof, ok, err := New(DefaultConfig(), NopNormalizer{}).Prove(goal)
	require.NoError(t, err)
	require.True(t, ok, "expected a proof")

	want := term.MkLambda("x", a, term.MkVar(0), term.BinderDefault)
	assert.True(t, term.Equal(proof, want), "expected %s, got %s", want, proof)
}

func TestProveNestedArrow(t *testing.T) {
	// A -> B -> A: intros introduces both binders, assumption picks the
	// first hypothesis.
	a := term.MkConst("A")
	b := term.MkConst("B")
	goal := Goal{Target: term.MkPi("x", a, term.MkPi("y", b, a, term.BinderDefault), term.BinderDefault)}

	proof, ok, err := New(DefaultConfig(), NopNormalizer{}).Prove(goal)
	require.NoError(t, err)
	require.True(t, ok)

	want := term.MkLambda("x", a,
		term.MkLambda("y", b, term.MkVar(1), term.BinderDefault),
		term.BinderDefault)
	assert.True(t, term.Equal(proof, want), "expected %s, got %s", want, proof)
}

func TestSearchExhaustion(t *testing.T) {
	// Atomic target, no matching hypothesis: every depth must be exhausted
	// and reported as a normal empty result.
	goal := Goal{
		Hyps:   []*term.Expr{term.MkLocal("l.h", "h", term.MkConst("B"))},
		Target: term.MkConst("A"),
	}

	proof, ok, err := New(DefaultConfig(), NopNormalizer{}).Prove(goal)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, proof)
}

func TestDeepeningCompleteness(t *testing.T) {
	// Three activations are needed before assumption can fire, so the
	// proof takes three depth-consuming actions.
	a := term.MkConst("A")
	goal := Goal{
		Hyps: []*term.Expr{
			term.MkLocal("l.h0", "h0", term.MkConst("B")),
			term.MkLocal("l.h1", "h1", term.MkConst("C")),
			term.MkLocal("l.h2", "h2", a),
		},
		Target: a,
	}

	t.Run("FindsProofWithEnoughDepth", func(t *testing.T) {
		cfg := Config{MaxDepth: 3, InitDepth: 1, IncDepth: 1}
		_, ok, err := New(cfg, NopNormalizer{}).Prove(goal)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ExhaustsBelowRequiredDepth", func(t *testing.T) {
		cfg := Config{MaxDepth: 2, InitDepth: 1, IncDepth: 1}
		_, ok, err := New(cfg, NopNormalizer{}).Prove(goal)
		require.NoError(t, err)
		assert.False(t, ok, "must report exhaustion, not a false success")
	})
}

func TestInitDepthAboveMaxFailsImmediately(t *testing.T) {
	a := term.MkConst("A")
	goal := Goal{Hyps: []*term.Expr{term.MkLocal("l.h", "h", a)}, Target: a}

	cfg := Config{MaxDepth: 1, InitDepth: 10, IncDepth: 1}
	proof, ok, err := New(cfg, NopNormalizer{}).Prove(goal)
	require.NoError(t, err)
	assert.False(t, ok, "no search may be performed")
	assert.Nil(t, proof)
}

func TestConfigValidation(t *testing.T) {
	t.Run("FromOptions", func(t *testing.T) {
		cfg, err := ConfigFromOptions(map[string]string{
			OptionMaxDepth:  "64",
			OptionInitDepth: "2",
		})
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.MaxDepth)
		assert.Equal(t, 2, cfg.InitDepth)
		assert.Equal(t, DefaultIncDepth, cfg.IncDepth)
	})

	t.Run("RejectsMalformedValue", func(t *testing.T) {
		_, err := ConfigFromOptions(map[string]string{OptionMaxDepth: "many"})
		assert.Error(t, err)
	})

	t.Run("RejectsNonPositiveDepth", func(t *testing.T) {
		_, err := ConfigFromOptions(map[string]string{OptionIncDepth: "0"})
		assert.Error(t, err)
	})
}

func TestChoicePointBacktracking(t *testing.T) {
	// The current branch is stuck; the saved alternative closes by
	// assumption. searchUpto must resume it.
	a := term.MkConst("A")
	ext := term.MkLocal("l.h", "h", a)

	stuck := sequent.NewState()
	stuck.MkHypothesis("h", a, ext)
	stuck.Activate(0)
	stuck.SetTarget(term.MkConst("B"))

	alt := stuck.Clone()
	alt.SetTarget(a)

	e := New(DefaultConfig(), NopNormalizer{})
	e.uctx = unify.NewStateContext(alt, e.env)
	e.pool = unify.NewPool(e.env)
	e.setState(alt)
	e.pushChoicePoint()
	e.setState(stuck)

	proof, found := e.searchUpto(5)
	require.True(t, found, "expected the alternative branch to close")
	assert.True(t, term.Equal(proof, term.MkHref(0)))
	assert.Empty(t, e.choicePoints)
}

func TestProveAll(t *testing.T) {
	a := term.MkConst("A")
	goals := []Goal{
		{Hyps: []*term.Expr{term.MkLocal("l.h", "h", a)}, Target: a},
		{Target: term.MkConst("Unprovable")},
		{Target: term.MkPi("x", a, a, term.BinderDefault)},
	}

	results, err := ProveAll(context.Background(), DefaultConfig(), NopNormalizer{}, goals)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Ok)
	assert.False(t, results[1].Ok)
	assert.True(t, results[2].Ok)
}

func TestProveAllPropagatesFatalErrors(t *testing.T) {
	goals := []Goal{
		// Unmapped local in the target: fatal before search.
		{Target: term.MkLocal("l.x", "x", term.MkConst("A"))},
	}
	_, err := ProveAll(context.Background(), DefaultConfig(), NopNormalizer{}, goals)
	require.Error(t, err)
	var illFormed *IllFormedGoalError
	assert.ErrorAs(t, err, &illFormed)
}

func TestLibraryMemoizesHints(t *testing.T) {
	lib := NewLibrary(NopNormalizer{})
	fetches := 0
	fetch := func(name string) (*term.Expr, error) {
		fetches++
		return term.MkConst(name), nil
	}

	first, err := lib.HintType("and_intro", fetch)
	require.NoError(t, err)
	second, err := lib.HintType("and_intro", fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, fetches, "resolution must run once")
	assert.True(t, term.Equal(first, second))
}

func TestExtractorReexternalizesUnassigned(t *testing.T) {
	s := sequent.NewState()
	m := s.MkMetavarAll(term.MkConst("A"))

	got := newExtractor(s).expr(term.MkApp(term.MkConst("f"), m))
	fn, args := term.GetAppArgs(got)
	require.True(t, term.Equal(fn, term.MkConst("f")))
	require.Len(t, args, 1)
	assert.Equal(t, term.ExprMeta, args[0].Kind,
		"unassigned mref must come back as a fresh external metavariable")
}
