package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/orizon-prover/internal/sequent"
	"github.com/orizon-lang/orizon-prover/internal/term"
)

func newTestContext(t *testing.T) (*StateContext, *sequent.State) {
	t.Helper()
	s := sequent.NewState()
	return NewStateContext(s, NewEnvironment()), s
}

func TestValidateAssignment(t *testing.T) {
	t.Run("RejectsHrefOutsideContext", func(t *testing.T) {
		ctx, s := newTestContext(t)
		h := s.MkHypothesis("h", term.MkConst("A"), nil)
		m := s.MkMetavar(nil, term.MkConst("A")) // empty context
		assert.False(t, ctx.ValidateAssignment(m, nil, h))
	})

	t.Run("AcceptsHrefInContext", func(t *testing.T) {
		ctx, s := newTestContext(t)
		h := s.MkHypothesis("h", term.MkConst("A"), nil)
		m := s.MkMetavar([]int{0}, term.MkConst("A"))
		assert.True(t, ctx.ValidateAssignment(m, nil, h))
	})

	t.Run("RejectsUnknownLocal", func(t *testing.T) {
		ctx, s := newTestContext(t)
		m := s.MkMetavarAll(term.MkConst("A"))
		stray := term.MkLocal("l0", "x", term.MkConst("A"))
		assert.False(t, ctx.ValidateAssignment(m, nil, stray))
		assert.True(t, ctx.ValidateAssignment(m, []*term.Expr{stray}, stray))
	})

	t.Run("RejectsSelfOccurrence", func(t *testing.T) {
		ctx, s := newTestContext(t)
		m := s.MkMetavarAll(term.MkConst("A"))
		assert.False(t, ctx.ValidateAssignment(m, nil, term.MkApp(term.MkConst("f"), m)))
	})

	t.Run("RejectsLooseBoundVariable", func(t *testing.T) {
		ctx, s := newTestContext(t)
		m := s.MkMetavarAll(term.MkConst("A"))
		assert.False(t, ctx.ValidateAssignment(m, nil, term.MkVar(0)))
		assert.False(t, ctx.ValidateAssignment(m, nil,
			term.MkApp(term.MkConst("f"), term.MkVar(2))))
	})

	t.Run("RestrictsOtherMetavarContexts", func(t *testing.T) {
		ctx, s := newTestContext(t)
		s.MkHypothesis("h0", term.MkConst("A"), nil)
		s.MkHypothesis("h1", term.MkConst("B"), nil)
		narrow := s.MkMetavar([]int{0}, term.MkConst("T"))
		wide := s.MkMetavar([]int{0, 1}, term.MkConst("T"))

		require.True(t, ctx.ValidateAssignment(narrow, nil, term.MkApp(term.MkConst("f"), wide)))

		decl, err := s.MetavarDeclOf(wide)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, decl.Context, "wide's context must be restricted to narrow's")
	})
}

func TestTransactionDiscipline(t *testing.T) {
	ctx, s := newTestContext(t)
	m := s.MkMetavarAll(term.MkConst("A"))

	ctx.Push()
	ctx.AssignExpr(m, term.MkConst("a"))
	ctx.Pop()
	_, ok := s.MrefAssignment(m)
	assert.False(t, ok, "pop must discard the assignment")

	ctx.Push()
	ctx.AssignExpr(m, term.MkConst("a"))
	ctx.Commit()
	v, ok := s.MrefAssignment(m)
	require.True(t, ok, "commit must keep the assignment")
	assert.True(t, term.Equal(v, term.MkConst("a")))
}

func TestIsDefEq(t *testing.T) {
	t.Run("Structural", func(t *testing.T) {
		ctx, _ := newTestContext(t)
		a := term.MkApp(term.MkConst("f"), term.MkConst("a"))
		assert.True(t, IsDefEq(ctx, a, term.MkApp(term.MkConst("f"), term.MkConst("a"))))
		assert.False(t, IsDefEq(ctx, a, term.MkApp(term.MkConst("g"), term.MkConst("a"))))
	})

	t.Run("AssignsFlexMetavar", func(t *testing.T) {
		ctx, s := newTestContext(t)
		m := s.MkMetavarAll(term.MkConst("A"))
		require.True(t, IsDefEq(ctx, m, term.MkConst("a")))
		v, ok := s.MrefAssignment(m)
		require.True(t, ok)
		assert.True(t, term.Equal(v, term.MkConst("a")))

		// Once assigned, the metavariable behaves like its value.
		assert.True(t, IsDefEq(ctx, m, term.MkConst("a")))
		assert.False(t, IsDefEq(ctx, m, term.MkConst("b")))
	})

	t.Run("FailureLeavesNoAssignments", func(t *testing.T) {
		ctx, s := newTestContext(t)
		m := s.MkMetavarAll(term.MkConst("A"))
		a := term.MkApp(term.MkConst("f"), m, term.MkConst("x"))
		b := term.MkApp(term.MkConst("f"), term.MkConst("c"), term.MkConst("y"))
		require.False(t, IsDefEq(ctx, a, b))
		_, ok := s.MrefAssignment(m)
		assert.False(t, ok, "failed unification must roll back partial assignments")
	})

	t.Run("UniverseVariables", func(t *testing.T) {
		ctx, s := newTestContext(t)
		u := s.MkUref()
		a := term.MkSort(u)
		b := term.MkSort(term.MkSucc(term.MkLevelZero()))
		require.True(t, IsDefEq(ctx, a, b))
		v, ok := s.UrefAssignment(u)
		require.True(t, ok)
		assert.True(t, term.LevelEqual(v, term.MkSucc(term.MkLevelZero())))
	})

	t.Run("SelfOccurrenceRejected", func(t *testing.T) {
		ctx, s := newTestContext(t)
		m := s.MkMetavarAll(term.MkConst("A"))
		assert.False(t, IsDefEq(ctx, m, term.MkApp(term.MkConst("f"), m)))
	})

	t.Run("LooseVariableUnderBinderRejected", func(t *testing.T) {
		ctx, s := newTestContext(t)
		a := term.MkConst("A")
		m := s.MkMetavarAll(a)
		flex := term.MkPi("x", a, m, term.BinderDefault)
		rigid := term.MkPi("x", a, term.MkVar(0), term.BinderDefault)

		require.False(t, IsDefEq(ctx, flex, rigid),
			"a bound variable must not escape its binder into an assignment")
		_, ok := s.MrefAssignment(m)
		assert.False(t, ok)
		assert.NoError(t, s.CheckInvariant())
	})

	t.Run("TransitiveCycleRejected", func(t *testing.T) {
		ctx, s := newTestContext(t)
		a := term.MkConst("A")
		m1 := s.MkMetavarAll(a)
		m2 := s.MkMetavarAll(a)

		require.True(t, IsDefEq(ctx, m1, term.MkApp(term.MkConst("g"), m2)))
		require.False(t, IsDefEq(ctx, m2, term.MkApp(term.MkConst("f"), m1)),
			"assigning m2 would close a cycle through m1")
		_, ok := s.MrefAssignment(m2)
		assert.False(t, ok)
		assert.NoError(t, s.CheckInvariant())
	})

	t.Run("AssignsInstantiatedValue", func(t *testing.T) {
		ctx, s := newTestContext(t)
		a := term.MkConst("A")
		m1 := s.MkMetavarAll(a)
		m2 := s.MkMetavarAll(a)

		require.True(t, IsDefEq(ctx, m1, term.MkConst("a")))
		require.True(t, IsDefEq(ctx, m2, term.MkApp(term.MkConst("f"), m1)))

		v, ok := s.MrefAssignment(m2)
		require.True(t, ok)
		want := term.MkApp(term.MkConst("f"), term.MkConst("a"))
		assert.True(t, term.Equal(v, want), "stored value must be instantiated, got %s", v)
	})
}

func TestScratchContext(t *testing.T) {
	env := NewEnvironment()
	s := sequent.NewState()
	h := s.MkHypothesis("h", term.MkConst("A"), nil)
	sm := s.MkMetavarAll(term.MkConst("A"))

	c := NewScratchContext(env, s)

	t.Run("DelegatesInternalRefs", func(t *testing.T) {
		typ, err := c.InferLocal(h)
		require.NoError(t, err)
		assert.True(t, term.Equal(typ, term.MkConst("A")))

		typ, err = c.InferMetavar(sm)
		require.NoError(t, err)
		assert.True(t, term.Equal(typ, term.MkConst("A")))
	})

	t.Run("TemporaryMetavarsAreSelfContained", func(t *testing.T) {
		tm := c.MkMvar(term.MkConst("B"))
		require.True(t, c.IsMvar(tm))
		assert.False(t, term.IsMref(tm), "temporary metavariables must not enter the state tables")

		typ, err := c.InferMetavar(tm)
		require.NoError(t, err)
		assert.True(t, term.Equal(typ, term.MkConst("B")))

		require.True(t, IsDefEq(c, tm, term.MkConst("b")))
		v, ok := c.ExprAssignment(tm)
		require.True(t, ok)
		assert.True(t, term.Equal(v, term.MkConst("b")))
		_, ok = s.MrefAssignment(sm)
		assert.False(t, ok, "state tables must stay untouched")
	})

	t.Run("ClearDropsEverything", func(t *testing.T) {
		tm := c.MkMvar(term.MkConst("B"))
		c.AssignExpr(tm, term.MkConst("b"))
		c.Clear()
		_, ok := c.ExprAssignment(tm)
		assert.False(t, ok)
	})
}

func TestPoolRecycling(t *testing.T) {
	env := NewEnvironment()
	p := NewPool(env)
	p.SetState(sequent.NewState())

	c1 := p.Acquire()
	tm := c1.MkMvar(term.MkConst("A"))
	c1.AssignExpr(tm, term.MkConst("a"))
	p.Release(c1)

	c2 := p.Acquire()
	assert.Same(t, c1, c2, "pool must recycle released contexts")
	_, ok := c2.ExprAssignment(tm)
	assert.False(t, ok, "recycled context must be cleared")
	p.Release(c2)
}

func TestBuildApp(t *testing.T) {
	env := NewEnvironment()
	s := sequent.NewState()
	c := NewScratchContext(env, s)

	a := term.MkConst("A")
	// f : Pi {T : Sort 1}, T -> T
	fTy := term.MkPi("T", term.MkSort(term.MkSucc(term.MkLevelZero())),
		term.MkPi("x", term.MkVar(0), term.MkVar(1), term.BinderDefault),
		term.BinderImplicit)
	f := term.MkConst("f")

	app, rest, err := BuildApp(c, f, fTy, term.MkConst("a"))
	require.NoError(t, err)

	fn, args := term.GetAppArgs(app)
	require.Equal(t, f, fn)
	require.Len(t, args, 2, "implicit binder must be filled with a fresh metavariable")
	assert.True(t, c.IsMvar(args[0]))
	assert.True(t, term.Equal(args[1], term.MkConst("a")))
	assert.True(t, c.IsMvar(rest), "result type is the implicit metavariable")

	t.Run("TooManyArguments", func(t *testing.T) {
		_, _, err := BuildApp(c, f, a, term.MkConst("a"))
		assert.Error(t, err)
	})
}
