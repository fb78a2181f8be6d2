package term

import (
	"testing"
)

func TestRefInterning(t *testing.T) {
	t.Run("HrefIdentity", func(t *testing.T) {
		if MkHref(3) != MkHref(3) {
			t.Error("expected interned href nodes to be identical")
		}
		if MkHref(3) == MkHref(4) {
			t.Error("expected distinct indices to produce distinct nodes")
		}
	})

	t.Run("MrefIdentity", func(t *testing.T) {
		if MkMref(0) != MkMref(0) {
			t.Error("expected interned mref nodes to be identical")
		}
		if IsHref(MkMref(0)) {
			t.Error("mref must not classify as href")
		}
	})

	t.Run("UrefIdentity", func(t *testing.T) {
		if MkUref(7) != MkUref(7) {
			t.Error("expected interned uref nodes to be identical")
		}
		if UrefIndex(MkUref(7)) != 7 {
			t.Errorf("expected index 7, got %d", UrefIndex(MkUref(7)))
		}
	})
}

func TestAppSpine(t *testing.T) {
	f := MkConst("f")
	a := MkConst("a")
	b := MkConst("b")
	e := MkApp(f, a, b)

	fn, args := GetAppArgs(e)
	if fn != f {
		t.Fatalf("expected head f, got %s", fn)
	}
	if len(args) != 2 || args[0] != a || args[1] != b {
		t.Fatalf("unexpected spine arguments: %v", args)
	}
	if GetAppFn(e) != f {
		t.Error("GetAppFn disagrees with GetAppArgs")
	}
}

func TestClosed(t *testing.T) {
	a := MkConst("A")

	t.Run("ClosedLambda", func(t *testing.T) {
		id := MkLambda("x", a, MkVar(0), BinderDefault)
		if !Closed(id) {
			t.Error("identity lambda must be closed")
		}
	})

	t.Run("LooseVariable", func(t *testing.T) {
		if Closed(MkVar(0)) {
			t.Error("bare de Bruijn variable must not be closed")
		}
		dangling := MkLambda("x", a, MkVar(1), BinderDefault)
		if Closed(dangling) {
			t.Error("variable escaping its binder must not be closed")
		}
	})
}

func TestInstantiate(t *testing.T) {
	a := MkConst("A")
	c := MkConst("c")

	t.Run("Simple", func(t *testing.T) {
		body := MkApp(MkConst("f"), MkVar(0))
		got := Instantiate(body, c)
		want := MkApp(MkConst("f"), c)
		if !Equal(got, want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("UnderBinder", func(t *testing.T) {
		// fun y : A => #1  with #1 pointing past the lambda.
		body := MkLambda("y", a, MkVar(1), BinderDefault)
		got := Instantiate(body, c)
		want := MkLambda("y", a, c, BinderDefault)
		if !Equal(got, want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("LowersOuterVariables", func(t *testing.T) {
		got := Instantiate(MkVar(1), c)
		if !Equal(got, MkVar(0)) {
			t.Errorf("expected #0, got %s", got)
		}
	})
}

func TestAbstractHrefs(t *testing.T) {
	h0 := MkHref(0)
	h1 := MkHref(1)

	t.Run("TelescopeOrder", func(t *testing.T) {
		e := MkApp(MkConst("f"), h0, h1)
		got := AbstractHrefs(e, []int{0, 1})
		// First telescope entry binds the outermost lambda.
		want := MkApp(MkConst("f"), MkVar(1), MkVar(0))
		if !Equal(got, want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("UnderBinder", func(t *testing.T) {
		e := MkLambda("y", MkConst("A"), h0, BinderDefault)
		got := AbstractHrefs(e, []int{0})
		want := MkLambda("y", MkConst("A"), MkVar(1), BinderDefault)
		if !Equal(got, want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestMetaClassification(t *testing.T) {
	m := MkMeta("m", MkConst("A"))
	if !IsMeta(m) {
		t.Error("bare metavariable must classify as meta")
	}
	if !IsMeta(MkApp(m, MkConst("a"))) {
		t.Error("applied metavariable must classify as meta")
	}
	if IsMeta(MkApp(MkConst("f"), MkConst("a"))) {
		t.Error("constant application must not classify as meta")
	}
}

func TestLevelEqual(t *testing.T) {
	if !LevelEqual(MkMax(MkLevelParam("u"), MkLevelZero()), MkMax(MkLevelParam("u"), MkLevelZero())) {
		t.Error("structurally equal levels must compare equal")
	}
	if LevelEqual(MkSucc(MkLevelZero()), MkLevelZero()) {
		t.Error("distinct levels must not compare equal")
	}
}
