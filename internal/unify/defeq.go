package unify

import (
	"github.com/orizon-lang/orizon-prover/internal/term"
)

// IsDefEq reports whether a and b are definitionally equal under the context,
// possibly assigning unassigned universe variables and metavariables. The
// attempt is transactional: assignments are kept only on success.
func IsDefEq(ctx Context, a, b *term.Expr) bool {
	ctx.Push()
	if isDefEqCore(ctx, a, b) {
		ctx.Commit()
		return true
	}
	ctx.Pop()
	return false
}

// resolveExpr follows metavariable assignments at the head of e.
func resolveExpr(ctx Context, e *term.Expr) *term.Expr {
	for ctx.IsMvar(e) {
		v, ok := ctx.ExprAssignment(e)
		if !ok {
			return e
		}
		e = v
	}
	return e
}

// resolveLevel follows universe assignments at the head of l.
func resolveLevel(ctx Context, l *term.Level) *term.Level {
	for ctx.IsUvar(l) {
		v, ok := ctx.LevelAssignment(l)
		if !ok {
			return l
		}
		l = v
	}
	return l
}

// instantiateAssigned replaces assigned metavariables in e with their
// values, recursively. Validating and storing the instantiated form keeps
// the assignment table acyclic: a transitive cycle through other
// metavariables surfaces as a direct self-occurrence.
func instantiateAssigned(ctx Context, e *term.Expr) *term.Expr {
	return term.Replace(e, func(n *term.Expr, _ int) *term.Expr {
		if ctx.IsMvar(n) {
			if v, ok := ctx.ExprAssignment(n); ok {
				return instantiateAssigned(ctx, v)
			}
		}
		return nil
	})
}

func tryAssignExpr(ctx Context, m, v *term.Expr) bool {
	v = instantiateAssigned(ctx, v)
	if !ctx.ValidateAssignment(m, nil, v) {
		return false
	}
	ctx.AssignExpr(m, v)
	return true
}

func isDefEqCore(ctx Context, a, b *term.Expr) bool {
	a = resolveExpr(ctx, a)
	b = resolveExpr(ctx, b)
	if term.Equal(a, b) {
		return true
	}

	// Flex cases: assign an unassigned metavariable to the other side.
	if ctx.IsMvar(a) {
		return tryAssignExpr(ctx, a, b)
	}
	if ctx.IsMvar(b) {
		return tryAssignExpr(ctx, b, a)
	}

	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case term.ExprApp:
		ad, bd := a.Data.(*term.AppExpr), b.Data.(*term.AppExpr)
		return isDefEqCore(ctx, ad.Fn, bd.Fn) && isDefEqCore(ctx, ad.Arg, bd.Arg)
	case term.ExprLambda, term.ExprPi:
		ad, bd := a.Data.(*term.BindingExpr), b.Data.(*term.BindingExpr)
		return isDefEqCore(ctx, ad.Type, bd.Type) && isDefEqCore(ctx, ad.Body, bd.Body)
	case term.ExprSort:
		return isLevelDefEq(ctx,
			a.Data.(*term.SortExpr).Level,
			b.Data.(*term.SortExpr).Level)
	case term.ExprConst:
		ad, bd := a.Data.(*term.ConstExpr), b.Data.(*term.ConstExpr)
		// No delta here: extra-opaque names are never unfolded, and the
		// substrate has no definitions to unfold for the rest; inputs are
		// normalized before internalization.
		if ad.Name != bd.Name || len(ad.Levels) != len(bd.Levels) {
			return false
		}
		for i := range ad.Levels {
			if !isLevelDefEq(ctx, ad.Levels[i], bd.Levels[i]) {
				return false
			}
		}
		return true
	case term.ExprMacro:
		ad, bd := a.Data.(*term.MacroExpr), b.Data.(*term.MacroExpr)
		if ad.Tag != bd.Tag || len(ad.Args) != len(bd.Args) {
			return false
		}
		for i := range ad.Args {
			if !isDefEqCore(ctx, ad.Args[i], bd.Args[i]) {
				return false
			}
		}
		return true
	default:
		// Var, Local, Href, Meta: structural equality already failed.
		return false
	}
}

// isLevelDefEq unifies two universe levels, assigning unassigned universe
// variables as needed.
func isLevelDefEq(ctx Context, a, b *term.Level) bool {
	a = resolveLevel(ctx, a)
	b = resolveLevel(ctx, b)
	if term.LevelEqual(a, b) {
		return true
	}
	if ctx.IsUvar(a) {
		ctx.AssignLevel(a, b)
		return true
	}
	if ctx.IsUvar(b) {
		ctx.AssignLevel(b, a)
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case term.LevelSucc:
		return isLevelDefEq(ctx, term.SuccOf(a), term.SuccOf(b))
	case term.LevelMax, term.LevelIMax:
		al, ar := term.MaxArgs(a)
		bl, br := term.MaxArgs(b)
		return isLevelDefEq(ctx, al, bl) && isLevelDefEq(ctx, ar, br)
	default:
		return false
	}
}
