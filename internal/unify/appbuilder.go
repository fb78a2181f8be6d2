package unify

import (
	"fmt"

	"github.com/orizon-lang/orizon-prover/internal/term"
)

// BuildApp applies fn (whose type is fnType, a Pi telescope) to the given
// explicit arguments, minting fresh metavariables for implicit binders along
// the way. It returns the application and its remaining type. Helper
// algorithms call this against a scratch context so the minted metavariables
// stay out of the search state.
func BuildApp(ctx Context, fn, fnType *term.Expr, args ...*term.Expr) (*term.Expr, *term.Expr, error) {
	app := fn
	typ := fnType
	for _, arg := range args {
		// Consume implicit binders with fresh metavariables.
		for typ.Kind == term.ExprPi {
			d := typ.Data.(*term.BindingExpr)
			if d.Info == term.BinderDefault {
				break
			}
			mv := ctx.MkMvar(d.Type)
			app = term.MkApp(app, mv)
			typ = term.Instantiate(d.Body, mv)
		}
		if typ.Kind != term.ExprPi {
			return nil, nil, fmt.Errorf("build app: %s does not expect another argument (type %s)", fn, typ)
		}
		d := typ.Data.(*term.BindingExpr)
		app = term.MkApp(app, arg)
		typ = term.Instantiate(d.Body, arg)
	}
	return app, typ, nil
}
