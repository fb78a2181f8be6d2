package term

// ForEach applies fn to every node of e in preorder. The second argument is
// the number of binders enclosing the node. If fn returns false the children
// of the node are not visited.
func ForEach(e *Expr, fn func(e *Expr, offset int) bool) {
	forEach(e, 0, fn)
}

func forEach(e *Expr, offset int, fn func(e *Expr, offset int) bool) {
	if e == nil || !fn(e, offset) {
		return
	}
	switch e.Kind {
	case ExprApp:
		d := e.Data.(*AppExpr)
		forEach(d.Fn, offset, fn)
		forEach(d.Arg, offset, fn)
	case ExprLambda, ExprPi:
		d := e.Data.(*BindingExpr)
		forEach(d.Type, offset, fn)
		forEach(d.Body, offset+1, fn)
	case ExprMacro:
		for _, a := range e.Data.(*MacroExpr).Args {
			forEach(a, offset, fn)
		}
	case ExprLocal:
		forEach(e.Data.(*LocalExpr).Type, offset, fn)
	case ExprMeta:
		forEach(e.Data.(*MetaExpr).Type, offset, fn)
	}
}

// Closed reports whether e contains no loose bound variables.
func Closed(e *Expr) bool {
	closed := true
	ForEach(e, func(n *Expr, offset int) bool {
		if !closed {
			return false
		}
		if n.Kind == ExprVar && n.Data.(*VarExpr).Index >= offset {
			closed = false
			return false
		}
		return true
	})
	return closed
}

// replace rebuilds e, substituting nodes according to fn. fn receives each
// node with its binder offset and returns a replacement or nil to descend.
func replace(e *Expr, offset int, fn func(e *Expr, offset int) *Expr) *Expr {
	if e == nil {
		return nil
	}
	if r := fn(e, offset); r != nil {
		return r
	}
	switch e.Kind {
	case ExprApp:
		d := e.Data.(*AppExpr)
		nf := replace(d.Fn, offset, fn)
		na := replace(d.Arg, offset, fn)
		if nf == d.Fn && na == d.Arg {
			return e
		}
		return &Expr{Kind: ExprApp, Data: &AppExpr{Fn: nf, Arg: na}}
	case ExprLambda, ExprPi:
		d := e.Data.(*BindingExpr)
		nt := replace(d.Type, offset, fn)
		nb := replace(d.Body, offset+1, fn)
		if nt == d.Type && nb == d.Body {
			return e
		}
		return &Expr{Kind: e.Kind, Data: &BindingExpr{Name: d.Name, Type: nt, Body: nb, Info: d.Info}}
	case ExprMacro:
		d := e.Data.(*MacroExpr)
		changed := false
		args := make([]*Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = replace(a, offset, fn)
			changed = changed || args[i] != a
		}
		if !changed {
			return e
		}
		return MkMacro(d.Tag, args)
	case ExprLocal:
		d := e.Data.(*LocalExpr)
		nt := replace(d.Type, offset, fn)
		if nt == d.Type {
			return e
		}
		return MkLocal(d.Name, d.PPName, nt)
	case ExprMeta:
		d := e.Data.(*MetaExpr)
		nt := replace(d.Type, offset, fn)
		if nt == d.Type {
			return e
		}
		return MkMeta(d.Name, nt)
	default:
		return e
	}
}

// Replace rebuilds e top-down, substituting nodes for which fn returns a
// non-nil expression. Returned replacements are not revisited.
func Replace(e *Expr, fn func(e *Expr, offset int) *Expr) *Expr {
	return replace(e, 0, fn)
}

// Lift shifts every loose bound variable with index >= start by amount.
func Lift(e *Expr, start, amount int) *Expr {
	if amount == 0 {
		return e
	}
	return replace(e, 0, func(n *Expr, offset int) *Expr {
		if n.Kind != ExprVar {
			return nil
		}
		idx := n.Data.(*VarExpr).Index
		if idx < start+offset {
			return n
		}
		return MkVar(idx + amount)
	})
}

// Instantiate substitutes v for the outermost bound variable of body and
// lowers the remaining loose variables by one.
func Instantiate(body, v *Expr) *Expr {
	return replace(body, 0, func(n *Expr, offset int) *Expr {
		if n.Kind != ExprVar {
			return nil
		}
		idx := n.Data.(*VarExpr).Index
		switch {
		case idx == offset:
			return Lift(v, 0, offset)
		case idx > offset:
			return MkVar(idx - 1)
		default:
			return n
		}
	})
}

// AbstractHrefs turns occurrences of the given hypothesis references into
// bound variables for a telescope of len(indices) binders: indices[j] maps to
// de Bruijn index len(indices)-1-j at the top level. Loose variables already
// present in e are not adjusted; callers abstract closed terms.
func AbstractHrefs(e *Expr, indices []int) *Expr {
	if len(indices) == 0 {
		return e
	}
	pos := make(map[int]int, len(indices))
	for j, idx := range indices {
		pos[idx] = len(indices) - 1 - j
	}
	return replace(e, 0, func(n *Expr, offset int) *Expr {
		if n.Kind != ExprHref {
			return nil
		}
		if p, ok := pos[RefIndex(n)]; ok {
			return MkVar(p + offset)
		}
		return n
	})
}
