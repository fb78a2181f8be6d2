package term

import (
	"fmt"
	"strings"
	"sync"
)

// ExprKind represents the kind of an expression node.
type ExprKind int

const (
	ExprVar ExprKind = iota
	ExprConst
	ExprApp
	ExprLambda
	ExprPi
	ExprSort
	ExprMacro
	ExprLocal
	ExprMeta
	ExprHref
	ExprMref
)

// BinderInfo describes how a binder was declared.
type BinderInfo int

const (
	BinderDefault BinderInfo = iota
	BinderImplicit
	BinderInstImplicit
)

// Expr represents an expression. Expressions are immutable once constructed;
// sharing subterms between expressions is always safe.
type Expr struct {
	Kind ExprKind
	Data interface{}
}

// VarExpr is the payload of a bound (de Bruijn) variable.
type VarExpr struct {
	Index int
}

// ConstExpr is the payload of a constant reference with universe arguments.
type ConstExpr struct {
	Name   string
	Levels []*Level
}

// AppExpr is the payload of a binary application node.
type AppExpr struct {
	Fn  *Expr
	Arg *Expr
}

// BindingExpr is the payload of lambda and Pi nodes.
type BindingExpr struct {
	Name string
	Type *Expr
	Body *Expr
	Info BinderInfo
}

// SortExpr is the payload of a sort node.
type SortExpr struct {
	Level *Level
}

// MacroExpr is the payload of an opaque macro node.
type MacroExpr struct {
	Tag  string
	Args []*Expr
}

// LocalExpr is the payload of an external local constant. Name uniquely
// identifies the local within the host framework; PPName is its display name.
type LocalExpr struct {
	Name   string
	PPName string
	Type   *Expr
}

// MetaExpr is the payload of an external metavariable, with its type inline.
type MetaExpr struct {
	Name string
	Type *Expr
}

// RefExpr is the payload of Href and Mref nodes: an index into the hypothesis
// or metavariable table of one sequent state.
type RefExpr struct {
	Index int
}

var (
	hrefPool  = make(map[int]*Expr)
	mrefPool  = make(map[int]*Expr)
	refPoolMu sync.RWMutex
)

func internRef(pool map[int]*Expr, kind ExprKind, index int) *Expr {
	refPoolMu.RLock()
	if e, ok := pool[index]; ok {
		refPoolMu.RUnlock()
		return e
	}
	refPoolMu.RUnlock()

	refPoolMu.Lock()
	defer refPoolMu.Unlock()
	if e, ok := pool[index]; ok {
		return e
	}
	e := &Expr{Kind: kind, Data: &RefExpr{Index: index}}
	pool[index] = e
	return e
}

// MkVar returns a bound variable with the given de Bruijn index.
func MkVar(index int) *Expr {
	return &Expr{Kind: ExprVar, Data: &VarExpr{Index: index}}
}

// MkConst returns a constant reference.
func MkConst(name string, levels ...*Level) *Expr {
	return &Expr{Kind: ExprConst, Data: &ConstExpr{Name: name, Levels: levels}}
}

// MkApp applies fn to the given arguments, left-associated.
func MkApp(fn *Expr, args ...*Expr) *Expr {
	e := fn
	for _, a := range args {
		e = &Expr{Kind: ExprApp, Data: &AppExpr{Fn: e, Arg: a}}
	}
	return e
}

// MkLambda returns a lambda abstraction.
func MkLambda(name string, typ, body *Expr, info BinderInfo) *Expr {
	return &Expr{Kind: ExprLambda, Data: &BindingExpr{Name: name, Type: typ, Body: body, Info: info}}
}

// MkPi returns a dependent function type.
func MkPi(name string, typ, body *Expr, info BinderInfo) *Expr {
	return &Expr{Kind: ExprPi, Data: &BindingExpr{Name: name, Type: typ, Body: body, Info: info}}
}

// MkArrow returns a non-dependent function type from a to b.
func MkArrow(a, b *Expr) *Expr {
	return MkPi("a", a, Lift(b, 0, 1), BinderDefault)
}

// MkSort returns a sort with the given universe level.
func MkSort(level *Level) *Expr {
	return &Expr{Kind: ExprSort, Data: &SortExpr{Level: level}}
}

// MkProp returns the sort of propositions.
func MkProp() *Expr { return MkSort(MkLevelZero()) }

// MkMacro returns an opaque macro node.
func MkMacro(tag string, args []*Expr) *Expr {
	return &Expr{Kind: ExprMacro, Data: &MacroExpr{Tag: tag, Args: args}}
}

// MkLocal returns an external local constant.
func MkLocal(name, ppName string, typ *Expr) *Expr {
	return &Expr{Kind: ExprLocal, Data: &LocalExpr{Name: name, PPName: ppName, Type: typ}}
}

// MkMeta returns an external metavariable with its type inline.
func MkMeta(name string, typ *Expr) *Expr {
	return &Expr{Kind: ExprMeta, Data: &MetaExpr{Name: name, Type: typ}}
}

// MkHref returns the interned hypothesis reference for the given index.
func MkHref(index int) *Expr { return internRef(hrefPool, ExprHref, index) }

// MkMref returns the interned metavariable reference for the given index.
func MkMref(index int) *Expr { return internRef(mrefPool, ExprMref, index) }

// IsHref reports whether e is an internal hypothesis reference.
func IsHref(e *Expr) bool { return e != nil && e.Kind == ExprHref }

// IsMref reports whether e is an internal metavariable reference.
func IsMref(e *Expr) bool { return e != nil && e.Kind == ExprMref }

// IsLocal reports whether e is an external local constant.
func IsLocal(e *Expr) bool { return e != nil && e.Kind == ExprLocal }

// IsMeta reports whether e is an external metavariable, bare or applied.
func IsMeta(e *Expr) bool {
	for e != nil && e.Kind == ExprApp {
		e = e.Data.(*AppExpr).Fn
	}
	return e != nil && e.Kind == ExprMeta
}

// RefIndex returns the index of an Href or Mref node.
func RefIndex(e *Expr) int { return e.Data.(*RefExpr).Index }

// LocalName returns the unique name of an external local constant.
func LocalName(e *Expr) string { return e.Data.(*LocalExpr).Name }

// GetAppFn returns the head of an application spine.
func GetAppFn(e *Expr) *Expr {
	for e.Kind == ExprApp {
		e = e.Data.(*AppExpr).Fn
	}
	return e
}

// GetAppArgs returns the head and arguments of an application spine.
func GetAppArgs(e *Expr) (*Expr, []*Expr) {
	var rev []*Expr
	for e.Kind == ExprApp {
		d := e.Data.(*AppExpr)
		rev = append(rev, d.Arg)
		e = d.Fn
	}
	args := make([]*Expr, len(rev))
	for i, a := range rev {
		args[len(rev)-1-i] = a
	}
	return e, args
}

// Equal reports structural equality of two expressions.
func Equal(a, b *Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ExprVar:
		return a.Data.(*VarExpr).Index == b.Data.(*VarExpr).Index
	case ExprConst:
		ad, bd := a.Data.(*ConstExpr), b.Data.(*ConstExpr)
		if ad.Name != bd.Name || len(ad.Levels) != len(bd.Levels) {
			return false
		}
		for i := range ad.Levels {
			if !LevelEqual(ad.Levels[i], bd.Levels[i]) {
				return false
			}
		}
		return true
	case ExprApp:
		ad, bd := a.Data.(*AppExpr), b.Data.(*AppExpr)
		return Equal(ad.Fn, bd.Fn) && Equal(ad.Arg, bd.Arg)
	case ExprLambda, ExprPi:
		ad, bd := a.Data.(*BindingExpr), b.Data.(*BindingExpr)
		return Equal(ad.Type, bd.Type) && Equal(ad.Body, bd.Body)
	case ExprSort:
		return LevelEqual(a.Data.(*SortExpr).Level, b.Data.(*SortExpr).Level)
	case ExprMacro:
		ad, bd := a.Data.(*MacroExpr), b.Data.(*MacroExpr)
		if ad.Tag != bd.Tag || len(ad.Args) != len(bd.Args) {
			return false
		}
		for i := range ad.Args {
			if !Equal(ad.Args[i], bd.Args[i]) {
				return false
			}
		}
		return true
	case ExprLocal:
		return a.Data.(*LocalExpr).Name == b.Data.(*LocalExpr).Name
	case ExprMeta:
		return a.Data.(*MetaExpr).Name == b.Data.(*MetaExpr).Name
	case ExprHref, ExprMref:
		return RefIndex(a) == RefIndex(b)
	default:
		return false
	}
}

// String returns a readable rendering of the expression.
func (e *Expr) String() string {
	switch e.Kind {
	case ExprVar:
		return fmt.Sprintf("#%d", e.Data.(*VarExpr).Index)
	case ExprConst:
		d := e.Data.(*ConstExpr)
		if len(d.Levels) == 0 {
			return d.Name
		}
		parts := make([]string, len(d.Levels))
		for i, l := range d.Levels {
			parts[i] = l.String()
		}
		return fmt.Sprintf("%s.{%s}", d.Name, strings.Join(parts, " "))
	case ExprApp:
		fn, args := GetAppArgs(e)
		parts := make([]string, 0, len(args)+1)
		parts = append(parts, fn.String())
		for _, a := range args {
			parts = append(parts, a.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	case ExprLambda:
		d := e.Data.(*BindingExpr)
		return fmt.Sprintf("(fun %s : %s => %s)", d.Name, d.Type, d.Body)
	case ExprPi:
		d := e.Data.(*BindingExpr)
		return fmt.Sprintf("(Pi %s : %s, %s)", d.Name, d.Type, d.Body)
	case ExprSort:
		return fmt.Sprintf("Sort %s", e.Data.(*SortExpr).Level)
	case ExprMacro:
		d := e.Data.(*MacroExpr)
		parts := make([]string, 0, len(d.Args)+1)
		parts = append(parts, "["+d.Tag+"]")
		for _, a := range d.Args {
			parts = append(parts, a.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	case ExprLocal:
		return e.Data.(*LocalExpr).PPName
	case ExprMeta:
		return "?" + e.Data.(*MetaExpr).Name
	case ExprHref:
		return fmt.Sprintf("h!%d", RefIndex(e))
	case ExprMref:
		return fmt.Sprintf("?m%d", RefIndex(e))
	default:
		return "<bad-expr>"
	}
}
