// Package term implements the expression and universe-level grammar shared by
// the external (tactic-framework) and internal (search-local) representations.
// Internal references (href, mref, uref) are lightweight indices into the
// tables owned by a sequent state; external locals and metavariables carry
// their types inline.
package term

import (
	"fmt"
	"sync"
)

// LevelKind represents the kind of a universe level.
type LevelKind int

const (
	LevelZero LevelKind = iota
	LevelSucc
	LevelMax
	LevelIMax
	LevelParam
	LevelGlobal
	LevelMeta
	LevelUref
)

// Level represents a universe level. Levels are immutable once constructed.
type Level struct {
	Kind LevelKind
	Data interface{}
}

// SuccLevel is the payload of a LevelSucc node.
type SuccLevel struct {
	Of *Level
}

// MaxLevel is the payload of LevelMax and LevelIMax nodes.
type MaxLevel struct {
	LHS *Level
	RHS *Level
}

// NamedLevel is the payload of LevelParam, LevelGlobal, and LevelMeta nodes.
type NamedLevel struct {
	Name string
}

// UrefLevel is the payload of a LevelUref node: an index into the universe
// assignment table of one sequent state.
type UrefLevel struct {
	Index int
}

var levelZero = &Level{Kind: LevelZero}

// Uref nodes are interned so that structural identity of references is cheap
// value identity, mirroring the string pool in the compiler's core types.
var (
	urefPool   = make(map[int]*Level)
	urefPoolMu sync.RWMutex
)

// MkLevelZero returns the zero universe.
func MkLevelZero() *Level { return levelZero }

// MkSucc returns the successor of l.
func MkSucc(l *Level) *Level {
	return &Level{Kind: LevelSucc, Data: &SuccLevel{Of: l}}
}

// MkMax returns the max of two levels.
func MkMax(lhs, rhs *Level) *Level {
	return &Level{Kind: LevelMax, Data: &MaxLevel{LHS: lhs, RHS: rhs}}
}

// MkIMax returns the impredicative max of two levels.
func MkIMax(lhs, rhs *Level) *Level {
	return &Level{Kind: LevelIMax, Data: &MaxLevel{LHS: lhs, RHS: rhs}}
}

// MkLevelParam returns a universe parameter level.
func MkLevelParam(name string) *Level {
	return &Level{Kind: LevelParam, Data: &NamedLevel{Name: name}}
}

// MkLevelGlobal returns a global universe level.
func MkLevelGlobal(name string) *Level {
	return &Level{Kind: LevelGlobal, Data: &NamedLevel{Name: name}}
}

// MkLevelMeta returns an external universe metavariable level.
func MkLevelMeta(name string) *Level {
	return &Level{Kind: LevelMeta, Data: &NamedLevel{Name: name}}
}

// MkUref returns the interned uref node for the given index.
func MkUref(index int) *Level {
	urefPoolMu.RLock()
	if l, ok := urefPool[index]; ok {
		urefPoolMu.RUnlock()
		return l
	}
	urefPoolMu.RUnlock()

	urefPoolMu.Lock()
	defer urefPoolMu.Unlock()
	if l, ok := urefPool[index]; ok {
		return l
	}
	l := &Level{Kind: LevelUref, Data: &UrefLevel{Index: index}}
	urefPool[index] = l
	return l
}

// IsUref reports whether l is an internal universe reference.
func IsUref(l *Level) bool { return l != nil && l.Kind == LevelUref }

// UrefIndex returns the index of a uref node.
func UrefIndex(l *Level) int { return l.Data.(*UrefLevel).Index }

// SuccOf returns the argument of a successor level.
func SuccOf(l *Level) *Level { return l.Data.(*SuccLevel).Of }

// LevelName returns the name of a Param, Global, or Meta level.
func LevelName(l *Level) string { return l.Data.(*NamedLevel).Name }

// MaxArgs returns both arguments of a Max or IMax level.
func MaxArgs(l *Level) (*Level, *Level) {
	d := l.Data.(*MaxLevel)
	return d.LHS, d.RHS
}

// LevelEqual reports structural equality of two levels. Interned urefs
// additionally compare equal by pointer, which the walk exploits.
func LevelEqual(a, b *Level) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case LevelZero:
		return true
	case LevelSucc:
		return LevelEqual(SuccOf(a), SuccOf(b))
	case LevelMax, LevelIMax:
		al, ar := MaxArgs(a)
		bl, br := MaxArgs(b)
		return LevelEqual(al, bl) && LevelEqual(ar, br)
	case LevelParam, LevelGlobal, LevelMeta:
		return LevelName(a) == LevelName(b)
	case LevelUref:
		return UrefIndex(a) == UrefIndex(b)
	default:
		return false
	}
}

// String returns a readable rendering of the level.
func (l *Level) String() string {
	switch l.Kind {
	case LevelZero:
		return "0"
	case LevelSucc:
		return fmt.Sprintf("succ %s", SuccOf(l))
	case LevelMax:
		lhs, rhs := MaxArgs(l)
		return fmt.Sprintf("(max %s %s)", lhs, rhs)
	case LevelIMax:
		lhs, rhs := MaxArgs(l)
		return fmt.Sprintf("(imax %s %s)", lhs, rhs)
	case LevelParam:
		return LevelName(l)
	case LevelGlobal:
		return LevelName(l) + "!"
	case LevelMeta:
		return "?" + LevelName(l)
	case LevelUref:
		return fmt.Sprintf("?u%d", UrefIndex(l))
	default:
		return "<bad-level>"
	}
}
