package tregex

import (
	"reflect"
	"strconv"
	"strings"
)

// Relation is a structural predicate between an anchor node a and a
// candidate node b, read "a REL b". Satisfies tests a pair; Candidates
// enumerates, in a fixed order, every b for which Satisfies(v, anchor, b)
// holds. Relations are immutable and safe for concurrent use.
type Relation interface {
	Symbol() string
	String() string
	Satisfies(v *View, a, b NodeID) bool
	Candidates(v *View, anchor NodeID) NodeIter

	// capabilities lists the pluggable values the relation closes over, for
	// RelationsEqual.
	capabilities() []any
}

// Capabilities are the pluggable collaborators some relations need.
type Capabilities struct {
	HeadFinder    HeadFinder
	BasicCategory BasicCategoryFunc
}

// simpleRelation is a relation without arguments or capabilities.
type simpleRelation struct {
	symbol     string
	satisfies  func(v *View, a, b NodeID) bool
	candidates func(v *View, anchor NodeID) NodeIter
}

func (r *simpleRelation) Symbol() string { return r.symbol }
func (r *simpleRelation) String() string { return r.symbol }

func (r *simpleRelation) capabilities() []any { return nil }

func (r *simpleRelation) Satisfies(v *View, a, b NodeID) bool {
	if a == NoNode || b == NoNode {
		return false
	}
	return r.satisfies(v, a, b)
}

func (r *simpleRelation) Candidates(v *View, anchor NodeID) NodeIter {
	if anchor == NoNode {
		return emptyIter{}
	}
	return r.candidates(v, anchor)
}

// RootRelation anchors a top-level pattern at the node being tested.
var RootRelation Relation = rootRelation

var simpleRelations = map[string]*simpleRelation{}

func registerSimple(rels ...*simpleRelation) {
	for _, r := range rels {
		simpleRelations[r.symbol] = r
	}
}

// relationAliases rewrites alternative spellings to a canonical symbol and
// argument.
var relationAliases = map[string][2]string{
	"$..": {"$++", ""},
	"$,,": {"$--", ""},
	"$.":  {"$+", ""},
	"$,":  {"$-", ""},
	"<,":  {"<", "1"},
	"<-":  {"<", "-1"},
	">,":  {">", "1"},
	">-":  {">", "-1"},
}

// GetRelation returns the relation named by symbol. Indexed child relations
// take the index as arg ("<" with "2", ">" with "-1"); unbroken path
// relations ("<+", ">+", ".+", ",+") take a node description such as "VP",
// "!NP", "@S" or "/^V/|NP". Relations built from the same symbol, argument
// and capabilities are equal under RelationsEqual.
func GetRelation(symbol, arg string, caps Capabilities) (Relation, error) {
	if alias, ok := relationAliases[symbol]; ok {
		if arg != "" {
			return nil, configErrorf("relation %q takes no argument, got %q", symbol, arg)
		}
		symbol, arg = alias[0], alias[1]
	}
	switch symbol {
	case "<", ">":
		if arg == "" {
			return simpleRelations[symbol], nil
		}
		return newChildIndexRelation(symbol, arg)
	case "<+", ">+", ".+", ",+":
		return newPathRelation(symbol, arg, caps.BasicCategory)
	case ">>#", "<<#", ">#", "<#":
		if arg != "" {
			return nil, configErrorf("relation %q takes no argument, got %q", symbol, arg)
		}
		return newHeadRelation(symbol, caps.HeadFinder), nil
	case "<...":
		return nil, configErrorf("relation %q expands to a coordination; use NewMultiChild", symbol)
	}
	r, ok := simpleRelations[symbol]
	if !ok {
		return nil, configErrorf("unknown relation %q", symbol)
	}
	if arg != "" {
		return nil, configErrorf("relation %q takes no argument, got %q", symbol, arg)
	}
	return r, nil
}

// MustGetRelation is like GetRelation but panics on error.
func MustGetRelation(symbol, arg string, caps Capabilities) Relation {
	r, err := GetRelation(symbol, arg, caps)
	if err != nil {
		panic(err)
	}
	return r
}

// RelationsEqual reports whether a and b have the same symbol, arguments
// and capability bindings.
func RelationsEqual(a, b Relation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.String() != b.String() {
		return false
	}
	ca, cb := a.capabilities(), b.capabilities()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !sameCapability(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

// sameCapability compares capability values: reference kinds (funcs,
// pointers, maps) by identity, everything else by value.
func sameCapability(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}

// parseIndex parses a non-zero child index.
func parseIndex(symbol, arg string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, configErrorf("relation %q: index %q is not an integer", symbol, arg)
	}
	if i == 0 {
		return 0, configErrorf("relation %q: child indices start at 1", symbol)
	}
	return i, nil
}
