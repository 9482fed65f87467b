package tregex

import "sort"

type varBinding struct {
	value  string
	active int
}

// VariableStrings holds the strings captured by regex variable groups
// during one search. Each binding is reference counted: while a variable
// has active bindings every new binding must carry the same string, and the
// value is forgotten when the last binding is released on backtrack.
type VariableStrings struct {
	vars map[string]*varBinding
}

// NewVariableStrings returns an empty table.
func NewVariableStrings() *VariableStrings {
	return &VariableStrings{vars: make(map[string]*varBinding)}
}

// Set adds a binding of name to value. It reports false, leaving the table
// unchanged, if name is bound to a different string.
func (vs *VariableStrings) Set(name, value string) bool {
	b, ok := vs.vars[name]
	if !ok {
		vs.vars[name] = &varBinding{value: value, active: 1}
		return true
	}
	if b.active > 0 && b.value != value {
		return false
	}
	b.value = value
	b.active++
	return true
}

// Unset releases one binding of name.
func (vs *VariableStrings) Unset(name string) {
	b, ok := vs.vars[name]
	if !ok {
		return
	}
	if b.active > 0 {
		b.active--
	}
	if b.active == 0 {
		delete(vs.vars, name)
	}
}

// Get returns the current value of name and whether it is bound.
func (vs *VariableStrings) Get(name string) (string, bool) {
	b, ok := vs.vars[name]
	if !ok || b.active == 0 {
		return "", false
	}
	return b.value, true
}

// Active returns the number of live bindings of name.
func (vs *VariableStrings) Active(name string) int {
	if b, ok := vs.vars[name]; ok {
		return b.active
	}
	return 0
}

// Names returns the bound variable names, sorted.
func (vs *VariableStrings) Names() []string {
	names := make([]string, 0, len(vs.vars))
	for name := range vs.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every binding.
func (vs *VariableStrings) Reset() {
	clear(vs.vars)
}
