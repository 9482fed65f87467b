package tregex

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DescMode says how a Description tests a label.
type DescMode int

const (
	// DescNone has no label test; the pattern node is a pure backreference
	// or link.
	DescNone DescMode = iota
	// DescExact requires string equality.
	DescExact
	// DescPattern requires a regular expression match anywhere in the label.
	DescPattern
	// DescStrings requires membership in a small set.
	DescStrings
	// DescAnything accepts every label.
	DescAnything
)

func (m DescMode) String() string {
	switch m {
	case DescExact:
		return "exact"
	case DescPattern:
		return "pattern"
	case DescStrings:
		return "strings"
	case DescAnything:
		return "anything"
	default:
		return "none"
	}
}

// Description is the label test of a pattern node.
type Description struct {
	Mode    DescMode
	Exact   string
	Regexp  *regexp.Regexp
	Strings map[string]struct{}

	// Negated inverts the label test itself, as in "!NP".
	Negated bool

	// BasicCategory, when set, reduces labels before they are tested.
	BasicCategory BasicCategoryFunc
}

// ExactDesc matches labels equal to s.
func ExactDesc(s string) Description { return Description{Mode: DescExact, Exact: s} }

// RegexpDesc matches labels containing a match of re.
func RegexpDesc(re *regexp.Regexp) Description { return Description{Mode: DescPattern, Regexp: re} }

// StringsDesc matches labels equal to any of ss.
func StringsDesc(ss ...string) Description {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return Description{Mode: DescStrings, Strings: set}
}

// AnyDesc matches every label.
func AnyDesc() Description { return Description{Mode: DescAnything} }

// label returns the form of n's label the description tests.
func (d *Description) label(t *Tree, n NodeID) string {
	l := t.Label(n)
	if d.BasicCategory != nil {
		l = d.BasicCategory(l)
	}
	return l
}

// test applies the label test without negation.
func (d *Description) test(label string) bool {
	switch d.Mode {
	case DescExact:
		return label == d.Exact
	case DescPattern:
		return d.Regexp.MatchString(label)
	case DescStrings:
		_, ok := d.Strings[label]
		return ok
	case DescAnything:
		return true
	default:
		return false
	}
}

// Matches reports whether label satisfies the description, negation
// included.
func (d *Description) Matches(label string) bool {
	if d.BasicCategory != nil {
		label = d.BasicCategory(label)
	}
	return d.test(label) != d.Negated
}

// MatchesNode is Matches applied to the label of n.
func (d *Description) MatchesNode(t *Tree, n NodeID) bool {
	return d.Matches(t.Label(n))
}

// String renders the description in pattern syntax.
func (d *Description) String() string {
	var b strings.Builder
	if d.Negated {
		b.WriteByte('!')
	}
	if d.BasicCategory != nil {
		b.WriteByte('@')
	}
	switch d.Mode {
	case DescExact:
		b.WriteString(quoteIfNeeded(d.Exact))
	case DescPattern:
		b.WriteString("/" + strings.ReplaceAll(d.Regexp.String(), "/", `\/`) + "/")
	case DescStrings:
		ss := make([]string, 0, len(d.Strings))
		for s := range d.Strings {
			ss = append(ss, quoteIfNeeded(s))
		}
		sort.Strings(ss)
		b.WriteString(strings.Join(ss, "|"))
	case DescAnything:
		b.WriteString("__")
	}
	return b.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, identStop+" \t\n") || s == "__" {
		return strconv.Quote(s)
	}
	return s
}

// ParseDescription parses a standalone node description such as "NP",
// "!NP", "@S", "/^V/", "NN|NNS" or "__". Quoted atoms are unquoted; a
// description made only of literal atoms becomes DescExact or DescStrings,
// any regex atom makes the whole description DescPattern. '@' needs
// basicCat to be non-nil.
func ParseDescription(src string, basicCat BasicCategoryFunc) (Description, error) {
	lx := newLexer(src)
	p := &parser{lx: lx, src: src, caps: Capabilities{BasicCategory: basicCat}}
	if err := p.advance(); err != nil {
		return Description{}, err
	}
	d, ok, err := p.parseDescriptionBody()
	if err != nil {
		return Description{}, err
	}
	if !ok {
		return Description{}, p.errorf("expected a node description")
	}
	if p.tok.kind != tokEOF {
		return Description{}, p.errorf("unexpected %s after node description", p.tok)
	}
	return d, nil
}

// newDescription builds a description from parsed atoms.
func newDescription(atoms []descAtom) (Description, error) {
	if len(atoms) == 1 {
		a := atoms[0]
		switch {
		case a.blank:
			return AnyDesc(), nil
		case a.regex:
			re, err := regexp.Compile(a.text)
			if err != nil {
				return Description{}, err
			}
			return RegexpDesc(re), nil
		default:
			return ExactDesc(a.text), nil
		}
	}
	literal := true
	for _, a := range atoms {
		if a.regex || a.blank {
			literal = false
		}
	}
	if literal {
		ss := make([]string, len(atoms))
		for i, a := range atoms {
			ss[i] = a.text
		}
		return StringsDesc(ss...), nil
	}
	alts := make([]string, len(atoms))
	for i, a := range atoms {
		switch {
		case a.blank:
			alts[i] = "(?s:.*)"
		case a.regex:
			alts[i] = "(?:" + a.text + ")"
		default:
			alts[i] = "^" + regexp.QuoteMeta(a.text) + "$"
		}
	}
	re, err := regexp.Compile(strings.Join(alts, "|"))
	if err != nil {
		return Description{}, err
	}
	return RegexpDesc(re), nil
}

type descAtom struct {
	text  string
	regex bool
	blank bool
}
