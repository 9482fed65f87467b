package tregex

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package wraps exactly one
// of ErrConfig, ErrUsage or ErrSyntax. A search that finds nothing is not
// an error: it returns false with a nil error.
var (
	// ErrConfig marks a malformed relation argument or a missing
	// capability such as a head finder.
	ErrConfig = errors.New("tregex: configuration error")

	// ErrUsage marks a violation of the matcher's calling contract.
	ErrUsage = errors.New("tregex: usage error")

	// ErrSyntax marks a pattern that does not compile.
	ErrSyntax = errors.New("tregex: syntax error")
)

var (
	// ErrNoHeadFinder is reported the first time a head relation is
	// evaluated without a head finder.
	ErrNoHeadFinder = fmt.Errorf("%w: head relation used without a head finder", ErrConfig)

	// ErrAmbiguousMatch is returned by Match when the matched pattern is a
	// conjunction or a negated coordination, which have no single match.
	ErrAmbiguousMatch = fmt.Errorf("%w: no single matched node for a conjunction or negated coordination", ErrUsage)

	// ErrAnchorChanged is returned by FindAt when called with a different
	// anchor than the previous call without an intervening Reset.
	ErrAnchorChanged = fmt.Errorf("%w: FindAt called on a new anchor without Reset", ErrUsage)

	// ErrOutsideRoot is returned when an anchor does not lie under the
	// matcher's root.
	ErrOutsideRoot = fmt.Errorf("%w: node is outside the match root", ErrUsage)
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// SyntaxError describes a pattern compile failure at a byte offset. Err,
// when set, is the underlying cause, such as a configuration error from a
// malformed relation argument.
type SyntaxError struct {
	Pattern string
	Pos     int
	Msg     string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("tregex: syntax error at offset %d in %q: %s", e.Pos, e.Pattern, e.Msg)
}

// Is makes errors.Is(err, ErrSyntax) hold for every SyntaxError.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

func (e *SyntaxError) Unwrap() error { return e.Err }
