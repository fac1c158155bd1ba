/*
Package glslterr defines the closed set of error kinds the GLSLT core
can report (spec.md §7). Every core operation that can fail returns one
of these, wrapped with a stack trace via github.com/pkg/errors so that
driver-level `-v` reporting can print "where" without the core having to
format human-facing messages itself. Partial success is never supported
(spec.md §7): the first error aborts the whole transformation.
*/
package glslterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds from spec.md §7's table.
type Kind string

const (
	AmbiguousPointerType Kind = "AmbiguousPointerType"
	TemplateArgMismatch  Kind = "TemplateArgMismatch"
	InvalidTemplateArg   Kind = "InvalidTemplateArg"
	BadPlaceholder       Kind = "BadPlaceholder"
	UnknownRoot          Kind = "UnknownRoot"
	ReservedIdentifier   Kind = "ReservedIdentifier"
	TemplateCycle        Kind = "TemplateCycle"
	IncludeNotFound      Kind = "IncludeNotFound"
)

// Error is a typed, stack-trace-carrying core error.
type Error struct {
	Kind    Kind
	Message string
	cause   error

	// Sites optionally names every declaration site involved in the
	// error, beyond the single location folded into Message. Populated
	// by NewMultiSite for diagnostics that are inherently about a
	// conflict between two or more declarations (e.g.
	// AmbiguousPointerType's prototype vs. conflicting redeclaration),
	// so driver output can point at all of them rather than just one.
	Sites []string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to a wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New constructs an *Error of the given kind with a stack trace attached
// at the call site.
func New(kind Kind, format string, args ...any) error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	return errors.WithStack(e)
}

// NewMultiSite is New plus an explicit list of every declaration site
// involved, for diagnostics about a conflict between two or more
// declarations rather than a single bad one.
func NewMultiSite(kind Kind, sites []string, format string, args ...any) error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Sites: sites}
	return errors.WithStack(e)
}

// Wrap attaches kind and a stack trace to an existing cause, preserving
// it for inspection via errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
	return errors.WithStack(e)
}

// As recovers the *Error (and its Kind) from err, looking through any
// wrapping pkg/errors or fmt.Errorf("%w", ...) layers.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
