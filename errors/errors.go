package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // plan compilation
	PhaseResolve Phase = "resolve" // converter resolution
	PhaseExecute Phase = "execute" // plan execution
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseStream  Phase = "stream"  // chunked output to an io.Writer
)

// Kind categorizes the error
type Kind string

const (
	KindAccessibility         Kind = "accessibility"
	KindConverterResolution   Kind = "converter_resolution"
	KindConverterIncompatible Kind = "converter_incompatible"
	KindUnsupported           Kind = "unsupported"
	KindUnsupportedValue      Kind = "unsupported_value"
	KindRecursive             Kind = "recursive_type"
	KindNilPointer            Kind = "nil_pointer"
	KindInvalidInput          Kind = "invalid_input"
	KindInvalidState          Kind = "invalid_state"
	KindNotFound              Kind = "not_found"
	KindIO                    Kind = "io"
)

// Sentinels for errors.Is matching against the compile-time taxonomy.
var (
	ErrAccessibility         = &Error{Phase: PhaseCompile, Kind: KindAccessibility}
	ErrConverterResolution   = &Error{Phase: PhaseResolve, Kind: KindConverterResolution}
	ErrConverterIncompatible = &Error{Phase: PhaseResolve, Kind: KindConverterIncompatible}
	ErrRecursive             = &Error{Phase: PhaseCompile, Kind: KindRecursive}
	ErrUnsupported           = &Error{Phase: PhaseCompile, Kind: KindUnsupported}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.GoType != "" {
		b.WriteString(": type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// JoinPath renders a member path. Segments starting with '[' attach
// without a separator, so {"Items", "[elem]", "Price"} reads Items[elem].Price.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path. The slice is copied.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = append([]string(nil), path...)
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Accessibility reports a type the plan cannot reach from outside its package
func Accessibility(path []string, goType string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindAccessibility,
		Path:   path,
		GoType: goType,
		Detail: "type is not exported",
	}
}

// ConverterResolution reports a member converter override that cannot be satisfied
func ConverterResolution(path []string, goType, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindConverterResolution,
		Path:   path,
		GoType: goType,
		Detail: detail,
	}
}

// ConverterIncompatible reports a resolved converter that rejects its member type
func ConverterIncompatible(path []string, goType string, converter any) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindConverterIncompatible,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("converter %T is not compatible", converter),
		Value:  converter,
	}
}

// Recursive reports a type that contains itself
func Recursive(path []string, goType string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindRecursive,
		Path:   path,
		GoType: goType,
		Detail: "recursive types have no static depth",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, path []string, goType, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		GoType: goType,
		Detail: what,
	}
}

// UnsupportedValue reports a value with no JSON representation
func UnsupportedValue(value any, detail string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindUnsupportedValue,
		Value:  value,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: what + " is nil",
	}
}

// InvalidInput reports API misuse
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
