// Package errors provides structured error types for the jsonplan module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, Go type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindConverterResolution).
//		Path("Order", "Total").
//		GoType("int").
//		Detail("no converter named %q", "english").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Accessibility(path, "pkg.inner")
//	err := errors.Recursive(path, "pkg.Node")
//
// All errors implement the standard error interface and support errors.Is/As.
// Sentinels such as ErrAccessibility match any error of the same Phase and Kind.
package errors
