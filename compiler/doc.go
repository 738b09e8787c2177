// Package compiler turns Go types into execution plans.
//
// Compilation runs once per (type, option set). It resolves a converter
// for every leaf member, classifies everything else into records,
// sequences and maps, and linearizes the result into a plan.Plan whose
// slot arena and cursor table sizes are known up front. Plans are cached;
// concurrent first uses of the same type share one compilation.
//
// Compile errors are reported before any value is serialized:
//
//	p, err := compiler.Compile(reflect.TypeOf(Order{}), opts)
//	if errors.Is(err, errors.ErrAccessibility) {
//		// a reachable type is not exported
//	}
package compiler
