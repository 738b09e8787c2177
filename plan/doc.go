// Package plan defines the compiled, immutable form of a serializer.
//
// A Plan is a flat program of Steps. Containers become start/end pairs,
// collections become loops closed by backward jumps, and every leaf value
// becomes a single OpConvert step naming an entry in the converter table.
// Values in flight live in a slot arena indexed by static nesting depth;
// loops keep their position in a cursor table indexed by iteration site.
// Both sizes are fixed when the plan is built.
//
// Plans are safe for concurrent use. Execution state lives in the engine.
package plan
