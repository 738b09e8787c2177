// Package jsonplan serializes Go values to JSON through compiled,
// resumable execution plans.
//
// A Serializer is compiled once per type. Compilation inspects the type
// with reflection, resolves a converter for every leaf and produces an
// immutable plan; serialization then interprets that plan without
// inspecting the type again.
//
// # Packages
//
//	jsonplan/            Serializer facade: Compile, Marshal, Encode, Chunker
//	├── compiler/        Type classification, converter resolution, plan cache
//	├── plan/            Immutable plan representation and disassembler
//	├── engine/          Resumable execution state machine and suspend policies
//	├── convert/         Converter interfaces, option set, builtin converters
//	├── writer/          Token writer over a jsoniter stream
//	├── naming/          Property and map key naming policies
//	├── config/          TOML configuration for option sets and streaming
//	├── errors/          Structured error types
//	└── cmd/planview/    Plan listings, streaming stats, interactive stepper
//
// # Quick Start
//
//	s, err := jsonplan.Compile[Order](nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := s.Marshal(order)
//
// # Streaming
//
// Encode runs the plan in chunks. After each chunk the buffered output is
// flushed to the io.Writer and the context is checked, so a slow consumer
// applies backpressure and cancellation takes effect between chunks:
//
//	err := s.Encode(ctx, conn, order, jsonplan.WithFlushThreshold(32<<10))
//
// For full control, a Chunker exposes one chunk per call:
//
//	c := s.NewChunker(w, engine.EveryN(64))
//	for {
//	    _, done, err := c.SerializeChunk(order)
//	    ...
//	}
//
// # Errors
//
// Compile reports inaccessible types and converters that cannot be
// resolved or do not fit their member as *errors.Error values matching
// errors.ErrAccessibility, errors.ErrConverterResolution and
// errors.ErrConverterIncompatible. Errors raised by converters or the
// writer during serialization are returned unchanged.
package jsonplan
