package jsonplan

import (
	"reflect"

	"github.com/wippyai/jsonplan/compiler"
	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/engine"
	"github.com/wippyai/jsonplan/plan"
)

// Serializer writes values of the static type T through a compiled plan.
// It is safe for concurrent use.
type Serializer[T any] struct {
	plan *plan.Plan
	opts *convert.Options
}

// Compile returns the serializer for T. The plan is built once per
// (T, opts) pair and shared by later calls. A nil opts uses
// convert.Default().
//
// T is taken as declared: for an interface type only its getter methods
// are emitted, dispatched to the dynamic value. Getters appear in Go's
// method set order, which is sorted by name, not in declaration order.
func Compile[T any](opts *convert.Options) (*Serializer[T], error) {
	if opts == nil {
		opts = convert.Default()
	}
	p, err := compiler.CompileFor[T](opts)
	if err != nil {
		return nil, err
	}
	return &Serializer[T]{plan: p, opts: opts}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile[T any](opts *convert.Options) *Serializer[T] {
	s, err := Compile[T](opts)
	if err != nil {
		panic(err)
	}
	return s
}

// Plan returns the compiled plan.
func (s *Serializer[T]) Plan() *plan.Plan { return s.plan }

// Marshal serializes v to completion and returns the JSON text.
func (s *Serializer[T]) Marshal(v T) ([]byte, error) {
	w := getWriter(s.plan.Captured.EscapeHTML)
	defer putWriter(w)

	if err := engine.Run(s.plan, w, root(&v)); err != nil {
		return nil, err
	}
	return append([]byte(nil), w.Bytes()...), nil
}

// MarshalString is Marshal returning a string.
func (s *Serializer[T]) MarshalString(v T) (string, error) {
	w := getWriter(s.plan.Captured.EscapeHTML)
	defer putWriter(w)

	if err := engine.Run(s.plan, w, root(&v)); err != nil {
		return "", err
	}
	return string(w.Bytes()), nil
}

// Marshal serializes v with the default option set.
func Marshal[T any](v T) ([]byte, error) {
	s, err := Compile[T](nil)
	if err != nil {
		return nil, err
	}
	return s.Marshal(v)
}

// root addresses v so pointer-receiver collections need no copy.
func root[T any](v *T) reflect.Value {
	return reflect.ValueOf(v).Elem()
}
