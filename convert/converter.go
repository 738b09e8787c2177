// Package convert defines pluggable value converters and the option set
// plans are compiled against.
//
// A Converter owns the JSON form of one kind of Go value. The compiler
// resolves a converter for every leaf member once; the engine then calls
// Write for each instance without further lookups.
package convert

import (
	"reflect"
	"sync"
)

// Converter writes values of the types it accepts.
type Converter interface {
	// CanConvert reports whether the converter accepts values of type t.
	CanConvert(t reflect.Type) bool
	// Write emits exactly one JSON value for v.
	Write(w Writer, v reflect.Value, opts *Options) error
}

// Factory materializes a Converter for a concrete type at compile time.
type Factory interface {
	CanConvert(t reflect.Type) bool
	CreateConverter(t reflect.Type, opts *Options) (Converter, error)
}

// Provider lets a type name its own converter. It is checked on *T, so
// both value and pointer receivers work.
type Provider interface {
	JSONConverter() Converter
}

// Func adapts a write function into a Converter for exactly one type.
type Func[T any] func(w Writer, v T, opts *Options) error

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// CanConvert reports whether t is exactly T.
func (f Func[T]) CanConvert(t reflect.Type) bool {
	return t == reflect.TypeOf((*T)(nil)).Elem()
}

// Write calls f with v converted to T.
func (f Func[T]) Write(w Writer, v reflect.Value, opts *Options) error {
	return f(w, v.Interface().(T), opts)
}

var (
	namedMu sync.RWMutex
	named   = map[string]func() Converter{}
)

// RegisterNamed makes a converter constructor available to `jsonconv`
// member tags in every option set. Later registrations replace earlier ones.
func RegisterNamed(name string, ctor func() Converter) {
	namedMu.Lock()
	defer namedMu.Unlock()
	named[name] = ctor
}

func lookupNamed(name string) (func() Converter, bool) {
	namedMu.RLock()
	defer namedMu.RUnlock()
	ctor, ok := named[name]
	return ctor, ok
}

// ProviderFor returns the converter a type declares for itself, if any.
func ProviderFor(t reflect.Type) (Converter, bool) {
	if t == anyType || t.Kind() == reflect.Interface {
		return nil, false
	}
	p, ok := reflect.New(t).Interface().(Provider)
	if !ok {
		return nil, false
	}
	return p.JSONConverter(), true
}
