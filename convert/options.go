package convert

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/wippyai/jsonplan/naming"
	"github.com/wippyai/jsonplan/writer"
)

// Writer is the token sink converters write into.
type Writer = writer.TokenWriter

// Options is the option set a plan is compiled against. Plans are cached
// per *Options, so an option set must not be modified once it has been
// used to compile.
type Options struct {
	// NamingPolicy renames members without a literal name override.
	NamingPolicy naming.Policy
	// MapKeyPolicy renames map keys at execution time.
	MapKeyPolicy naming.Policy
	// EscapeHTML escapes HTML-significant characters in strings and names.
	EscapeHTML bool

	// Converters are consulted in order before the default registry.
	Converters []Converter
	// Factories are consulted after Converters, before the default registry.
	Factories []Factory
	// NamedConverters back `jsonconv:"name"` member tags, ahead of the
	// global registry.
	NamedConverters map[string]func() Converter

	// BufferSize is the writer buffer size used by the streaming facade.
	BufferSize int
	// FlushThreshold is the pending byte count at which streaming suspends.
	FlushThreshold int
}

const (
	DefaultBufferSize     = 4096
	DefaultFlushThreshold = 16 * 1024
)

var (
	defaultOptions     *Options
	defaultOptionsOnce sync.Once
)

// Default returns the shared default option set: identity naming, HTML
// escaping on, builtin converters only.
func Default() *Options {
	defaultOptionsOnce.Do(func() {
		defaultOptions = &Options{
			EscapeHTML:     true,
			BufferSize:     DefaultBufferSize,
			FlushThreshold: DefaultFlushThreshold,
		}
	})
	return defaultOptions
}

// New returns an option set with the default settings, ready to customize.
func New() *Options {
	return Default().Clone()
}

// Clone returns a copy that can be modified independently.
func (o *Options) Clone() *Options {
	c := *o
	c.Converters = append([]Converter(nil), o.Converters...)
	c.Factories = append([]Factory(nil), o.Factories...)
	if o.NamedConverters != nil {
		c.NamedConverters = make(map[string]func() Converter, len(o.NamedConverters))
		for k, v := range o.NamedConverters {
			c.NamedConverters[k] = v
		}
	}
	return &c
}

// Add appends converters and returns o for chaining.
func (o *Options) Add(cs ...Converter) *Options {
	o.Converters = append(o.Converters, cs...)
	return o
}

// AddFactory appends factories and returns o for chaining.
func (o *Options) AddFactory(fs ...Factory) *Options {
	o.Factories = append(o.Factories, fs...)
	return o
}

// Name registers a named converter constructor and returns o for chaining.
func (o *Options) Name(name string, ctor func() Converter) *Options {
	if o.NamedConverters == nil {
		o.NamedConverters = make(map[string]func() Converter)
	}
	o.NamedConverters[name] = ctor
	return o
}

// GetConverter finds the converter for t: user converters, user
// factories, then the default registry. Factories are materialized here.
// The empty interface never has a converter. A nil result with a nil
// error means t should be expanded structurally.
func (o *Options) GetConverter(t reflect.Type) (Converter, error) {
	if t == anyType {
		return nil, nil
	}
	for _, c := range o.Converters {
		if c.CanConvert(t) {
			return c, nil
		}
	}
	for _, f := range o.Factories {
		if f.CanConvert(t) {
			return create(f, t, o)
		}
	}
	return builtin(t, o)
}

// Named resolves a `jsonconv` tag name.
func (o *Options) Named(name string) (func() Converter, bool) {
	if ctor, ok := o.NamedConverters[name]; ok {
		return ctor, true
	}
	return lookupNamed(name)
}

func create(f Factory, t reflect.Type, o *Options) (Converter, error) {
	c, err := f.CreateConverter(t, o)
	if err != nil {
		return nil, fmt.Errorf("factory %T for %s: %w", f, t, err)
	}
	if c == nil {
		return nil, fmt.Errorf("factory %T returned no converter for %s", f, t)
	}
	return c, nil
}
