package compiler

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/plan"
)

// Compiler compiles and caches plans for one option set.
type Compiler struct {
	opts  *convert.Options
	cache sync.Map // reflect.Type -> *plan.Plan
	group singleflight.Group
}

// New creates a Compiler. A nil opts uses convert.Default().
func New(opts *convert.Options) *Compiler {
	if opts == nil {
		opts = convert.Default()
	}
	return &Compiler{opts: opts}
}

// Options returns the option set plans are compiled against.
func (c *Compiler) Options() *convert.Options { return c.opts }

// Compile returns the plan for t, compiling it on first use.
func (c *Compiler) Compile(t reflect.Type) (*plan.Plan, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}

	if cached, ok := c.cache.Load(t); ok {
		Logger().Debug("plan cache hit", zap.Stringer("type", t))
		return cached.(*plan.Plan), nil
	}

	// reflect.Type values are unique per type, so the pointer is a safe key.
	v, err, shared := c.group.Do(fmt.Sprintf("%p", t), func() (any, error) {
		if cached, ok := c.cache.Load(t); ok {
			return cached, nil
		}
		p, err := c.compile(t)
		if err != nil {
			return nil, err
		}
		c.cache.Store(t, p)
		return p, nil
	})
	if err != nil {
		Logger().Debug("compile failed", zap.Stringer("type", t), zap.Error(err))
		return nil, err
	}
	if shared {
		Logger().Debug("compile shared", zap.Stringer("type", t))
	}
	return v.(*plan.Plan), nil
}

func (c *Compiler) compile(t reflect.Type) (*plan.Plan, error) {
	b := newBuilder(c.opts)
	root, err := b.build(t, nil, nil)
	if err != nil {
		return nil, err
	}

	p := emit(root, b)
	p.Root = t
	p.Options = c.opts
	p.Captured = plan.Captured{
		NamingPolicy: c.opts.NamingPolicy,
		MapKeyPolicy: c.opts.MapKeyPolicy,
		EscapeHTML:   c.opts.EscapeHTML,
	}

	Logger().Debug("compiled plan",
		zap.Stringer("type", t),
		zap.Int("steps", len(p.Steps)),
		zap.Int("depth", p.Depth),
		zap.Int("sites", len(p.Sites)),
		zap.Int("converters", len(p.Converters)),
	)
	return p, nil
}

var compilers sync.Map // *convert.Options -> *Compiler

// For returns the process-wide Compiler for opts.
func For(opts *convert.Options) *Compiler {
	if opts == nil {
		opts = convert.Default()
	}
	if c, ok := compilers.Load(opts); ok {
		return c.(*Compiler)
	}
	c, _ := compilers.LoadOrStore(opts, New(opts))
	return c.(*Compiler)
}

// Compile compiles t against opts using the process-wide plan cache.
func Compile(t reflect.Type, opts *convert.Options) (*plan.Plan, error) {
	return For(opts).Compile(t)
}

// CompileFor is Compile for the static type T.
func CompileFor[T any](opts *convert.Options) (*plan.Plan, error) {
	return Compile(reflect.TypeOf((*T)(nil)).Elem(), opts)
}
