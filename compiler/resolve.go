package compiler

import (
	"fmt"
	"reflect"

	"github.com/wippyai/jsonplan/compiler/internal/shape"
	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/errors"
)

// resolve picks the converter for a member of declared type t, or returns
// nil when t expands structurally. Precedence: member jsonconv tag, the
// type's own Provider, then the option set lookup.
func (b *builder) resolve(t reflect.Type, m *shape.Member, path []string) (convert.Converter, error) {
	if m != nil && m.Converter != "" {
		ctor, ok := b.opts.Named(m.Converter)
		if !ok || ctor == nil {
			return nil, errors.ConverterResolution(path, t.String(),
				fmt.Sprintf("no converter named %q", m.Converter))
		}
		return checkOverride(ctor(), t, path, fmt.Sprintf("converter %q", m.Converter))
	}

	if c, ok := convert.ProviderFor(t); ok {
		return checkOverride(c, t, path, "type converter")
	}

	c, err := b.opts.GetConverter(t)
	if err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindConverterResolution).
			Path(path...).
			GoType(t.String()).
			Cause(err).
			Detail("converter factory failed").
			Build()
	}
	if c == nil {
		return nil, nil
	}
	// The lookup only returns converters that accept t, so a rejection
	// here means the converter is inconsistent.
	if !c.CanConvert(t) {
		return nil, errors.ConverterIncompatible(path, t.String(), c)
	}
	return c, nil
}

func checkOverride(c convert.Converter, t reflect.Type, path []string, what string) (convert.Converter, error) {
	if c == nil {
		return nil, errors.ConverterResolution(path, t.String(), what+" constructor returned nil")
	}
	if !c.CanConvert(t) {
		return nil, errors.ConverterResolution(path, t.String(),
			fmt.Sprintf("%s (%T) cannot convert %s", what, c, t))
	}
	return c, nil
}
