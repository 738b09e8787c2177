package convert

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"reflect"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wippyai/jsonplan/errors"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	marshalerType     = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Builtin converters. They are stateless, so one instance of each is
// shared by every plan and deduplicates in the converter table.
var (
	Time          Converter = timeConverter{}
	Marshaler     Converter = marshalerConverter{}
	TextMarshaler Factory   = textMarshalerFactory{}
	Bytes         Converter = bytesConverter{}
	Bool          Converter = boolConverter{}
	Int           Converter = intConverter{}
	Uint          Converter = uintConverter{}
	Float         Converter = floatConverter{}
	String        Converter = stringConverter{}
)

// builtin is the default registry lookup.
func builtin(t reflect.Type, o *Options) (Converter, error) {
	switch {
	case Time.CanConvert(t):
		return Time, nil
	case Marshaler.CanConvert(t):
		return Marshaler, nil
	case TextMarshaler.CanConvert(t):
		return create(TextMarshaler, t, o)
	}

	for _, c := range []Converter{Bytes, Bool, Int, Uint, Float, String} {
		if c.CanConvert(t) {
			return c, nil
		}
	}
	return nil, nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

type timeConverter struct{}

func (timeConverter) CanConvert(t reflect.Type) bool { return t == timeType }

func (timeConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	t := v.Interface().(time.Time)
	if y := t.Year(); y < 0 || y >= 10000 {
		return errors.UnsupportedValue(t, "time year outside of range [0,9999]")
	}
	w.WriteString(t.Format(time.RFC3339Nano))
	return nil
}

// marshalerConverter defers to json.Marshaler and compacts the result.
type marshalerConverter struct{}

func (marshalerConverter) CanConvert(t reflect.Type) bool {
	return t != anyType && t.Implements(marshalerType)
}

func (marshalerConverter) Write(w Writer, v reflect.Value, opts *Options) error {
	if isNil(v) {
		w.WriteNull()
		return nil
	}
	raw, err := v.Interface().(json.Marshaler).MarshalJSON()
	if err != nil {
		return errors.New(errors.PhaseExecute, errors.KindUnsupportedValue).
			GoType(v.Type().String()).
			Cause(err).
			Detail("MarshalJSON failed").
			Build()
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return errors.New(errors.PhaseExecute, errors.KindUnsupportedValue).
			GoType(v.Type().String()).
			Cause(err).
			Detail("MarshalJSON returned invalid JSON").
			Build()
	}
	if opts != nil && opts.EscapeHTML {
		var escaped bytes.Buffer
		json.HTMLEscape(&escaped, buf.Bytes())
		buf = escaped
	}
	w.WriteRaw(buf.Bytes())
	return nil
}

type textMarshalerFactory struct{}

func (textMarshalerFactory) CanConvert(t reflect.Type) bool {
	return t != anyType && t.Implements(textMarshalerType)
}

func (textMarshalerFactory) CreateConverter(t reflect.Type, _ *Options) (Converter, error) {
	return textConverter{typ: t}, nil
}

// textConverter is created per type so it rejects anything else.
type textConverter struct {
	typ reflect.Type
}

func (c textConverter) CanConvert(t reflect.Type) bool { return t == c.typ }

func (textConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	if isNil(v) {
		w.WriteNull()
		return nil
	}
	text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return errors.New(errors.PhaseExecute, errors.KindUnsupportedValue).
			GoType(v.Type().String()).
			Cause(err).
			Detail("MarshalText failed").
			Build()
	}
	w.WriteString(string(text))
	return nil
}

type bytesConverter struct{}

func (bytesConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (bytesConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	if v.IsNil() {
		w.WriteNull()
		return nil
	}
	w.WriteString(base64.StdEncoding.EncodeToString(v.Bytes()))
	return nil
}

type boolConverter struct{}

func (boolConverter) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (boolConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	w.WriteBool(v.Bool())
	return nil
}

type intConverter struct{}

func (intConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func (intConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	w.WriteInt(v.Int())
	return nil
}

type uintConverter struct{}

func (uintConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func (uintConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	w.WriteUint(v.Uint())
	return nil
}

type floatConverter struct{}

func (floatConverter) CanConvert(t reflect.Type) bool {
	k := t.Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

func (floatConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	bits := 64
	if v.Kind() == reflect.Float32 {
		bits = 32
	}
	return w.WriteFloat(v.Float(), bits)
}

type stringConverter struct{}

func (stringConverter) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (stringConverter) Write(w Writer, v reflect.Value, _ *Options) error {
	w.WriteString(v.String())
	return nil
}
