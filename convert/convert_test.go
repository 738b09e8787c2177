package convert

import (
	"errors"
	"math"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	jerrors "github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/writer"
)

type rawJSON struct{ body string }

func (r rawJSON) MarshalJSON() ([]byte, error) { return []byte(r.body), nil }

type ptrMarshaler struct{ n int }

func (p *ptrMarshaler) MarshalJSON() ([]byte, error) { return []byte(`{ "n" : 1 }`), nil }

type brokenMarshaler struct{}

func (brokenMarshaler) MarshalJSON() ([]byte, error) { return []byte(`{`), nil }

type level int

func (l level) MarshalText() ([]byte, error) { return []byte([]string{"low", "high"}[l]), nil }

func write(t *testing.T, c Converter, v any, opts *Options) string {
	t.Helper()
	w := writer.New(nil, writer.Options{EscapeHTML: opts != nil && opts.EscapeHTML})
	if err := c.Write(w, reflect.ValueOf(v), opts); err != nil {
		t.Fatalf("Write(%v) failed: %v", v, err)
	}
	return string(w.Bytes())
}

func TestDefaultRegistry(t *testing.T) {
	opts := Default()
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"bool", true, "true"},
		{"int", -7, "-7"},
		{"int8", int8(-8), "-8"},
		{"uint16", uint16(65535), "65535"},
		{"float64", 2.25, "2.25"},
		{"float32", float32(0.5), "0.5"},
		{"string", "hi", `"hi"`},
		{"named string", level(1), `"high"`},
		{"bytes", []byte("hello"), `"aGVsbG8="`},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC), `"2024-01-02T03:04:05.000000006Z"`},
		{"duration", 1500 * time.Millisecond, "1500000000"},
		{"marshaler", rawJSON{`[1, 2]`}, `[1,2]`},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`},
		{"netip", netip.MustParseAddr("10.0.0.1"), `"10.0.0.1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := opts.GetConverter(reflect.TypeOf(tt.value))
			if err != nil {
				t.Fatalf("GetConverter failed: %v", err)
			}
			if c == nil {
				t.Fatalf("GetConverter(%T) = nil", tt.value)
			}
			if !c.CanConvert(reflect.TypeOf(tt.value)) {
				t.Fatalf("converter %T rejects %T", c, tt.value)
			}
			if got := write(t, c, tt.value, opts); got != tt.want {
				t.Errorf("output = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDefaultRegistry_Structural(t *testing.T) {
	opts := Default()
	for _, v := range []any{struct{ A int }{}, []int{}, map[string]int{}, new(int)} {
		c, err := opts.GetConverter(reflect.TypeOf(v))
		if err != nil || c != nil {
			t.Errorf("GetConverter(%T) = %v, %v, want nil, nil", v, c, err)
		}
	}

	anyT := reflect.TypeOf((*any)(nil)).Elem()
	o := New().Add(Func[any](func(w Writer, v any, _ *Options) error { return nil }))
	if c, _ := o.GetConverter(anyT); c != nil {
		t.Errorf("GetConverter(any) = %T, want nil", c)
	}
}

func TestMarshaler(t *testing.T) {
	t.Run("nil pointer", func(t *testing.T) {
		var p *ptrMarshaler
		if got := write(t, Marshaler, p, Default()); got != "null" {
			t.Errorf("output = %s, want null", got)
		}
	})

	t.Run("compacts", func(t *testing.T) {
		if got := write(t, Marshaler, &ptrMarshaler{}, Default()); got != `{"n":1}` {
			t.Errorf("output = %s, want {\"n\":1}", got)
		}
	})

	t.Run("escapes html", func(t *testing.T) {
		got := write(t, Marshaler, rawJSON{`"<b>"`}, Default())
		if got != `"\u003cb\u003e"` {
			t.Errorf("output = %s", got)
		}
	})

	t.Run("invalid output", func(t *testing.T) {
		w := writer.New(nil, writer.Options{})
		err := Marshaler.Write(w, reflect.ValueOf(brokenMarshaler{}), Default())
		var e *jerrors.Error
		if !errors.As(err, &e) || e.Kind != jerrors.KindUnsupportedValue {
			t.Errorf("error = %v, want unsupported_value", err)
		}
	})
}

func TestFloatNonFinite(t *testing.T) {
	w := writer.New(nil, writer.Options{})
	if err := Float.Write(w, reflect.ValueOf(math.NaN()), Default()); err == nil {
		t.Error("NaN should fail")
	}
}

func TestTimeOutOfRange(t *testing.T) {
	w := writer.New(nil, writer.Options{})
	err := Time.Write(w, reflect.ValueOf(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)), Default())
	if err == nil {
		t.Error("year 10000 should fail")
	}
}

func TestBytesNil(t *testing.T) {
	var b []byte
	if got := write(t, Bytes, b, Default()); got != "null" {
		t.Errorf("output = %s, want null", got)
	}
}

func TestTextConverterIsPerType(t *testing.T) {
	c, err := TextMarshaler.CreateConverter(reflect.TypeOf(level(0)), Default())
	if err != nil {
		t.Fatalf("CreateConverter failed: %v", err)
	}
	if c.CanConvert(reflect.TypeOf(uuid.UUID{})) {
		t.Error("text converter for level should reject uuid.UUID")
	}
}

type english struct{}

func (english) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Int }

func (english) Write(w Writer, v reflect.Value, _ *Options) error {
	w.WriteString([]string{"zero", "one", "two"}[v.Int()])
	return nil
}

type upperFactory struct{ created int }

func (f *upperFactory) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (f *upperFactory) CreateConverter(t reflect.Type, _ *Options) (Converter, error) {
	f.created++
	return Func[string](func(w Writer, v string, _ *Options) error {
		w.WriteString("UP:" + v)
		return nil
	}), nil
}

func TestUserConverters(t *testing.T) {
	f := &upperFactory{}
	opts := New().Add(english{}).AddFactory(f)

	c, err := opts.GetConverter(reflect.TypeOf(1))
	if err != nil {
		t.Fatalf("GetConverter failed: %v", err)
	}
	if _, ok := c.(english); !ok {
		t.Errorf("GetConverter(int) = %T, want english", c)
	}
	if got := write(t, c, 1, opts); got != `"one"` {
		t.Errorf("output = %s, want \"one\"", got)
	}

	c, err = opts.GetConverter(reflect.TypeOf(""))
	if err != nil {
		t.Fatalf("GetConverter failed: %v", err)
	}
	if f.created != 1 {
		t.Errorf("factory created %d converters, want 1", f.created)
	}
	if got := write(t, c, "x", opts); got != `"UP:x"` {
		t.Errorf("output = %s", got)
	}

	if len(Default().Converters) != 0 {
		t.Error("New must not share converters with Default")
	}
}

type nilFactory struct{}

func (nilFactory) CanConvert(reflect.Type) bool { return true }

func (nilFactory) CreateConverter(reflect.Type, *Options) (Converter, error) { return nil, nil }

func TestFactoryReturningNil(t *testing.T) {
	opts := New().AddFactory(nilFactory{})
	if _, err := opts.GetConverter(reflect.TypeOf(1)); err == nil {
		t.Error("factory returning nil should fail")
	}
}

func TestNamed(t *testing.T) {
	RegisterNamed("convert-test-global", func() Converter { return english{} })

	opts := New().Name("local", func() Converter { return Int })
	if _, ok := opts.Named("local"); !ok {
		t.Error("Named(local) not found")
	}
	if _, ok := opts.Named("convert-test-global"); !ok {
		t.Error("Named(global) not found")
	}
	if _, ok := opts.Named("missing"); ok {
		t.Error("Named(missing) should not be found")
	}
	if _, ok := Default().Named("local"); ok {
		t.Error("local name leaked into Default")
	}
}

type withProvider struct{ V int }

func (*withProvider) JSONConverter() Converter {
	return Func[withProvider](func(w Writer, v withProvider, _ *Options) error {
		w.WriteInt(int64(v.V * 10))
		return nil
	})
}

func TestProviderFor(t *testing.T) {
	c, ok := ProviderFor(reflect.TypeOf(withProvider{}))
	if !ok {
		t.Fatal("ProviderFor(withProvider) not found")
	}
	if got := write(t, c, withProvider{V: 2}, Default()); got != "20" {
		t.Errorf("output = %s, want 20", got)
	}
	if _, ok := ProviderFor(reflect.TypeOf(1)); ok {
		t.Error("int has no provider")
	}
}
