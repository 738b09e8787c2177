package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/naming"
	"github.com/wippyai/jsonplan/writer"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Options.NamingPolicy != nil {
		t.Errorf("NamingPolicy = %v, want nil", cfg.Options.NamingPolicy)
	}
	if !cfg.Options.EscapeHTML {
		t.Error("EscapeHTML = false, want true")
	}
	if cfg.Options.BufferSize != convert.DefaultBufferSize {
		t.Errorf("BufferSize = %d, want %d", cfg.Options.BufferSize, convert.DefaultBufferSize)
	}
	if cfg.Options.FlushThreshold != convert.DefaultFlushThreshold {
		t.Errorf("FlushThreshold = %d, want %d", cfg.Options.FlushThreshold, convert.DefaultFlushThreshold)
	}
	if cfg.Gzip || cfg.GzipLevel != gzip.DefaultCompression {
		t.Errorf("gzip = %v/%d, want false/%d", cfg.Gzip, cfg.GzipLevel, gzip.DefaultCompression)
	}
	if cfg.Options == convert.Default() {
		t.Error("Options must not alias the default set")
	}
	if n := len(cfg.StreamOptions()); n != 2 {
		t.Errorf("StreamOptions = %d options, want 2", n)
	}
}

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(`
naming_policy = "camel"
map_key_policy = "kebab"
escape_html = false
buffer_size = 128
flush_threshold = 256
suspend_every = 3
gzip = true
gzip_level = 9
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := naming.Apply(cfg.Options.NamingPolicy, "FirstName"); got != "firstName" {
		t.Errorf("naming policy gives %q, want %q", got, "firstName")
	}
	if got := naming.Apply(cfg.Options.MapKeyPolicy, "FirstName"); got != "first-name" {
		t.Errorf("map key policy gives %q, want %q", got, "first-name")
	}
	if cfg.Options.EscapeHTML {
		t.Error("EscapeHTML = true, want false")
	}
	if cfg.Options.BufferSize != 128 || cfg.Options.FlushThreshold != 256 {
		t.Errorf("sizes = %d/%d, want 128/256", cfg.Options.BufferSize, cfg.Options.FlushThreshold)
	}
	if cfg.SuspendEvery != 3 || !cfg.Gzip || cfg.GzipLevel != 9 {
		t.Errorf("stream = %d/%v/%d, want 3/true/9", cfg.SuspendEvery, cfg.Gzip, cfg.GzipLevel)
	}
	if n := len(cfg.StreamOptions()); n != 3 {
		t.Errorf("StreamOptions = %d options, want 3", n)
	}
}

func TestPolicy(t *testing.T) {
	w := writer.New(nil, writer.Options{})

	cfg, err := Parse([]byte("suspend_every = 2\nflush_threshold = 4"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	p := cfg.Policy()
	if p.ShouldSuspend(w, 1) {
		t.Error("ShouldSuspend(empty, 1) = true, want false")
	}
	if !p.ShouldSuspend(w, 2) {
		t.Error("ShouldSuspend(empty, 2) = false, want true")
	}
	w.WriteString("abcdef")
	if !p.ShouldSuspend(w, 1) {
		t.Error("ShouldSuspend(8 bytes, 1) = false, want true")
	}

	cfg, err = Parse([]byte("flush_threshold = 4"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	w.Reset(nil)
	if cfg.Policy().ShouldSuspend(w, 100) {
		t.Error("threshold-only policy suspended on an empty writer")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"syntax", `naming_policy = `, ""},
		{"unknown key", `indent = 2`, ""},
		{"unknown naming policy", `naming_policy = "pascal"`, "naming_policy"},
		{"unknown map key policy", `map_key_policy = "title"`, "map_key_policy"},
		{"zero buffer", `buffer_size = 0`, "buffer_size"},
		{"negative threshold", `flush_threshold = -1`, "flush_threshold"},
		{"negative suspend", `suspend_every = -5`, "suspend_every"},
		{"gzip level", `gzip_level = 12`, "gzip_level"},
		{"wrong type", `escape_html = "yes"`, ""},
	}
	want := &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !stderrors.Is(err, want) {
				t.Fatalf("error = %v, want %v", err, want)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if got := errors.JoinPath(e.Path); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonplan.toml")
	if err := os.WriteFile(path, []byte(`naming_policy = "snake"`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := naming.Apply(cfg.Options.NamingPolicy, "OrderID"); got != "order_id" {
		t.Errorf("naming policy gives %q, want %q", got, "order_id")
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	want := &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindNotFound}
	if !stderrors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", err)
	}
}
