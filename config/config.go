package config

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/gzip"

	"github.com/wippyai/jsonplan"
	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/engine"
	"github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/naming"
)

// file mirrors the TOML layout. Pointers distinguish omitted keys.
type file struct {
	NamingPolicy   *string `toml:"naming_policy"`
	MapKeyPolicy   *string `toml:"map_key_policy"`
	EscapeHTML     *bool   `toml:"escape_html"`
	BufferSize     *int    `toml:"buffer_size"`
	FlushThreshold *int    `toml:"flush_threshold"`
	SuspendEvery   int     `toml:"suspend_every"`
	Gzip           bool    `toml:"gzip"`
	GzipLevel      *int    `toml:"gzip_level"`
}

// Config is a decoded configuration file.
type Config struct {
	// Options is a fresh option set; callers may register converters on
	// it before compiling.
	Options *convert.Options

	SuspendEvery int
	Gzip         bool
	GzipLevel    int
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Detail("read %s", path).
			Cause(err).
			Build()
	}
	return Parse(data)
}

// Parse decodes TOML configuration text.
func Parse(data []byte) (*Config, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.InvalidInput(errors.PhaseConfig, "unknown keys: "+strings.Join(keys, ", "))
	}

	opts := convert.New()
	cfg := &Config{Options: opts, GzipLevel: gzip.DefaultCompression}

	if f.NamingPolicy != nil {
		if opts.NamingPolicy, err = policy("naming_policy", *f.NamingPolicy); err != nil {
			return nil, err
		}
	}
	if f.MapKeyPolicy != nil {
		if opts.MapKeyPolicy, err = policy("map_key_policy", *f.MapKeyPolicy); err != nil {
			return nil, err
		}
	}
	if f.EscapeHTML != nil {
		opts.EscapeHTML = *f.EscapeHTML
	}
	if f.BufferSize != nil {
		if *f.BufferSize <= 0 {
			return nil, invalid("buffer_size", *f.BufferSize, "must be positive")
		}
		opts.BufferSize = *f.BufferSize
	}
	if f.FlushThreshold != nil {
		if *f.FlushThreshold <= 0 {
			return nil, invalid("flush_threshold", *f.FlushThreshold, "must be positive")
		}
		opts.FlushThreshold = *f.FlushThreshold
	}
	if f.SuspendEvery < 0 {
		return nil, invalid("suspend_every", f.SuspendEvery, "must not be negative")
	}
	cfg.SuspendEvery = f.SuspendEvery

	cfg.Gzip = f.Gzip
	if f.GzipLevel != nil {
		if *f.GzipLevel < gzip.HuffmanOnly || *f.GzipLevel > gzip.BestCompression {
			return nil, invalid("gzip_level", *f.GzipLevel, "out of range")
		}
		cfg.GzipLevel = *f.GzipLevel
	}
	return cfg, nil
}

// Policy returns the suspend policy the settings describe: the flush
// threshold, combined with a conversion count when suspend_every is set.
func (c *Config) Policy() engine.Policy {
	threshold := c.Options.FlushThreshold
	if threshold <= 0 {
		threshold = convert.DefaultFlushThreshold
	}
	if c.SuspendEvery > 0 {
		return engine.Any(engine.EveryN(c.SuspendEvery), engine.Buffered(threshold))
	}
	return engine.Buffered(threshold)
}

// StreamOptions returns the Encode options for the settings.
func (c *Config) StreamOptions() []jsonplan.StreamOption {
	opts := []jsonplan.StreamOption{jsonplan.WithPolicy(c.Policy())}
	if c.Options.BufferSize > 0 {
		opts = append(opts, jsonplan.WithBufferSize(c.Options.BufferSize))
	}
	if c.Gzip {
		opts = append(opts, jsonplan.WithGzip(c.GzipLevel))
	}
	return opts
}

func policy(key, name string) (naming.Policy, error) {
	p, ok := naming.Lookup(name)
	if !ok {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(key).
			Value(name).
			Detail("unknown naming policy %q", name).
			Build()
	}
	return p, nil
}

func invalid(key string, v int, detail string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(key).
		Value(v).
		Detail("%d %s", v, detail).
		Build()
}
