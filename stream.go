package jsonplan

import (
	"context"
	"io"

	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/engine"
	"github.com/wippyai/jsonplan/errors"
	"github.com/wippyai/jsonplan/writer"
)

const tracerName = "github.com/wippyai/jsonplan"

// StreamOption configures Encode.
type StreamOption func(*streamConfig)

type streamConfig struct {
	policy     engine.Policy
	bufferSize int
	gzipLevel  int
	gzip       bool
}

// WithPolicy sets the suspend policy that ends each chunk.
func WithPolicy(p engine.Policy) StreamOption {
	return func(c *streamConfig) { c.policy = p }
}

// WithFlushThreshold flushes once n bytes are pending.
func WithFlushThreshold(n int) StreamOption {
	return func(c *streamConfig) { c.policy = engine.Buffered(n) }
}

// WithBufferSize sets the initial writer buffer size.
func WithBufferSize(n int) StreamOption {
	return func(c *streamConfig) { c.bufferSize = n }
}

// WithGzip compresses the stream at the given level.
func WithGzip(level int) StreamOption {
	return func(c *streamConfig) {
		c.gzip = true
		c.gzipLevel = level
	}
}

// countingWriter tracks bytes handed to the destination.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Encode streams v to out. The plan runs in chunks bounded by the stream
// policy; after every chunk the pending output is flushed to out and ctx
// is checked. A canceled context stops the stream between chunks with
// ctx.Err(); bytes already flushed stay written.
func (s *Serializer[T]) Encode(ctx context.Context, out io.Writer, v T, opts ...StreamOption) (err error) {
	if out == nil {
		return errors.NilPointer(errors.PhaseStream, "output writer")
	}

	threshold := s.opts.FlushThreshold
	if threshold <= 0 {
		threshold = convert.DefaultFlushThreshold
	}
	cfg := streamConfig{
		policy:     engine.Buffered(threshold),
		bufferSize: s.opts.BufferSize,
		gzipLevel:  gzip.DefaultCompression,
	}
	for _, o := range opts {
		o(&cfg)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "jsonplan.Encode",
		trace.WithAttributes(attribute.String("jsonplan.type", s.plan.Root.String())))
	defer span.End()

	dst := out
	var gz *gzip.Writer
	if cfg.gzip {
		gz, err = gzip.NewWriterLevel(out, cfg.gzipLevel)
		if err != nil {
			return errors.Wrap(errors.PhaseStream, errors.KindInvalidInput, err, "gzip level")
		}
		dst = gz
	}

	cw := &countingWriter{w: dst}
	w := writer.New(cw, writer.Options{
		EscapeHTML: s.plan.Captured.EscapeHTML,
		BufferSize: cfg.bufferSize,
	})
	st := engine.NewState(s.plan)
	rv := root(&v)

	defer func() {
		span.SetAttributes(
			attribute.Int("jsonplan.chunks", st.Chunks()),
			attribute.Int("jsonplan.conversions", st.Converted()),
			attribute.Int64("jsonplan.bytes", cw.n),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		status, err := st.Step(w, rv, cfg.policy)
		if err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return errors.Wrap(errors.PhaseStream, errors.KindIO, err, "flush")
		}
		if status == engine.StepDone {
			break
		}
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrap(errors.PhaseStream, errors.KindIO, err, "gzip close")
		}
	}

	Logger().Debug("encoded",
		zap.Stringer("type", s.plan.Root),
		zap.Int("chunks", st.Chunks()),
		zap.Int64("bytes", cw.n),
	)
	return nil
}

// Chunker serializes one value a chunk at a time into a caller-owned
// writer. It is not safe for concurrent use.
type Chunker[T any] struct {
	state  *engine.State
	w      writer.TokenWriter
	policy engine.Policy
}

// NewChunker creates a Chunker writing into w. A nil policy makes every
// chunk run to completion.
func (s *Serializer[T]) NewChunker(w writer.TokenWriter, policy engine.Policy) *Chunker[T] {
	return &Chunker[T]{
		state:  engine.NewState(s.plan),
		w:      w,
		policy: policy,
	}
}

// SerializeChunk runs the next chunk. It returns the bytes the chunk added
// to the writer and whether serialization finished. v is read by the
// first chunk only; flushing between chunks is up to the caller.
func (c *Chunker[T]) SerializeChunk(v T) (int, bool, error) {
	before := c.w.Buffered()
	status, err := c.state.Step(c.w, root(&v), c.policy)
	n := c.w.Buffered() - before
	if err != nil {
		return n, true, err
	}
	return n, status == engine.StepDone, nil
}

// Reset rewinds the chunker for a new value.
func (c *Chunker[T]) Reset() { c.state.Reset() }

// State exposes the execution state, for progress reporting.
func (c *Chunker[T]) State() *engine.State { return c.state }
