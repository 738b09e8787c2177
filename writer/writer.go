package writer

import (
	"io"
	"math"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/jsonplan/errors"
)

// TokenWriter is the sink a plan writes into.
type TokenWriter interface {
	WriteStartObject()
	WriteEndObject()
	WriteStartArray()
	WriteEndArray()
	// WritePropertyName escapes and writes name followed by ':'.
	WritePropertyName(name string)
	// WriteEncodedName writes a name already rendered by EncodeName.
	WriteEncodedName(encoded string)
	WriteNull()
	WriteBool(v bool)
	WriteInt(v int64)
	WriteUint(v uint64)
	// WriteFloat writes v with the given bit size (32 or 64).
	WriteFloat(v float64, bits int) error
	WriteString(s string)
	// WriteRaw writes a complete, valid JSON value verbatim.
	WriteRaw(raw []byte)

	Buffered() int
	IsCapacityExceeded(threshold int) bool
	Flush() error
}

const defaultBufferSize = 512

// Options configures a Writer.
type Options struct {
	// EscapeHTML escapes <, >, & and U+2028/U+2029 like encoding/json.
	EscapeHTML bool
	// BufferSize is the initial buffer capacity.
	BufferSize int
}

// Writer is the jsoniter-backed TokenWriter.
type Writer struct {
	stream *jsoniter.Stream
	// elems has bit d set once the container at depth d holds an element.
	elems      *bitset.BitSet
	depth      uint
	afterName  bool
	escapeHTML bool
}

var _ TokenWriter = (*Writer)(nil)

// New creates a Writer. A nil out keeps everything in memory; Bytes
// returns the output.
func New(out io.Writer, opts Options) *Writer {
	size := opts.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Writer{
		stream:     jsoniter.NewStream(jsoniter.ConfigCompatibleWithStandardLibrary, out, size),
		elems:      bitset.New(16),
		escapeHTML: opts.EscapeHTML,
	}
}

// Reset discards buffered output and nesting state and retargets the writer.
func (w *Writer) Reset(out io.Writer) {
	w.stream.Reset(out)
	w.stream.Error = nil
	w.elems.ClearAll()
	w.depth = 0
	w.afterName = false
}

// SetEscapeHTML switches HTML escaping for subsequent strings.
func (w *Writer) SetEscapeHTML(on bool) { w.escapeHTML = on }

// Depth returns the current container nesting depth.
func (w *Writer) Depth() int { return int(w.depth) }

// beforeValue emits the separator a value at the current position needs.
func (w *Writer) beforeValue() {
	if w.afterName {
		w.afterName = false
		return
	}
	if w.depth == 0 {
		return
	}
	if w.elems.Test(w.depth) {
		w.stream.WriteMore()
	} else {
		w.elems.Set(w.depth)
	}
}

func (w *Writer) push() {
	w.depth++
	w.elems.Clear(w.depth)
}

func (w *Writer) pop() {
	w.elems.Clear(w.depth)
	if w.depth > 0 {
		w.depth--
	}
}

func (w *Writer) WriteStartObject() {
	w.beforeValue()
	w.stream.WriteRaw("{")
	w.push()
}

func (w *Writer) WriteEndObject() {
	w.pop()
	w.stream.WriteRaw("}")
}

func (w *Writer) WriteStartArray() {
	w.beforeValue()
	w.stream.WriteRaw("[")
	w.push()
}

func (w *Writer) WriteEndArray() {
	w.pop()
	w.stream.WriteRaw("]")
}

func (w *Writer) WritePropertyName(name string) {
	w.beforeValue()
	w.writeString(name)
	w.stream.WriteRaw(":")
	w.afterName = true
}

func (w *Writer) WriteEncodedName(encoded string) {
	w.beforeValue()
	w.stream.WriteRaw(encoded)
	w.afterName = true
}

func (w *Writer) WriteNull() {
	w.beforeValue()
	w.stream.WriteNil()
}

func (w *Writer) WriteBool(v bool) {
	w.beforeValue()
	w.stream.WriteBool(v)
}

func (w *Writer) WriteInt(v int64) {
	w.beforeValue()
	w.stream.WriteInt64(v)
}

func (w *Writer) WriteUint(v uint64) {
	w.beforeValue()
	w.stream.WriteUint64(v)
}

// WriteFloat formats v the way encoding/json does. NaN and infinities
// have no JSON form and are rejected before anything is written.
func (w *Writer) WriteFloat(v float64, bits int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.UnsupportedValue(v, "unsupported float value "+strconv.FormatFloat(v, 'g', -1, bits))
	}
	w.beforeValue()
	w.stream.SetBuffer(AppendFloat(w.stream.Buffer(), v, bits))
	return nil
}

func (w *Writer) WriteString(s string) {
	w.beforeValue()
	w.writeString(s)
}

func (w *Writer) writeString(s string) {
	if w.escapeHTML {
		w.stream.WriteStringWithHTMLEscaped(s)
	} else {
		w.stream.WriteString(s)
	}
}

func (w *Writer) WriteRaw(raw []byte) {
	w.beforeValue()
	w.stream.SetBuffer(append(w.stream.Buffer(), raw...))
}

// Buffered returns the number of bytes not yet flushed.
func (w *Writer) Buffered() int { return w.stream.Buffered() }

// IsCapacityExceeded reports whether at least threshold bytes are pending.
func (w *Writer) IsCapacityExceeded(threshold int) bool {
	return threshold > 0 && w.stream.Buffered() >= threshold
}

// Flush hands buffered bytes to the underlying io.Writer. Without one it
// is a no-op.
func (w *Writer) Flush() error {
	return w.stream.Flush()
}

// Bytes returns the buffered output. The slice is reused by later writes.
func (w *Writer) Bytes() []byte { return w.stream.Buffer() }

// Err returns the first error the underlying stream recorded.
func (w *Writer) Err() error { return w.stream.Error }

// EncodeName renders name as `"name":` so plans can store names pre-escaped.
func EncodeName(name string, escapeHTML bool) string {
	s := jsoniter.NewStream(jsoniter.ConfigCompatibleWithStandardLibrary, nil, len(name)+4)
	if escapeHTML {
		s.WriteStringWithHTMLEscaped(name)
	} else {
		s.WriteString(name)
	}
	s.WriteRaw(":")
	return string(s.Buffer())
}

// AppendFloat appends v using encoding/json's float formatting.
func AppendFloat(b []byte, v float64, bits int) []byte {
	abs := math.Abs(v)
	format := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	b = strconv.AppendFloat(b, v, format, -1, bits)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}
