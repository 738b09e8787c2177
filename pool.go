package jsonplan

import (
	"sync"

	"github.com/wippyai/jsonplan/writer"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 64 * 1024 // max retained buffer bytes
	poolInitCap = 512
)

// writer pool for Marshal
var writerPool = sync.Pool{
	New: func() any {
		return writer.New(nil, writer.Options{BufferSize: poolInitCap})
	},
}

func getWriter(escapeHTML bool) *writer.Writer {
	w := writerPool.Get().(*writer.Writer)
	w.SetEscapeHTML(escapeHTML)
	return w
}

func putWriter(w *writer.Writer) {
	if w == nil || cap(w.Bytes()) > poolMaxCap {
		return // reject oversized
	}
	w.Reset(nil)
	writerPool.Put(w)
}
