package jsonplan

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/jsonplan/compiler"
	"github.com/wippyai/jsonplan/engine"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the facade's logger, a no-op logger by default.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger installs l for the facade and names children of it for the
// compiler and engine. A nil l restores the no-op loggers.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger.Store(zap.NewNop())
		compiler.SetLogger(nil)
		engine.SetLogger(nil)
		return
	}
	logger.Store(l)
	compiler.SetLogger(l.Named("compiler"))
	engine.SetLogger(l.Named("engine"))
}
