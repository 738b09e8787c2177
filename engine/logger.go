package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the engine's logger. It is a no-op logger until
// SetLogger installs one.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger configures the engine's logger. A nil l restores the no-op
// logger. It is safe to call while plans execute.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

var debug atomic.Bool

// SetDebug toggles per-chunk debug logging.
func SetDebug(on bool) { debug.Store(on) }

func debugf(format string, args ...any) {
	if debug.Load() {
		Logger().Sugar().Debugf(format, args...)
	}
}
