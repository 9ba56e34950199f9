package storelog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu   sync.Mutex
	base *zap.Logger
)

func defaultLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Logger returns the process-wide structured logger, built lazily with a
// production zap config on first use.
func Logger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base = defaultLogger()
	}
	return base.Sugar()
}

// Named returns a child logger tagged with component, e.g.
// storelog.Named("block").
func Named(component string) *zap.SugaredLogger {
	return Logger().Named(component)
}

// SetLogger overrides the process-wide logger, used by tests and by cmd/raddb
// to install a development config instead of the production default.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}
