package observability

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: JSON to stdout in production,
// console encoding when dev is set.
func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Named returns a child logger tagged with the given subsystem name.
// A nil base yields a no-op logger, which keeps tests quiet.
func Named(base *zap.Logger, name string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(name)
}
