// Package logger bridges slog to libraries that expect a key/value style
// logger, such as robfig/cron.
package logger

import "log/slog"

// KV forwards alternating key/value log calls to a slog.Logger.
type KV struct {
	base *slog.Logger
}

// NewKV wraps base; a nil base falls back to slog.Default().
func NewKV(base *slog.Logger) *KV {
	if base == nil {
		base = slog.Default()
	}
	return &KV{base: base}
}

// Info logs msg at info level with the given key/value pairs.
func (l *KV) Info(msg string, keysAndValues ...any) {
	l.base.Info(msg, keysAndValues...)
}

// Error logs msg at error level, prepending err to the key/value pairs.
func (l *KV) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{"error", err}, keysAndValues...)
	l.base.Error(msg, args...)
}
