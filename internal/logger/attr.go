// Package logger holds the slog attribute helpers shared by memoslot and its
// commands.
//
// Helpers return an empty slog.Attr for nil or zero inputs so call sites can
// pass them unconditionally:
//
//	log.Debug("compute failed", logger.Error(err))
package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates the duration since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Input records a cache input under the key "input".
func Input(v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any("input", v)
}

// Count creates a generic unsigned counter attribute.
func Count(key string, n uint64) slog.Attr {
	return slog.Uint64(key, n)
}

// Ratio creates a float attribute for ratios in [0, 1].
func Ratio(key string, r float64) slog.Attr {
	return slog.Float64(key, r)
}

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ParseLevel maps a textual level ("debug", "info", "warn", "error") to a
// slog.Level. Unknown values yield an error.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}
