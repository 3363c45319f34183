// Package sl provides small helpers for building slog attributes.
package sl

import "log/slog"

// Err returns a slog attribute for an error value under the "error" key.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
