package logging

import "log/slog"

// Attr helpers shared across packages so call sites stay short and the
// attribute keys stay consistent.

// File is the source-file attribute (basename, not full path).
func File(name string) slog.Attr { return slog.String("file", name) }

// Err wraps an error as the conventional "error" attribute. A nil error
// yields an empty attr, which the console handler skips.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
