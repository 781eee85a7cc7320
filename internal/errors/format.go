package errors

// LogAttrs formats an error into key-value pairs suitable for
// slog.Any/slog.Group attributes at the call sites that log build and
// mount diagnostics.
func LogAttrs(err error) map[string]any {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return map[string]any{"error": err.Error()}
	}

	attrs := map[string]any{
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	if e.Field != "" {
		attrs["field"] = e.Field
	}
	if e.Cause != nil {
		attrs["cause"] = e.Cause.Error()
	}
	return attrs
}
