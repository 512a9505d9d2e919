package guard

// Gate returns content when req is met and fallback otherwise, including while the
// session is loading. fallback may be the zero value to render nothing.
func Gate[T any](v View, req Requirement, content, fallback T) T {
	if Allowed(v, req) {
		return content
	}
	return fallback
}
