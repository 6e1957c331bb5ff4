package output

// Translator resolves user-facing messages for a locale.
type Translator interface {
	// T renders the message identified by key for the given locale.
	// data fills template placeholders and may be nil.
	T(locale, key string, data map[string]any) string
}
