// Package prefs persists editor preferences as plain string key/value pairs.
//
// Values carry no schema: the language, theme and font size are stored as
// strings, and each language's last-edited source lives under its own key.
package prefs

import "context"

// Keys used by the editor session.
const (
	KeyLanguage = "editor-language"
	KeyTheme    = "editor-theme"
	KeyFontSize = "editor-font-size"

	codeKeyPrefix = "editor-code-"
)

// CodeKey is the key holding the cached source for a language.
func CodeKey(language string) string {
	return codeKeyPrefix + language
}

// Store is a flat string key/value store.
//
// Get reports ok=false for a missing key; err is reserved for the backend
// itself failing.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// All returns every stored pair. Used for listing preferences.
	All(ctx context.Context) (map[string]string, error)
}
