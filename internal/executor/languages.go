package executor

import "sort"

// JavaScript is the one language free accounts may save runs for, and the
// editor's starting language.
const JavaScript = "javascript"

// Runtime is the gateway-side name and version for one editor language.
type Runtime struct {
	Language string
	Version  string
}

// runtimes maps the editor's language key to the runtime the gateway
// should use. Versions are pinned; the gateway rejects unknown pairs.
var runtimes = map[string]Runtime{
	"javascript": {Language: "javascript", Version: "18.15.0"},
	"typescript": {Language: "typescript", Version: "5.0.3"},
	"python":     {Language: "python", Version: "3.10.0"},
	"java":       {Language: "java", Version: "15.0.2"},
	"go":         {Language: "go", Version: "1.16.2"},
	"rust":       {Language: "rust", Version: "1.68.2"},
	"cpp":        {Language: "cpp", Version: "10.2.0"},
	"csharp":     {Language: "csharp", Version: "6.12.0"},
	"ruby":       {Language: "ruby", Version: "3.0.1"},
	"swift":      {Language: "swift", Version: "5.3.3"},
}

// Lookup returns the runtime for an editor language key.
func Lookup(language string) (Runtime, bool) {
	rt, ok := runtimes[language]
	return rt, ok
}

// Languages returns every supported language key, sorted.
func Languages() []string {
	keys := make([]string, 0, len(runtimes))
	for k := range runtimes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewRequest builds the gateway request for code in the given language.
func NewRequest(language, code string) (Request, bool) {
	rt, ok := Lookup(language)
	if !ok {
		return Request{}, false
	}
	return Request{
		Language: rt.Language,
		Version:  rt.Version,
		Files:    []File{{Content: code}},
	}, true
}
