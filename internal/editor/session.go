// Package editor holds the state of one editing session: the current
// language and source, display preferences, and the outcome of the last run.
//
// A Session is an ordinary value. Construct one per user/terminal; nothing
// in this package is global.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/sakif/codecraft/internal/executor"
	"github.com/sakif/codecraft/internal/prefs"
)

// Defaults used when no preference has been stored yet.
const (
	DefaultLanguage = executor.JavaScript
	DefaultTheme    = "vs-dark"
	DefaultFontSize = 16
)

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Language string
	Theme    string
	FontSize int
	Code     string

	Running bool
	Output  string
	Error   string
	// Result is nil until the first run that reached the gateway stage.
	Result *executor.ExecutionResult
}

// Session is safe for concurrent use. Run releases the lock while the
// gateway call is in flight; overlapping runs are not queued and the last
// one to finish wins.
type Session struct {
	gw     executor.Gateway
	store  prefs.Store
	logger *slog.Logger

	mu       sync.Mutex
	language string
	theme    string
	fontSize int
	code     string
	running  bool
	output   string
	errMsg   string
	result   *executor.ExecutionResult
}

// New creates a session and loads preferences from store.
//
// A nil store means no persistent storage is available: the session starts
// with the defaults and keeps changes in memory only. Otherwise stored values
// win, and any preference that was never stored is written with its default.
func New(ctx context.Context, gw executor.Gateway, store prefs.Store, logger *slog.Logger) (*Session, error) {
	s := &Session{
		gw:       gw,
		store:    store,
		logger:   logger,
		language: DefaultLanguage,
		theme:    DefaultTheme,
		fontSize: DefaultFontSize,
	}
	if store == nil {
		return s, nil
	}

	language, err := loadOrInit(ctx, store, prefs.KeyLanguage, DefaultLanguage)
	if err != nil {
		return nil, err
	}
	theme, err := loadOrInit(ctx, store, prefs.KeyTheme, DefaultTheme)
	if err != nil {
		return nil, err
	}
	size, err := loadOrInit(ctx, store, prefs.KeyFontSize, strconv.Itoa(DefaultFontSize))
	if err != nil {
		return nil, err
	}

	s.language = language
	s.theme = theme
	if n, err := strconv.Atoi(size); err == nil {
		s.fontSize = n
	} else {
		logger.Warn("ignoring stored font size", slog.String("value", size))
	}

	return s, nil
}

func loadOrInit(ctx context.Context, store prefs.Store, key, def string) (string, error) {
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("editor: loading %s: %w", key, err)
	}
	if ok {
		return v, nil
	}
	if err := store.Set(ctx, key, def); err != nil {
		return "", fmt.Errorf("editor: writing default %s: %w", key, err)
	}
	return def, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Language: s.language,
		Theme:    s.theme,
		FontSize: s.fontSize,
		Code:     s.code,
		Running:  s.running,
		Output:   s.output,
		Error:    s.errMsg,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// SetCode replaces the editor text. It is not persisted until the language
// is switched.
func (s *Session) SetCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
}

// SetLanguage switches languages. Non-empty code is first cached under the
// language being left, then the new language is stored, then output and
// error are cleared. The editor text itself is left alone; call RestoreCode
// to load what was cached for the new language.
func (s *Session) SetLanguage(ctx context.Context, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if s.code != "" {
			if err := s.store.Set(ctx, prefs.CodeKey(s.language), s.code); err != nil {
				return fmt.Errorf("editor: caching %s code: %w", s.language, err)
			}
		}
		if err := s.store.Set(ctx, prefs.KeyLanguage, language); err != nil {
			return fmt.Errorf("editor: saving language: %w", err)
		}
	}

	s.language = language
	s.output = ""
	s.errMsg = ""
	return nil
}

// SetTheme stores the theme as given. No validation.
func (s *Session) SetTheme(ctx context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(ctx, prefs.KeyTheme, theme); err != nil {
			return fmt.Errorf("editor: saving theme: %w", err)
		}
	}
	s.theme = theme
	return nil
}

// SetFontSize stores the size as given. No range checks.
func (s *Session) SetFontSize(ctx context.Context, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(ctx, prefs.KeyFontSize, strconv.Itoa(size)); err != nil {
			return fmt.Errorf("editor: saving font size: %w", err)
		}
	}
	s.fontSize = size
	return nil
}

// RestoreCode loads the code cached for the current language, if any, and
// reports whether something was loaded.
func (s *Session) RestoreCode(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return false, nil
	}
	code, ok, err := s.store.Get(ctx, prefs.CodeKey(s.language))
	if err != nil {
		return false, fmt.Errorf("editor: loading %s code: %w", s.language, err)
	}
	if ok {
		s.code = code
	}
	return ok, nil
}

// SaveCode caches the current code under the current language, as the
// editor does on every edit. Empty code is not written.
func (s *Session) SaveCode(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil || s.code == "" {
		return nil
	}
	if err := s.store.Set(ctx, prefs.CodeKey(s.language), s.code); err != nil {
		return fmt.Errorf("editor: caching %s code: %w", s.language, err)
	}
	return nil
}
