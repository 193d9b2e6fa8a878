package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/codecraft/internal/executor"
	"github.com/sakif/codecraft/internal/prefs"
)

var zero, one = 0, 1

type recordingGateway struct {
	mu   sync.Mutex
	reqs []executor.Request
	resp *executor.Response
}

func (g *recordingGateway) Execute(_ context.Context, req executor.Request) (*executor.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	return g.resp, nil
}

type cliHarness struct {
	runner    *Runner
	out       *bytes.Buffer
	gw        *recordingGateway
	prefsPath string
	dir       string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	out := &bytes.Buffer{}
	gw := &recordingGateway{resp: &executor.Response{Run: &executor.Stage{Code: &zero, Output: "hello\n"}}}
	dir := t.TempDir()

	return &cliHarness{
		runner: NewRunner(RunnerOpts{
			Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
			LogHandler: log.New(io.Discard),
			Output:     out,
			Gateway:    gw,
		}),
		out:       out,
		gw:        gw,
		prefsPath: filepath.Join(dir, "prefs.toml"),
		dir:       dir,
	}
}

func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	h.out.Reset()
	argv := append([]string{"codecraft", "--prefs", h.prefsPath}, args...)
	err := h.runner.App().Run(t.Context(), argv)
	return h.out.String(), err
}

func (h *cliHarness) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (h *cliHarness) pref(t *testing.T, key string) (string, bool) {
	t.Helper()
	store, err := prefs.OpenFileStore(h.prefsPath)
	require.NoError(t, err)
	v, ok, err := store.Get(t.Context(), key)
	require.NoError(t, err)
	return v, ok
}

func TestRun_File(t *testing.T) {
	h := newHarness(t)
	file := h.writeFile(t, "main.js", "console.log('hello')")

	out, err := h.run(t, "run", file)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	require.Len(t, h.gw.reqs, 1)
	assert.Equal(t, "javascript", h.gw.reqs[0].Language)

	cached, ok := h.pref(t, prefs.CodeKey("javascript"))
	assert.True(t, ok)
	assert.Equal(t, "console.log('hello')", cached)
}

func TestRun_SwitchLanguage(t *testing.T) {
	h := newHarness(t)
	file := h.writeFile(t, "main.py", "print('hello')")

	_, err := h.run(t, "run", "--lang", "python", file)
	require.NoError(t, err)

	require.Len(t, h.gw.reqs, 1)
	assert.Equal(t, "python", h.gw.reqs[0].Language)
	lang, _ := h.pref(t, prefs.KeyLanguage)
	assert.Equal(t, "python", lang)
}

func TestRun_ReusesCachedCode(t *testing.T) {
	h := newHarness(t)
	file := h.writeFile(t, "main.js", "1 + 1")

	_, err := h.run(t, "run", file)
	require.NoError(t, err)
	_, err = h.run(t, "run")
	require.NoError(t, err)

	require.Len(t, h.gw.reqs, 2)
	assert.Equal(t, "1 + 1", h.gw.reqs[1].Files[0].Content)
}

func TestRun_NoCode(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "run")
	assert.ErrorIs(t, err, errRunFailed)
	assert.Equal(t, executor.MsgNoCode+"\n", out)
	assert.Empty(t, h.gw.reqs)
}

func TestRun_ProgramFails(t *testing.T) {
	h := newHarness(t)
	h.gw.resp = &executor.Response{Run: &executor.Stage{Code: &one, Stderr: "ReferenceError: x is not defined"}}
	file := h.writeFile(t, "bad.js", "x")

	out, err := h.run(t, "run", file)
	assert.ErrorIs(t, err, errRunFailed)
	assert.Contains(t, out, "ReferenceError")
}

func TestRun_UnknownLanguage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "run", "--lang", "cobol")
	assert.ErrorContains(t, err, "unsupported language")
	assert.Empty(t, h.gw.reqs)
}

func TestRun_Save(t *testing.T) {
	h := newHarness(t)

	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"exec1"}`))
	}))
	t.Cleanup(srv.Close)

	file := h.writeFile(t, "main.js", "console.log('hello')")
	_, err := h.run(t, "--server", srv.URL, "--token", "tok", "run", "--save", file)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "javascript", got["language"])
	assert.Equal(t, "hello", got["output"])
	assert.Nil(t, got["error"])
}

func TestRun_SaveRejectedStillSucceeds(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"pro_required","message":"Only pro users can use this language"}`))
	}))
	t.Cleanup(srv.Close)

	file := h.writeFile(t, "main.py", "print('hello')")
	out, err := h.run(t, "--server", srv.URL, "--token", "tok", "run", "--lang", "python", "--save", file)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestThemeAndFontSize(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "vs-dark\n", out)

	_, err = h.run(t, "theme", "monokai")
	require.NoError(t, err)
	out, err = h.run(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "monokai\n", out)

	_, err = h.run(t, "font-size", "20")
	require.NoError(t, err)
	out, err = h.run(t, "font-size")
	require.NoError(t, err)
	assert.Equal(t, "20\n", out)

	_, err = h.run(t, "font-size", "huge")
	assert.Error(t, err)
}

func TestLanguage_RestoresCachedCode(t *testing.T) {
	h := newHarness(t)
	file := h.writeFile(t, "main.py", "print(1)")

	_, err := h.run(t, "run", "--lang", "python", file)
	require.NoError(t, err)

	out, err := h.run(t, "language", "go")
	require.NoError(t, err)
	assert.Equal(t, "language set to go\n", out)

	out, err = h.run(t, "language", "python")
	require.NoError(t, err)
	assert.Equal(t, "language set to python (cached code restored)\n", out)

	out, err = h.run(t, "language")
	require.NoError(t, err)
	assert.Equal(t, "python\n", out)
}

func TestPrefs_SummarizesCode(t *testing.T) {
	h := newHarness(t)
	file := h.writeFile(t, "main.js", "12345")
	_, err := h.run(t, "run", file)
	require.NoError(t, err)

	out, err := h.run(t, "prefs")
	require.NoError(t, err)
	assert.Contains(t, out, "editor-code-javascript = <5 bytes>\n")
	assert.Contains(t, out, "editor-language = javascript\n")
	assert.Contains(t, out, "editor-font-size = 16\n")
}

func TestLanguages(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "javascript   18.15.0  (free)\n")
	assert.Contains(t, out, "python       3.10.0\n")
}

func TestRedisPreferences(t *testing.T) {
	mr := miniredis.RunT(t)
	h := newHarness(t)

	_, err := h.run(t, "--redis-addr", mr.Addr(), "--redis-namespace", "ada", "theme", "solarized")
	require.NoError(t, err)

	assert.Equal(t, "solarized", mr.HGet("codecraft:prefs:ada", prefs.KeyTheme))
	_, statErr := os.Stat(h.prefsPath)
	assert.True(t, os.IsNotExist(statErr), "file store untouched when redis is used")
}
