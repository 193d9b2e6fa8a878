package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sakif/codecraft/internal/apiclient"
	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/editor"
	"github.com/sakif/codecraft/internal/executor"
	"github.com/sakif/codecraft/internal/executor/piston"
	"github.com/sakif/codecraft/internal/prefs"
)

// errRunFailed is returned when the program itself failed; the error text
// has already been printed.
var errRunFailed = errors.New("run failed")

// Runner holds the dependencies for CLI commands and provides one method
// per command action.
type Runner struct {
	logger     *slog.Logger
	logHandler *log.Logger
	output     io.Writer
	gateway    executor.Gateway
}

// RunnerOpts configures a Runner. Gateway overrides the --gateway flag.
type RunnerOpts struct {
	Logger     *slog.Logger
	LogHandler *log.Logger
	Output     io.Writer
	Gateway    executor.Gateway
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.LogHandler == nil {
		opts.LogHandler = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(opts.LogHandler)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		logger:     opts.Logger,
		logHandler: opts.LogHandler,
		output:     opts.Output,
		gateway:    opts.Gateway,
	}
}

// App is the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:     "codecraft",
		Usage:    "Run code in many languages from the terminal",
		Writer:   r.output,
		Flags:    globalFlags(),
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{runCommand(r)}
	commands = append(commands, prefsCommands(r)...)
	return append(commands, serverCommands(r)...)
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		r.logHandler.SetLevel(log.DebugLevel)
	}
	return ctx, nil
}

// openStore picks Redis when --redis-addr is set, the preferences file
// otherwise. The returned func releases it.
func (r *Runner) openStore(ctx context.Context, cmd *cli.Command) (prefs.Store, func(), error) {
	if addr := cmd.String("redis-addr"); addr != "" {
		rs, err := prefs.DialRedisStore(ctx, addr, cmd.String("redis-password"), cmd.String("redis-namespace"))
		if err != nil {
			return nil, nil, err
		}
		r.logger.Debug("using redis preferences", "addr", addr)
		return rs, func() { rs.Close() }, nil
	}

	path := cmd.String("prefs")
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locating config dir: %w", err)
		}
		path = filepath.Join(dir, "codecraft", "prefs.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	fs, err := prefs.OpenFileStore(path)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Debug("using preferences file", "path", path)
	return fs, func() {}, nil
}

func (r *Runner) openSession(ctx context.Context, cmd *cli.Command) (*editor.Session, func(), error) {
	store, closeStore, err := r.openStore(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	gw := r.gateway
	if gw == nil {
		gw = piston.New(piston.Config{
			BaseURL: cmd.String("gateway"),
			APIKey:  cmd.String("gateway-key"),
			Timeout: cmd.Duration("timeout"),
		}, r.logger)
	}

	sess, err := editor.New(ctx, gw, store, r.logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return sess, closeStore, nil
}

func (r *Runner) api(cmd *cli.Command) *apiclient.Client {
	return apiclient.New(cmd.String("server"), cmd.String("token"), cmd.Duration("server-timeout"))
}

func checkLanguage(language string) error {
	if _, ok := executor.Lookup(language); !ok {
		return fmt.Errorf("unsupported language %q (see `codecraft languages`)", language)
	}
	return nil
}

// Run executes a file, or whatever was last cached for the language.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	sess, closeStore, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if lang := cmd.String("lang"); lang != "" {
		if err := checkLanguage(lang); err != nil {
			return err
		}
		if err := sess.SetLanguage(ctx, lang); err != nil {
			return err
		}
	}

	if file := cmd.StringArg("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		sess.SetCode(string(data))
		if err := sess.SaveCode(ctx); err != nil {
			return err
		}
	} else if _, err := sess.RestoreCode(ctx); err != nil {
		return err
	}

	result := sess.Run(ctx)
	language := sess.Snapshot().Language

	if result.Error != "" {
		r.writePlain("%s\n", result.Error)
	} else {
		r.writePlain("%s\n", result.Output)
	}

	// Empty code never reached the gateway; there is nothing to save.
	if cmd.Bool("save") && result.Code != "" {
		r.saveRun(ctx, cmd, language, result)
	}

	if result.Error != "" {
		return errRunFailed
	}
	return nil
}

func (r *Runner) saveRun(ctx context.Context, cmd *cli.Command, language string, result executor.ExecutionResult) {
	var output, errMsg *string
	if result.Error != "" {
		errMsg = &result.Error
	} else {
		output = &result.Output
	}

	rec, err := r.api(cmd).SaveExecution(ctx, language, result.Code, output, errMsg)
	switch {
	case errors.Is(err, apperror.ErrEntitlement):
		r.logger.Warn("not saved: saving " + language + " runs requires a Pro account")
	case apiclient.IsUnauthorized(err):
		r.logger.Warn("not saved: pass --token or set CODECRAFT_TOKEN")
	case err != nil:
		r.logger.Error("not saved", "error", err)
	default:
		r.logger.Info("run saved", "id", rec.ID)
	}
}

// Language shows or switches the language and reports whether code was
// cached for the new one.
func (r *Runner) Language(ctx context.Context, cmd *cli.Command) error {
	sess, closeStore, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	lang := cmd.StringArg("language")
	if lang == "" {
		return r.writePlain("%s\n", sess.Snapshot().Language)
	}
	if err := checkLanguage(lang); err != nil {
		return err
	}

	if err := sess.SetLanguage(ctx, lang); err != nil {
		return err
	}
	restored, err := sess.RestoreCode(ctx)
	if err != nil {
		return err
	}

	if restored {
		return r.writePlain("language set to %s (cached code restored)\n", lang)
	}
	return r.writePlain("language set to %s\n", lang)
}

func (r *Runner) Theme(ctx context.Context, cmd *cli.Command) error {
	sess, closeStore, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	theme := cmd.StringArg("theme")
	if theme == "" {
		return r.writePlain("%s\n", sess.Snapshot().Theme)
	}
	if err := sess.SetTheme(ctx, theme); err != nil {
		return err
	}
	return r.writePlain("theme set to %s\n", theme)
}

func (r *Runner) FontSize(ctx context.Context, cmd *cli.Command) error {
	sess, closeStore, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	arg := cmd.StringArg("size")
	if arg == "" {
		return r.writePlain("%d\n", sess.Snapshot().FontSize)
	}
	size, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("font size must be a number, got %q", arg)
	}
	if err := sess.SetFontSize(ctx, size); err != nil {
		return err
	}
	return r.writePlain("font size set to %d\n", size)
}

// Prefs prints every stored key. Cached code is summarized, not dumped.
func (r *Runner) Prefs(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	all, err := store.All(ctx)
	if err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(all)) {
		v := all[k]
		if strings.HasPrefix(k, prefs.CodeKey("")) {
			v = fmt.Sprintf("<%d bytes>", len(v))
		}
		r.writePlain("%s = %s\n", k, v)
	}
	return nil
}

func (r *Runner) Languages(ctx context.Context, cmd *cli.Command) error {
	for _, lang := range executor.Languages() {
		rt, _ := executor.Lookup(lang)
		marker := ""
		if lang == executor.JavaScript {
			marker = "  (free)"
		}
		r.writePlain("%-12s %s%s\n", lang, rt.Version, marker)
	}
	return nil
}

func (r *Runner) Share(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	if file == "" {
		return errors.New("usage: codecraft share <file>")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	lang := cmd.String("lang")
	if lang == "" {
		sess, closeStore, err := r.openSession(ctx, cmd)
		if err != nil {
			return err
		}
		lang = sess.Snapshot().Language
		closeStore()
	}
	title := cmd.String("title")
	if title == "" {
		title = filepath.Base(file)
	}

	snippet, err := r.api(cmd).CreateSnippet(ctx, title, lang, string(data))
	if err != nil {
		return err
	}
	return r.writePlain("shared %q as %s\n", snippet.Title, snippet.ID)
}

func (r *Runner) Snippets(ctx context.Context, cmd *cli.Command) error {
	list, err := r.api(cmd).Snippets(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(list)
	}
	for _, s := range list {
		r.writePlain("%s  %-10s %-30s by %s\n", s.ID, s.Language, s.Title, s.UserName)
	}
	return nil
}

func (r *Runner) Star(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return errors.New("usage: codecraft star <snippet id>")
	}
	st, err := r.api(cmd).Star(ctx, id)
	if err != nil {
		return err
	}
	verb := "unstarred"
	if st.Starred {
		verb = "starred"
	}
	return r.writePlain("%s %s (%d stars)\n", verb, id, st.Count)
}

func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	recs, err := r.api(cmd).Executions(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(recs)
	}
	for _, rec := range recs {
		status := "ok"
		if rec.Error != nil {
			status = "error"
		}
		r.writePlain("%s  %s  %-10s %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.ID, rec.Language, status)
	}
	return nil
}

func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	u, err := r.api(cmd).Me(ctx)
	if err != nil {
		return err
	}
	plan := "free"
	if u.IsPro {
		plan = "pro"
	}
	return r.writePlain("%s <%s> (%s)\n", u.Name, u.Email, plan)
}

func (r *Runner) writeJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.writePlain("%s\n", out)
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
