package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "prefs",
			Usage:   "Preferences file (default: <user config dir>/codecraft/prefs.toml)",
			Sources: cli.EnvVars("CODECRAFT_PREFS"),
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Keep preferences in Redis at this address instead of a file",
			Sources: cli.EnvVars("CODECRAFT_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Sources: cli.EnvVars("CODECRAFT_REDIS_PASSWORD"),
		},
		&cli.StringFlag{
			Name:  "redis-namespace",
			Usage: "Preference namespace within Redis, e.g. your user name",
			Value: "default",
		},
		&cli.StringFlag{
			Name:    "gateway",
			Usage:   "Execution gateway base URL",
			Value:   "https://emkc.org/api/v2/piston",
			Sources: cli.EnvVars("GATEWAY_URL"),
		},
		&cli.StringFlag{
			Name:    "gateway-key",
			Usage:   "Bearer token for the gateway, if it needs one",
			Sources: cli.EnvVars("GATEWAY_API_KEY"),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Gateway request timeout (0: none)",
		},
		&cli.DurationFlag{
			Name:  "server-timeout",
			Usage: "codecraft server request timeout",
			Value: 30 * time.Second,
		},
		&cli.StringFlag{
			Name:    "server",
			Usage:   "codecraft server base URL",
			Value:   "http://localhost:8080",
			Sources: cli.EnvVars("CODECRAFT_SERVER"),
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Session token for the server",
			Sources: cli.EnvVars("CODECRAFT_TOKEN"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Verbose logging",
		},
	}
}

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a file (or the code cached for the current language)",
		Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Switch to this language before running",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save the run to your history on the server",
			},
		},
		Action: r.Run,
	}
}

func prefsCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "language",
			Aliases:   []string{"lang"},
			Usage:     "Show or switch the editor language",
			Arguments: []cli.Argument{&cli.StringArg{Name: "language"}},
			Action:    r.Language,
		},
		{
			Name:      "theme",
			Usage:     "Show or set the editor theme",
			Arguments: []cli.Argument{&cli.StringArg{Name: "theme"}},
			Action:    r.Theme,
		},
		{
			Name:      "font-size",
			Usage:     "Show or set the editor font size",
			Arguments: []cli.Argument{&cli.StringArg{Name: "size"}},
			Action:    r.FontSize,
		},
		{
			Name:   "prefs",
			Usage:  "List every stored preference",
			Action: r.Prefs,
		},
		{
			Name:   "languages",
			Usage:  "List supported languages",
			Action: r.Languages,
		},
	}
}

func serverCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "share",
			Usage:     "Share a file as a public snippet",
			Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Snippet title (default: file name)"},
				&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Language (default: current editor language)"},
			},
			Action: r.Share,
		},
		{
			Name:   "snippets",
			Usage:  "List shared snippets",
			Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
			Action: r.Snippets,
		},
		{
			Name:      "star",
			Usage:     "Toggle your star on a snippet",
			Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
			Action:    r.Star,
		},
		{
			Name:   "history",
			Usage:  "List your saved runs",
			Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
			Action: r.History,
		},
		{
			Name:   "whoami",
			Usage:  "Show the account the token belongs to",
			Action: r.WhoAmI,
		},
	}
}
