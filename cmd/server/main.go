// Command server runs the codecraft HTTP API.
//
//	server [--config config.toml]          serve until SIGINT/SIGTERM
//	server issue-token <userId>            mint a session token (development)
//	server set-pro <userId> [--off]        grant or revoke the pro plan
//	server init-config [path]              write the example config
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/sakif/codecraft/internal/auth"
	"github.com/sakif/codecraft/internal/config"
	"github.com/sakif/codecraft/internal/executor/piston"
	"github.com/sakif/codecraft/internal/model"
	sqliteRepo "github.com/sakif/codecraft/internal/repository/sqlite"
	"github.com/sakif/codecraft/internal/server"
	"github.com/sakif/codecraft/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a TOML configuration file (optional)",
		Sources: cli.EnvVars("CODECRAFT_CONFIG"),
	}

	app := &cli.Command{
		Name:  "codecraft-server",
		Usage: "Snippet sharing and code execution API",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(cmd.String("config"), logger)
		},
		Commands: []*cli.Command{
			{
				Name:      "issue-token",
				Usage:     "Print a session token for a user ID",
				Flags:     []cli.Flag{&cli.DurationFlag{Name: "ttl", Value: auth.DefaultTTL, Usage: "Token lifetime"}},
				Arguments: []cli.Argument{&cli.StringArg{Name: "userId"}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return issueToken(cmd)
				},
			},
			{
				Name:      "set-pro",
				Usage:     "Grant (or with --off, revoke) the pro plan for a user ID",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "off", Usage: "Revoke instead of grant"}},
				Arguments: []cli.Argument{&cli.StringArg{Name: "userId"}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.String("config"))
					if err != nil {
						return fmt.Errorf("loading config: %w", err)
					}
					user, err := setPro(ctx, cfg.Server.DBPath, cmd.StringArg("userId"), !cmd.Bool("off"), logger)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "%s isPro=%t\n", user.UserID, user.IsPro)
					return nil
				},
			},
			{
				Name:      "init-config",
				Usage:     "Write the example configuration file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path", Value: "config.toml"}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.StringArg("path")
					if err := config.CreateConfigFile(path); err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", path)
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func serve(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if dir := filepath.Dir(cfg.Server.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	gw := piston.New(piston.Config{
		BaseURL: cfg.Gateway.URL,
		APIKey:  cfg.Gateway.APIKey,
		Timeout: cfg.Gateway.Timeout(),
	}, logger)

	srv, err := server.New(cfg, gw, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Start()
}

// setPro updates the plan flag straight in the database file.
func setPro(ctx context.Context, dbPath, userID string, isPro bool, logger *slog.Logger) (*model.User, error) {
	if userID == "" {
		return nil, errors.New("usage: set-pro <userId> [--off]")
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return service.NewUserService(db, logger).SetPro(ctx, userID, isPro)
}

func issueToken(cmd *cli.Command) error {
	userID := cmd.StringArg("userId")
	if userID == "" {
		return fmt.Errorf("usage: %s issue-token <userId>", cmd.Root().Name)
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("JWT_SECRET: %w", err)
	}

	token, err := tokens.Generate(userID, cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, token)
	return nil
}
