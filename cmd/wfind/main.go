package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/mgomes/wikisearch/internal/config"
	"github.com/mgomes/wikisearch/internal/hits"
	"github.com/mgomes/wikisearch/internal/logging"
	"github.com/mgomes/wikisearch/internal/search"
	"github.com/mgomes/wikisearch/internal/session"
	"github.com/mgomes/wikisearch/internal/tui"
)

var log = logging.ForComponent(logging.CompCLI)

func main() {
	app := &cli.Command{
		Name:      "wfind",
		Usage:     "Search Wikipedia from the terminal",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Search query to run on start",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: defaultConfigPath(),
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Search service URL (overrides the config file)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.String("query")
			if query == "" {
				query = strings.Join(c.Args().Slice(), " ")
			}
			return runTUI(ctx, c, query)
		},
		Commands: []*cli.Command{
			setupCommand(),
			searchCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	path, err := config.Path()
	if err != nil {
		return "config.toml"
	}
	return path
}

// loadConfig reads the config named by --config and applies --endpoint.
func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadFrom(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if endpoint := c.String("endpoint"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) (io.Closer, error) {
	path := cfg.LogFile
	if path == "" {
		var err error
		if path, err = config.LogPath(); err != nil {
			return nil, err
		}
	}
	closer, err := logging.Setup(path, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return closer, nil
}

func newClient(cfg *config.Config) *hits.Client {
	return hits.NewClient(cfg.Endpoint, hits.Options{
		Timeout:   cfg.Timeout.Duration,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
}

func newSearcher(cfg *config.Config) *search.Searcher {
	return search.New(newClient(cfg), search.Options{
		SuggestLimit: cfg.SuggestLimit,
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL.Duration,
	})
}

func runTUI(ctx context.Context, c *cli.Command, query string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	closer, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	sessionID := uuid.NewString()
	sessionLog := logging.ForComponent(logging.CompSession).With(slog.String("session", sessionID))
	searcher := newSearcher(cfg)
	log.Info("session_started",
		slog.String("session", sessionID),
		slog.String("endpoint", cfg.Endpoint),
		slog.Int("suggest_limit", searcher.SuggestLimit()),
	)

	ctrl := session.New(ctx, searcher, session.Options{
		Debounce: cfg.Debounce.Duration,
		Logger:   sessionLog,
	})
	defer ctrl.Close()

	model := tui.NewSearchModel(ctrl, cfg.LinkOrigin, query)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	startConfigWatcher(watchCtx, c.String("config"), program)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	log.Info("session_ended", slog.String("session", sessionID))
	return err
}

// startConfigWatcher forwards config edits to the running program. A
// missing config directory only disables live reload.
func startConfigWatcher(ctx context.Context, path string, program *tea.Program) {
	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		program.Send(tui.ConfigReloadedMsg{Config: cfg})
	})
	if err != nil {
		log.Warn("config_watch_unavailable", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("config_watch_stopped", slog.String("error", err.Error()))
		}
	}()
}
