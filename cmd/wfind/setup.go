package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/mgomes/wikisearch/internal/config"
	"github.com/mgomes/wikisearch/internal/hits"
	"github.com/mgomes/wikisearch/internal/tui"
)

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Run the setup wizard",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.String("config")
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runSetup(ctx, cfg, path)
		},
	}
}

func runSetup(ctx context.Context, cfg *config.Config, path string) error {
	program := tea.NewProgram(newSetupRunner(ctx, cfg), tea.WithContext(ctx))

	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	runner, ok := finalModel.(setupRunner)
	if !ok || !runner.done {
		return fmt.Errorf("setup cancelled")
	}

	cfg.Endpoint = runner.endpoint
	cfg.LinkOrigin = runner.linkOrigin
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	log.Info("config_saved", slog.String("path", path), slog.String("endpoint", cfg.Endpoint))
	fmt.Printf("Saved %s\n", path)
	return nil
}

type setupRunner struct {
	ctx        context.Context
	setupModel tui.SetupModel
	cfg        *config.Config
	endpoint   string
	linkOrigin string
	done       bool
}

type pingResultMsg struct {
	submit tui.SetupSubmitMsg
	err    error
}

func newSetupRunner(ctx context.Context, cfg *config.Config) setupRunner {
	return setupRunner{
		ctx:        ctx,
		setupModel: tui.NewSetupModel(cfg),
		cfg:        cfg,
	}
}

func (m setupRunner) Init() tea.Cmd {
	return tea.Batch(m.setupModel.Init(), tea.EnableBracketedPaste)
}

func (m setupRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.SetupSubmitMsg:
		client := hits.NewClient(msg.Endpoint, hits.Options{
			Timeout:   m.cfg.Timeout.Duration,
			RateLimit: m.cfg.RateLimit,
			RateBurst: m.cfg.RateBurst,
		})
		ctx := m.ctx
		return m, func() tea.Msg {
			return pingResultMsg{submit: msg, err: client.Ping(ctx)}
		}

	case pingResultMsg:
		if msg.err != nil {
			return m.forward(tui.SetupErrorMsg{Error: "Search service unreachable: " + msg.err.Error()})
		}
		m.endpoint = msg.submit.Endpoint
		m.linkOrigin = msg.submit.LinkOrigin
		m.done = true
		return m, tea.Quit

	default:
		return m.forward(msg)
	}
}

func (m setupRunner) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.setupModel.Update(msg)
	if sm, ok := newModel.(tui.SetupModel); ok {
		m.setupModel = sm
	}
	return m, cmd
}

func (m setupRunner) View() string {
	return m.setupModel.View()
}
