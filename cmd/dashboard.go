package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/wicket/internal/server"
	"github.com/desertthunder/wicket/internal/shared"
	"github.com/desertthunder/wicket/internal/ui"
)

// Dashboard runs the engine, the scoreboard and (optionally) the HTTP surface until the user quits.
//
// A missing match id is allowed: the scoreboard opens empty and asks for one.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	matchID, err := r.matchID(cmd)
	if err != nil && !errors.Is(err, shared.ErrMissingArgument) {
		return err
	}

	if cmd.IsSet("interval") {
		r.config.Sync.Interval.Duration = cmd.Duration("interval")
		r.config.Sync.BackoffCap.Duration = max(r.config.Sync.BackoffCap.Duration, r.config.Sync.Interval.Duration)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := cmd.String("log-file")
	if logPath == "" {
		logPath = r.config.Log.File
	}
	if logPath != "" {
		fileLogger, f, err := shared.NewFileLogger(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		fileLogger.SetLevel(r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}

	journal, closeJournal, err := r.openJournal()
	if err != nil {
		return err
	}
	defer closeJournal()

	auto := r.config.Sync.AutoRefresh && !cmd.Bool("no-auto")
	engine, err := r.newEngine(matchID, auto, journal)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	engine.Start(gctx)
	r.logger.Info("dashboard started", "match", matchID, "auto", auto)

	addr := cmd.String("serve")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	if addr != "" {
		logger := shared.WithLogger(r.logger, "component", "http")
		g.Go(func() error {
			return server.Serve(gctx, addr, server.New(engine, nil, logger), logger)
		})
	}

	program := tea.NewProgram(ui.NewModel(gctx, engine), tea.WithAltScreen(), tea.WithContext(gctx))
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return errors.Wrap(err, "error running dashboard")
		}
		return nil
	})

	err = g.Wait()
	r.logger.Info("dashboard stopped", "stats", engine.Stats())
	return err
}
