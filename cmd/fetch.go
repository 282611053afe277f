package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wicket/internal/formatter"
	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
)

// Fetch runs a single engine fetch and prints or saves the scorecard.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	matchID, err := r.matchID(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	pretty := cmd.Bool("pretty")

	journal, closeJournal, err := r.openJournal()
	if err != nil {
		return err
	}
	defer closeJournal()

	engine, err := r.newEngine(matchID, false, journal)
	if err != nil {
		return err
	}
	defer engine.Close()

	r.logger.Info("fetching match", "match", matchID)
	engine.Start(ctx)

	outcome, ok := engine.Next(ctx)
	if !ok {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return shared.ErrEngineClosed
	}
	if outcome.Kind != models.OutcomeFresh {
		return errors.Wrapf(outcome.Err, "match %s", matchID)
	}

	if dir := cmd.String("output"); dir != "" {
		path, err := formatter.WriteExport(dir, outcome.Snapshot, format, pretty)
		if err != nil {
			return err
		}
		r.logger.Info("scorecard saved", "path", path)
		return r.writePlain("✓ Saved %s\n", path)
	}

	data, err := formatter.Export(outcome.Snapshot, format, pretty)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return r.write(data)
}
