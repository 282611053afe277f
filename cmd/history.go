package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wicket/internal/formatter"
	"github.com/desertthunder/wicket/internal/repositories"
)

// History prints the latest journal rows, newest first, followed by an outcome summary.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	filter := repositories.AttemptFilter{
		MatchID: strings.TrimSpace(cmd.String("match")),
		Limit:   int(cmd.Int("limit")),
	}
	attempts, err := repo.List(ctx, filter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(attempts, cmd.Bool("pretty"))
	}

	if len(attempts) == 0 {
		return r.writePlain("No fetch attempts recorded\n")
	}
	if err := formatter.WriteHistory(r.output, attempts); err != nil {
		return err
	}

	counts, err := repo.Summarize(ctx, filter.MatchID)
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Outcome, c.Count))
	}
	return r.writePlain("\n%s\n", strings.Join(parts, "  "))
}
