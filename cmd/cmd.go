// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wicket/internal/formatter"
)

const version = "0.1.0"

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "wicket",
		Usage:   "Live cricket scorecards in the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file with WICKET_* overrides",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
		Writer:   r.output,
	}
}

// dashboardCommand runs the live scoreboard.
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"ui", "live"},
		Usage:   "Follow a match in the interactive scoreboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "match",
				Aliases: []string{"m"},
				Usage:   "Match id (defaults to sync.match_id)",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Refresh interval after a successful fetch (defaults to sync.interval)",
			},
			&cli.BoolFlag{
				Name:  "no-auto",
				Usage: "Start with automatic refresh disabled",
			},
			&cli.StringFlag{
				Name:  "serve",
				Usage: "Also serve snapshot, status and metrics on this address (e.g. 127.0.0.1:8089)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the dashboard owns the terminal (defaults to log.file)",
			},
		},
		Action: r.Dashboard,
	}
}

// fetchCommand fetches one snapshot and exports it.
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch a match once and print or save the scorecard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "match",
				Aliases: []string{"m"},
				Usage:   "Match id (defaults to sync.match_id)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, csv, md, txt)",
				Value:   string(formatter.FormatJSON),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write match_{id}.{format} into instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Fetch,
	}
}

// historyCommand lists journal rows.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent fetch attempts from the journal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of attempts to show",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "match",
				Aliases: []string{"m"},
				Usage:   "Only show attempts for this match",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for the database and the provider credentials.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the journal database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:    "provider",
				Aliases: []string{"rapidapi"},
				Usage:   "Store the RapidAPI key and host from a copied cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from the RapidAPI playground",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing the cURL command",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the RapidAPI playground in a browser",
					},
				},
				Action: r.SetupProvider,
			},
		},
	}
}

// configCommand inspects the effective configuration.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
