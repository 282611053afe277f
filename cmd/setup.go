package main

import (
	"context"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wicket/internal/shared"
)

// SetupDatabase writes a config file when none exists, then creates the journal database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.SaveConfig(r.configPath, r.config); err != nil {
			r.logger.Warn("failed to create config file", "error", err)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (migrations: %v)\n", r.config.Database.Path, versions)
}

// SetupProvider stores the RapidAPI credentials found in a copied cURL command into the config file.
func (r *Runner) SetupProvider(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(shared.RapidAPIPage); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
		if curlCmd == "" && curlFile == "" {
			return r.writePlain("Copy the hscard request as cURL from %s and run:\n  wicket setup provider --curl-file request.sh\n", shared.RapidAPIPage)
		}
	}

	if curlCmd == "" && curlFile == "" {
		return errors.Wrap(shared.ErrMissingArgument, "either --curl or --curl-file must be provided")
	}
	if curlCmd != "" && curlFile != "" {
		return errors.Wrap(shared.ErrInvalidArgument, "cannot specify both --curl and --curl-file")
	}

	var (
		creds *shared.CurlCredentials
		err   error
	)
	if curlFile != "" {
		creds, err = shared.ParseCurlFile(curlFile)
	} else {
		creds, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return err
	}
	r.logger.Info("parsed cURL command", "host", creds.APIHost, "match", creds.MatchID)

	creds.Apply(r.config)
	if err := r.config.Validate(); err != nil {
		return err
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}

	r.writePlain("✓ RapidAPI credentials saved to %s\n", r.configPath)
	r.writePlain("Host: %s\n", r.config.Provider.APIHost)
	if r.config.Sync.MatchID != "" {
		r.writePlain("Match: %s\n", r.config.Sync.MatchID)
	}
	return r.writePlain("Run 'wicket fetch' to test the key\n")
}
