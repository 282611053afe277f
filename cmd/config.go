package main

import (
	"bytes"
	"context"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

// ConfigShow prints the effective configuration as TOML with the API key masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	shown := *r.config
	shown.Provider.APIKey = mask(shown.Provider.APIKey)

	var buf bytes.Buffer
	buf.WriteString("# " + r.configPath + "\n")
	if err := toml.NewEncoder(&buf).Encode(shown); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return r.write(buf.Bytes())
}

// mask keeps the last four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 4:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}
