// Utilities for reading RapidAPI credentials out of a copied cURL command.
package shared

import (
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// RapidAPIPage is the provider's playground, where the cURL snippet is copied from.
const RapidAPIPage = "https://rapidapi.com/cricketapilive/api/cricbuzz-cricket"

var (
	curlHeader  = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURL     = regexp.MustCompile(`(?:--url\s+)?['"]?(https?://[^\s'"]+)`)
	curlMatchID = regexp.MustCompile(`/mcenter/v1/(\d+)/`)
)

// CurlCredentials is what a RapidAPI cURL snippet tells us about the provider.
type CurlCredentials struct {
	APIKey  string
	APIHost string
	BaseURL string
	MatchID string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts credentials.
func ParseCurlFile(filepath string) (*CurlCredentials, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read curl file")
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts the RapidAPI key and host.
//
// The request URL, when present, supplies the base URL and a match id.
func ParseCurlCommand(data []byte) (*CurlCredentials, error) {
	cmd := strings.ReplaceAll(string(data), "\\\r\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")

	creds := &CurlCredentials{Headers: make(map[string]string)}
	for _, m := range curlHeader.FindAllStringSubmatch(cmd, -1) {
		line := m[1]
		if line == "" {
			line = m[2]
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		creds.Headers[key] = value

		switch key {
		case "x-rapidapi-key":
			creds.APIKey = value
		case "x-rapidapi-host":
			creds.APIHost = value
		}
	}

	if m := curlURL.FindStringSubmatch(cmd); m != nil {
		if u, err := url.Parse(m[1]); err == nil && u.Host != "" {
			creds.BaseURL = u.Scheme + "://" + u.Host
			if creds.APIHost == "" {
				creds.APIHost = u.Hostname()
			}
		}
		if id := curlMatchID.FindStringSubmatch(m[1]); id != nil {
			creds.MatchID = id[1]
		}
	}

	if creds.APIKey == "" {
		return nil, errors.WithHint(
			errors.Wrap(ErrMissingCredentials, "no x-rapidapi-key header found in curl command"),
			"copy the cURL snippet from "+RapidAPIPage,
		)
	}

	return creds, nil
}

// Apply copies the parsed credentials into cfg, leaving fields the snippet did not carry untouched.
func (c *CurlCredentials) Apply(cfg *Config) {
	cfg.Provider.APIKey = c.APIKey
	if c.APIHost != "" {
		cfg.Provider.APIHost = c.APIHost
	}
	if c.BaseURL != "" {
		cfg.Provider.BaseURL = c.BaseURL
	}
	if c.MatchID != "" && cfg.Sync.MatchID == "" {
		cfg.Sync.MatchID = c.MatchID
	}
}
