package services

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/normalizer"
	"github.com/desertthunder/wicket/internal/shared"
)

const (
	DefaultBaseURL = "https://cricbuzz-cricket.p.rapidapi.com"
	DefaultAPIHost = "cricbuzz-cricket.p.rapidapi.com"
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes bounds how much of a scorecard response is read.
	maxBodyBytes = 8 << 20
)

// ClientOpts configures a [CricbuzzClient]. Zero values take the defaults.
type ClientOpts struct {
	BaseURL    string
	APIKey     string
	APIHost    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables the limiter
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time
}

// CricbuzzClient fetches scorecards from the Cricbuzz API on RapidAPI.
type CricbuzzClient struct {
	baseURL    string
	apiKey     string
	apiHost    string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	now        func() time.Time
}

// NewCricbuzzClient creates a client for the match scorecard endpoint.
func NewCricbuzzClient(opts ClientOpts) *CricbuzzClient {
	c := &CricbuzzClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		apiHost:    opts.APIHost,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		now:        opts.Now,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.apiHost == "" {
		c.apiHost = DefaultAPIHost
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(io.Discard)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return c
}

// Name returns "cricbuzz".
func (c *CricbuzzClient) Name() string { return "cricbuzz" }

// MatchURL is the scorecard endpoint for matchID.
func (c *CricbuzzClient) MatchURL(matchID string) string {
	return c.baseURL + "/mcenter/v1/" + url.PathEscape(matchID) + "/hscard"
}

// FetchMatch performs one GET for matchID and normalizes the body.
//
// The whole call, including any wait on the rate limiter, shares a single
// deadline of the configured timeout.
func (c *CricbuzzClient) FetchMatch(ctx context.Context, matchID string) (*models.Snapshot, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, errors.Wrap(shared.ErrMissingArgument, "match id")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.networkError(errors.Wrap(err, "rate limiter"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MatchURL(matchID), nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to create request"), shared.ErrNetwork)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.networkError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("scorecard response", "match", matchID, "status", resp.StatusCode, "took", c.now().Sub(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("API rate limit exceeded (%d)", resp.StatusCode), shared.ErrRateLimited),
			shared.RateLimitHint,
		)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.Mark(errors.Newf("API error: %d", resp.StatusCode), shared.ErrProvider)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.networkError(errors.Wrap(err, "failed to read response"))
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.Mark(errors.Newf("malformed JSON in response (%d bytes)", len(body)), shared.ErrDecode)
	}

	return normalizer.Normalize(body, c.now()), nil
}

// networkError marks err as a transport failure, naming timeouts explicitly.
func (c *CricbuzzClient) networkError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.Wrapf(err, "request timed out after %s", c.timeout)
	} else {
		err = errors.Wrap(err, "network error")
	}
	return errors.Mark(err, shared.ErrNetwork)
}
