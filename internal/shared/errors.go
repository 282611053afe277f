package shared

import "github.com/cockroachdb/errors"

// RateLimitHint is attached to every [ErrRateLimited] failure.
const RateLimitHint = "Rate limits typically reset after 24 hours."

var (
	ErrNotImplemented = errors.New("not implemented")

	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Fetch errors. Every failed fetch is marked with exactly one of these.
	ErrNetwork     = errors.New("network error")
	ErrRateLimited = errors.New("rate limited")
	ErrProvider    = errors.New("provider error")
	ErrDecode      = errors.New("malformed response")

	// Engine errors
	ErrEngineClosed = errors.New("engine closed")
	ErrNoMatch      = errors.New("no match selected")
	ErrNoSnapshot   = errors.New("no snapshot available")

	// Input validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidFlag     = errors.New("invalid flag value")
)

// FetchErrorKind labels err with its place in the fetch taxonomy: "network",
// "rate_limited", "provider", "decode" or "unknown".
func FetchErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "unknown"
	}
}

// Hint returns the first user-facing hint attached to err, if any.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return ""
}
