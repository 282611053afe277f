// package services defines interface MatchFetcher for reading match data from HTTP APIs
//
// Cricbuzz (via RapidAPI)
package services

import (
	"context"

	"github.com/desertthunder/wicket/internal/models"
)

// MatchFetcher retrieves one match and returns it normalized.
//
// Failures are marked with one of [shared.ErrNetwork], [shared.ErrRateLimited],
// [shared.ErrProvider] or [shared.ErrDecode].
type MatchFetcher interface {
	FetchMatch(ctx context.Context, matchID string) (*models.Snapshot, error)
}
