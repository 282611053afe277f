// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/wicket/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

// Requests returns every request seen so far.
func (m *MockRoundTripper) Requests() []*http.Request { return m.requests }

// NewResponse builds an *http.Response with a string body.
func NewResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FetchResult is one scripted response of a [FakeFetcher].
type FetchResult struct {
	Snapshot *models.Snapshot
	Err      error
}

// FakeFetcher replays scripted results in order, repeating the last one.
//
// When Gate is non-nil every call blocks until a value is received from it,
// which lets tests hold a fetch in flight.
type FakeFetcher struct {
	Gate    chan struct{}
	Started chan string

	mu      sync.Mutex
	results []FetchResult
	calls   []string
}

func NewFakeFetcher(results ...FetchResult) *FakeFetcher {
	return &FakeFetcher{results: results, Started: make(chan string, 16)}
}

func (f *FakeFetcher) FetchMatch(ctx context.Context, matchID string) (*models.Snapshot, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, matchID)
	f.mu.Unlock()

	select {
	case f.Started <- matchID:
	default:
	}

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return &models.Snapshot{}, nil
	}
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	r := f.results[idx]
	return r.Snapshot, r.Err
}

// Calls returns the match ids requested so far.
func (f *FakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// SnapshotFor returns a minimal snapshot tagged with a match id and a first-innings total.
func SnapshotFor(matchID int64, runs int) *models.Snapshot {
	return &models.Snapshot{
		Header:  models.MatchHeader{MatchID: matchID, Teams: []models.Team{}},
		Innings: []models.Innings{{ID: 1, Team: "India", Runs: runs, Overs: 20, Batsmen: []models.Batsman{}, Bowlers: []models.Bowler{}}},
		Progress: models.MatchProgress{
			Checkpoints: []models.Checkpoint{},
		},
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
