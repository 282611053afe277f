package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/normalizer"
	"github.com/desertthunder/wicket/internal/shared"
	"github.com/desertthunder/wicket/internal/tasks"
	th "github.com/desertthunder/wicket/internal/testing"
)

type fakeEngine struct {
	snapshot *models.Snapshot
	stats    tasks.Stats
	matchID  string
	accept   bool
	refresh  atomic.Int32
}

func (f *fakeEngine) Current() *models.Snapshot { return f.snapshot }
func (f *fakeEngine) Stats() tasks.Stats        { return f.stats }
func (f *fakeEngine) MatchID() string           { return f.matchID }
func (f *fakeEngine) Refresh() bool {
	f.refresh.Add(1)
	return f.accept
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func newTestServer(engine *fakeEngine) http.Handler {
	return New(engine, nil, shared.NewLogger(io.Discard))
}

func TestSnapshotEndpoint(t *testing.T) {
	fetchedAt := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	snap := normalizer.Normalize([]byte(th.Scorecard), fetchedAt)

	t.Run("404 before first success", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeEngine{matchID: "41881"}), http.MethodGet, "/api/snapshot")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "no snapshot yet")
	})

	t.Run("json by default", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeEngine{snapshot: snap}), http.MethodGet, "/api/snapshot")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, fetchedAt.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))

		var got models.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(41881), got.Header.MatchID)
		assert.Len(t, got.Innings, 2)
	})

	t.Run("markdown", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeEngine{snapshot: snap}), http.MethodGet, "/api/snapshot?format=md")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
		assert.Contains(t, rec.Body.String(), "# Final, ODI")
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeEngine{snapshot: snap}), http.MethodGet, "/api/snapshot?format=xml")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeEngine{snapshot: snap}), http.MethodDelete, "/api/snapshot")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		engine := &fakeEngine{matchID: "41881", accept: true}
		rec := do(t, newTestServer(engine), http.MethodPost, "/api/refresh")
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"accepted":true,"matchId":"41881"}`, rec.Body.String())
		assert.Equal(t, int32(1), engine.refresh.Load())
	})

	t.Run("conflict while fetching", func(t *testing.T) {
		engine := &fakeEngine{matchID: "41881"}
		rec := do(t, newTestServer(engine), http.MethodPost, "/api/refresh")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("no match", func(t *testing.T) {
		engine := &fakeEngine{accept: true}
		rec := do(t, newTestServer(engine), http.MethodPost, "/api/refresh")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, engine.refresh.Load())
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeEngine{}), http.MethodGet, "/api/refresh")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestStatusAndMetrics(t *testing.T) {
	engine := &fakeEngine{
		matchID: "41881",
		stats: tasks.Stats{
			MatchID:             "41881",
			State:               "fetching",
			AutoRefresh:         true,
			ConsecutiveFailures: 2,
			MaxAttempts:         3,
			Attempts:            5,
			Successes:           3,
			StaleServed:         2,
			RateLimited:         1,
		},
	}
	h := newTestServer(engine)

	t.Run("status", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var got tasks.Stats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, engine.stats, got)
		assert.NotContains(t, rec.Body.String(), "nextRun")
	})

	t.Run("metrics", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, `wicket_sync_attempts_total{match_id="41881"} 5`)
		assert.Contains(t, body, `wicket_sync_stale_served_total{match_id="41881"} 2`)
		assert.Contains(t, body, `wicket_sync_consecutive_failures{match_id="41881"} 2`)
		assert.Contains(t, body, `wicket_sync_fetching{match_id="41881"} 1`)
		assert.Contains(t, body, `wicket_sync_next_run_timestamp_seconds{match_id="41881"} 0`)
	})

	t.Run("healthz", func(t *testing.T) {
		rec := do(t, h, http.MethodHead, "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Recover", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(Recover(shared.NewLogger(io.Discard)))
		r.HandleFunc(http.MethodGet, "/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

		rec := do(t, r, http.MethodGet, "/boom")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Logging", func(t *testing.T) {
		var buf strings.Builder
		logger := shared.NewLogger(&buf)
		shared.SetLogLevel(logger, shared.ParseLogLevel("debug"))

		r := NewBasicRouter()
		r.Use(Logging(logger))
		r.HandleFunc(http.MethodGet, "/teapot", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		do(t, r, http.MethodGet, "/teapot")
		assert.Contains(t, buf.String(), "path=/teapot")
		assert.Contains(t, buf.String(), "status=418")
	})

	t.Run("order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.HandleFunc(http.MethodGet, "/", func(http.ResponseWriter, *http.Request) {})
		do(t, r, http.MethodGet, "/")

		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func TestServeListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, ln, newTestServer(&fakeEngine{}), shared.NewLogger(io.Discard))
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
