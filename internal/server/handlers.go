package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/wicket/internal/formatter"
	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/tasks"
)

// Engine is the part of [tasks.Engine] the HTTP surface reads.
type Engine interface {
	Current() *models.Snapshot
	Stats() tasks.Stats
	MatchID() string
	Refresh() bool
}

var contentTypes = map[formatter.Format]string{
	formatter.FormatJSON:     "application/json",
	formatter.FormatCSV:      "text/csv; charset=utf-8",
	formatter.FormatMarkdown: "text/markdown; charset=utf-8",
	formatter.FormatText:     "text/plain; charset=utf-8",
}

type errorBody struct {
	Error string `json:"error"`
}

type refreshBody struct {
	Accepted bool   `json:"accepted"`
	MatchID  string `json:"matchId"`
}

// New builds the router serving engine. A nil registry gets a fresh one
// with the engine collector registered.
func New(engine Engine, registry *prometheus.Registry, logger *log.Logger) *BasicRouter {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(NewCollector(engine))
	}

	r := NewBasicRouter()
	r.Use(Recover(logger), Logging(logger))

	r.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.HandleFunc(http.MethodGet, "/api/snapshot", snapshotHandler(engine, logger))
	r.HandleFunc(http.MethodGet, "/api/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, http.StatusOK, engine.Stats())
	})
	r.HandleFunc(http.MethodPost, "/api/refresh", refreshHandler(engine, logger))
	r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return r
}

func snapshotHandler(engine Engine, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := formatter.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeJSON(w, logger, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}

		snapshot := engine.Current()
		if snapshot.Empty() {
			writeJSON(w, logger, http.StatusNotFound, errorBody{Error: "no snapshot yet"})
			return
		}

		data, err := formatter.Export(snapshot, format, r.URL.Query().Has("pretty"))
		if err != nil {
			logger.Error("failed to render snapshot", "format", format, "error", err)
			writeJSON(w, logger, http.StatusInternalServerError, errorBody{Error: "failed to render snapshot"})
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		if !snapshot.FetchedAt.IsZero() {
			w.Header().Set("Last-Modified", snapshot.FetchedAt.UTC().Format(http.TimeFormat))
		}
		_, _ = w.Write(data)
	}
}

func refreshHandler(engine Engine, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		matchID := engine.MatchID()
		if matchID == "" {
			writeJSON(w, logger, http.StatusBadRequest, errorBody{Error: "no match selected"})
			return
		}
		if !engine.Refresh() {
			writeJSON(w, logger, http.StatusConflict, refreshBody{MatchID: matchID})
			return
		}
		writeJSON(w, logger, http.StatusAccepted, refreshBody{Accepted: true, MatchID: matchID})
	}
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}
