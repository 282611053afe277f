package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wicket"

// Collector exports [tasks.Stats] as prometheus metrics, reading them once per scrape.
type Collector struct {
	engine Engine

	attempts, successes, stale, hard, rateLimited, superseded, dropped, discarded *prometheus.Desc

	failures, auto, fetching, lastSuccess, nextRun *prometheus.Desc
}

// NewCollector builds a collector over engine.
func NewCollector(engine Engine) *Collector {
	labels := []string{"match_id"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "sync", name), help, labels, nil)
	}
	return &Collector{
		engine:      engine,
		attempts:    desc("attempts_total", "Fetches completed, delivered or not."),
		successes:   desc("successes_total", "Fresh snapshots delivered."),
		stale:       desc("stale_served_total", "Failures answered with the cached snapshot."),
		hard:        desc("hard_failures_total", "Failures with nothing to serve."),
		rateLimited: desc("rate_limited_total", "Fetches rejected by the provider with 429."),
		superseded:  desc("superseded_total", "Outcomes discarded because the match changed."),
		dropped:     desc("dropped_total", "Outcomes evicted from a full queue."),
		discarded:   desc("discarded_total", "Outcomes discarded at shutdown."),
		failures:    desc("consecutive_failures", "Failures since the last fresh snapshot."),
		auto:        desc("auto_refresh", "1 when automatic refresh is enabled."),
		fetching:    desc("fetching", "1 while a fetch is in flight."),
		lastSuccess: desc("last_success_timestamp_seconds", "Unix time of the last fresh snapshot."),
		nextRun:     desc("next_run_timestamp_seconds", "Unix time the refresh timer fires, 0 when disarmed."),
	}
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.attempts, c.successes, c.stale, c.hard, c.rateLimited, c.superseded, c.dropped, c.discarded,
		c.failures, c.auto, c.fetching, c.lastSuccess, c.nextRun,
	} {
		ch <- d
	}
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.engine.Stats()
	id := s.MatchID

	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), id)
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, id)
	}

	counter(c.attempts, s.Attempts)
	counter(c.successes, s.Successes)
	counter(c.stale, s.StaleServed)
	counter(c.hard, s.HardFailures)
	counter(c.rateLimited, s.RateLimited)
	counter(c.superseded, s.Superseded)
	counter(c.dropped, s.Dropped)
	counter(c.discarded, s.Discarded)

	gauge(c.failures, float64(s.ConsecutiveFailures))
	gauge(c.auto, boolean(s.AutoRefresh))
	gauge(c.fetching, boolean(s.State == "fetching"))

	var last, next float64
	if !s.LastSuccess.IsZero() {
		last = float64(s.LastSuccess.Unix())
	}
	if !s.NextRun.IsZero() {
		next = float64(s.NextRun.Unix())
	}
	gauge(c.lastSuccess, last)
	gauge(c.nextRun, next)
}

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
