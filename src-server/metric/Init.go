package metric

import (
	"errors"
	"log/slog"
	"time"

	"devevents/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// register registers c, reusing the collector already registered under the
// same name if there is one.
func register[T prometheus.Collector](c T, name string) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		slog.Error("can't register metric", "metric", name, "error", err)
		return c
	}
	slog.Debug("metric registered", "metric", name)
	return c
}

func unregister(c prometheus.Collector, name string) {
	switch prometheus.Unregister(c) {
	case true:
		slog.Debug("metric unregistered", "metric", name)
	case false:
		slog.Warn("metric not registered", "metric", name)
	}
}

// latencyGauge shows the last latency received on ch, falling back to 0 when
// nothing arrived for clearTickerInterval.
func latencyGauge(as *utils.AppState, name, help string, ch chan float64, clearTickerInterval time.Duration) {
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}), name)
	gauge.Set(0)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func submissions(as *utils.AppState) {
	name := "devevents_submissions_total"
	counter := register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "Form submissions that reached the events endpoint, by outcome",
	}, []string{"outcome"}), name)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(counter, name)
				return
			case outcome := <-as.MetricChans.SubmitOutcome:
				counter.WithLabelValues(outcome).Inc()
			}
		}
	}()
}

func formSessions(as *utils.AppState, tickerInterval time.Duration) {
	name := "devevents_form_sessions"
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "Number of live form sessions",
	}), name)
	gauge.Set(float64(as.FormSessionCount()))
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				gauge.Set(float64(as.FormSessionCount()))
			}
		}
	}()
}

func databaseEmptyRead(as *utils.AppState, tickerInterval time.Duration) {
	name := "devevents_database_empty_read_microsec"
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of an empty database read in microseconds",
	}), name)
	gauge.Set(0)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				latency, err := database(as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	databaseEmptyRead(as, tickerInterval)
	formSessions(as, tickerInterval)
	submissions(as)
	latencyGauge(as,
		"devevents_submit_latency_microsec",
		"The round trip of the last form submission in microseconds",
		as.MetricChans.SubmitLatency, clearTickerInterval)
	latencyGauge(as,
		"devevents_database_write_microsec",
		"The latency of the last event insert in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	latencyGauge(as,
		"devevents_discord_announce_microsec",
		"The latency of the last discord announcement in microseconds",
		as.MetricChans.DiscordAnnounce, clearTickerInterval)
}
