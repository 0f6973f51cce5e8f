// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlineSessions    prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	SeatedPlayers     prometheus.Gauge
	WaitlistedPlayers prometheus.Gauge
	RoundsResolved    *prometheus.CounterVec
	MessagesReceived  prometheus.Counter
	GuessLatency      prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlineSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_sessions",
			Help:      "Number of connected sessions",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of active rooms",
		}),
		SeatedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seated_players",
			Help:      "Number of seated players across all rooms",
		}),
		WaitlistedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waitlisted_players",
			Help:      "Number of waitlisted players across all rooms",
		}),
		RoundsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_resolved_total",
			Help:      "Total number of resolved rounds by guess outcome",
		}, []string{"outcome"}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received",
		}),
		GuessLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "guess_latency_seconds",
			Help:      "Guess resolution latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.OnlineSessions,
		m.ActiveRooms,
		m.SeatedPlayers,
		m.WaitlistedPlayers,
		m.RoundsResolved,
		m.MessagesReceived,
		m.GuessLatency,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("requests", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.requestCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncOnlineSessions() {
	m.metrics.OnlineSessions.Inc()
}

func (m *Monitor) DecOnlineSessions() {
	m.metrics.OnlineSessions.Dec()
}

// SetRoomCounts refreshes the room occupancy gauges in one call.
func (m *Monitor) SetRoomCounts(rooms, seated, waitlisted int) {
	m.metrics.ActiveRooms.Set(float64(rooms))
	m.metrics.SeatedPlayers.Set(float64(seated))
	m.metrics.WaitlistedPlayers.Set(float64(waitlisted))
}

func (m *Monitor) IncRoundsResolved(correct bool) {
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	m.metrics.RoundsResolved.WithLabelValues(outcome).Inc()
}

func (m *Monitor) IncMessagesReceived() {
	m.metrics.MessagesReceived.Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveGuessLatency(duration time.Duration) {
	m.metrics.GuessLatency.Observe(duration.Seconds())
}
