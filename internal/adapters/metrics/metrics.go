// Package metrics exposes connectivity state as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bft-labs/connguard/pkg/connguard"
)

const namespace = "connguard"

// Listener records Manager callbacks into its own registry.
type Listener struct {
	registry *prometheus.Registry

	online         prometheus.Gauge
	connected      prometheus.Gauge
	attempts       prometheus.Gauge
	pending        prometheus.Gauge
	lastSync       prometheus.Gauge
	lostTotal      prometheus.Counter
	restoredTotal  prometheus.Counter
	recoveredTotal prometheus.Counter
}

var _ connguard.Listener = (*Listener)(nil)

// NewListener creates a Listener with a fresh registry that also carries the
// Go runtime and process collectors.
func NewListener() *Listener {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	l := &Listener{
		registry: reg,
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online",
			Help:      "1 when the host reports network connectivity.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_connected",
			Help:      "1 when the last heartbeat found a valid session.",
		}),
		attempts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts",
			Help:      "Reconnect attempts since the last successful heartbeat.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_backup",
			Help:      "1 when a pending-save backup is stored.",
		}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_sync_timestamp_seconds",
			Help:      "Unix time of the last successful heartbeat.",
		}),
		lostTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_lost_total",
			Help:      "Connected to disconnected transitions.",
		}),
		restoredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_restored_total",
			Help:      "Disconnected to connected transitions.",
		}),
		recoveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_restored_total",
			Help:      "Pending saves restored at startup.",
		}),
	}

	reg.MustRegister(l.online, l.connected, l.attempts, l.pending, l.lastSync,
		l.lostTotal, l.restoredTotal, l.recoveredTotal)
	return l
}

// Registry returns the registry the metrics live in.
func (l *Listener) Registry() *prometheus.Registry { return l.registry }

// OnStatusChange implements connguard.Listener.
func (l *Listener) OnStatusChange(s connguard.Status) {
	l.online.Set(boolToFloat(s.Online))
	l.connected.Set(boolToFloat(s.BackendConnected))
	l.attempts.Set(float64(s.ReconnectAttempts))
	l.pending.Set(boolToFloat(s.HasPendingData))
	if s.LastSuccessfulSync != nil {
		l.lastSync.Set(float64(s.LastSuccessfulSync.Unix()))
	}
}

// OnConnectionLost implements connguard.Listener.
func (l *Listener) OnConnectionLost(connguard.ConnectionEvent) { l.lostTotal.Inc() }

// OnConnectionRestored implements connguard.Listener.
func (l *Listener) OnConnectionRestored(connguard.ConnectionEvent) { l.restoredTotal.Inc() }

// Recovered counts a pending save restored at startup.
func (l *Listener) Recovered() { l.recoveredTotal.Inc() }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
