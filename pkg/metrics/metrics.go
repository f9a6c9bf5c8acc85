// Package metrics records Prometheus metrics for supervised child lifecycle
// events. They are exported through the health server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	childSpawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simlaunch_child_spawns_total",
			Help: "Total number of child processes spawned, by role",
		},
		[]string{"role"},
	)

	gracefulStopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simlaunch_graceful_stops_total",
			Help: "Children that exited within the graceful shutdown budget",
		},
		[]string{"role"},
	)

	forcefulKillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simlaunch_forceful_kills_total",
			Help: "Children that had to be forcefully killed after the budget elapsed",
		},
		[]string{"role"},
	)

	childrenAlive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "simlaunch_children_alive",
			Help: "Number of supervised children currently running",
		},
	)
)

// ChildSpawned records a successful spawn for a role.
func ChildSpawned(role string) {
	childSpawnsTotal.WithLabelValues(role).Inc()
	childrenAlive.Inc()
}

// ChildExited records that a supervised child was reaped.
func ChildExited() {
	childrenAlive.Dec()
}

// GracefulStop records a child that honored the interrupt in time.
func GracefulStop(role string) {
	gracefulStopsTotal.WithLabelValues(role).Inc()
}

// ForcefulKill records an escalation to a non-ignorable kill.
func ForcefulKill(role string) {
	forcefulKillsTotal.WithLabelValues(role).Inc()
}
