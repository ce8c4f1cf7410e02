package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// KeeperIterations counts completed position-keeper iterations.
	KeeperIterations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ptz_keeper_iterations_total",
		Help: "Total number of completed position keeper iterations.",
	})

	// MotorFailures is the current consecutive motor failure count.
	MotorFailures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ptz_motor_consecutive_failures",
		Help: "Consecutive failed motor exchanges; reset on success.",
	})

	// Commands counts rotctld commands by name and result.
	Commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ptz_rotctld_commands_total",
		Help: "Total number of rotctld protocol commands handled.",
	}, []string{"command", "result"})
)

func init() {
	prometheus.MustRegister(KeeperIterations)
	prometheus.MustRegister(MotorFailures)
	prometheus.MustRegister(Commands)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
