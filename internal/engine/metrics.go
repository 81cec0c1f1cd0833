package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// commandsTotal counts processed commands.
	// Labels: command name, result ("ok" or the error kind).
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reddit_engine_commands_total",
		Help: "Commands processed by the engine, by command and result",
	}, []string{"command", "result"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reddit_engine_command_duration_seconds",
		Help:    "Time spent applying a command inside the processor",
		Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"command"})
)

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
