package wshub

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	clients  prometheus.Gauge
	sent     prometheus.Counter
	dropped  prometheus.Counter
	resyncs  prometheus.Counter
	commands *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tabletop",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Number of connected renderers.",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabletop",
			Subsystem: "ws",
			Name:      "messages_sent_total",
			Help:      "Messages queued to renderers.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabletop",
			Subsystem: "ws",
			Name:      "messages_dropped_total",
			Help:      "Messages dropped because a renderer's queue was full.",
		}),
		resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabletop",
			Subsystem: "ws",
			Name:      "resyncs_total",
			Help:      "Full scenes sent to renderers that missed a message.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabletop",
			Subsystem: "ws",
			Name:      "commands_total",
			Help:      "Commands received from renderers by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.clients, m.sent, m.dropped, m.resyncs, m.commands)
	}
	return m
}
