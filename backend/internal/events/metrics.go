package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "oboe_events_published_total",
		Help: "Events successfully handed to NATS, by subject.",
	},
	[]string{"subject"},
)
