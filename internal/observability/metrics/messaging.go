package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of messages sent",
		},
	)

	MessagesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_read_total",
			Help: "Total number of messages marked as read",
		},
	)
)
