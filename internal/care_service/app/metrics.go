package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "care_orders_fetched_total",
		Help: "Orders retrieved from the order API.",
	})

	pollCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care_poll_cycles_total",
		Help: "Polling cycles by outcome.",
	}, []string{"outcome"})

	messagesDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care_messages_dispatched_total",
		Help: "Outbound messages by dispatch outcome.",
	}, []string{"outcome"})

	messagePartsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "care_message_parts_sent_total",
		Help: "Individual SMS parts submitted to the gateway.",
	})

	sentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care_sent_events_total",
		Help: "Sent callbacks processed, by resulting status.",
	}, []string{"status"})

	deliveryEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care_delivery_events_total",
		Help: "Delivery reports processed, by resulting status.",
	}, []string{"status"})

	repliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care_replies_total",
		Help: "Incoming customer replies, by correlation outcome.",
	}, []string{"outcome"})

	balanceProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care_balance_probes_total",
		Help: "USSD balance probes, by outcome.",
	}, []string{"outcome"})
)
