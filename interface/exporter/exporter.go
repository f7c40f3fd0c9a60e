package exporter

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	METRIC_ERROR_COUNT         = "error_count"
	METRIC_MESSAGE_COUNT       = "message_count"
	METRIC_DELIVERY_COUNT      = "delivery_count"
	METRIC_PENDING_REDEMPTIONS = "pending_redemptions"
)

var (
	errorCount         prometheus.Counter
	messageCount       *prometheus.CounterVec
	deliveryCount      *prometheus.CounterVec
	pendingRedemptions *prometheus.GaugeVec
)

// Init registers the metrics on reg. Until it is called the helpers below are
// no-ops.
func Init(reg prometheus.Registerer) {
	factory := promauto.With(reg)

	errorCount = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "endowment",
		Subsystem: "accounts",
		Name:      METRIC_ERROR_COUNT,
		Help:      "Counts the number of failed executions",
	})

	messageCount = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "endowment",
		Subsystem: "accounts",
		Name:      METRIC_MESSAGE_COUNT,
		Help:      "Counts the number of committed messages by kind",
	}, []string{"kind"})

	deliveryCount = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "endowment",
		Subsystem: "accounts",
		Name:      METRIC_DELIVERY_COUNT,
		Help:      "Counts outbox delivery attempts by resulting state",
	}, []string{"state"})

	pendingRedemptions = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "endowment",
		Subsystem: "accounts",
		Name:      METRIC_PENDING_REDEMPTIONS,
		Help:      "Outstanding strategy redemptions per endowment",
	}, []string{"endowment"})
}

func IncErrorCount() {
	if errorCount != nil {
		errorCount.Inc()
	}
}

func IncMessageCount(kind string) {
	if messageCount != nil {
		messageCount.WithLabelValues(kind).Inc()
	}
}

func IncDeliveryCount(state string) {
	if deliveryCount != nil {
		deliveryCount.WithLabelValues(state).Inc()
	}
}

func SetPendingRedemptions(endowmentID uint32, pending uint32) {
	if pendingRedemptions != nil {
		pendingRedemptions.WithLabelValues(strconv.FormatUint(uint64(endowmentID), 10)).Set(float64(pending))
	}
}

func GetErrorCounter() prometheus.Counter {
	return errorCount
}

func GetMessageCounter() *prometheus.CounterVec {
	return messageCount
}

func GetDeliveryCounter() *prometheus.CounterVec {
	return deliveryCount
}

func GetPendingRedemptions() *prometheus.GaugeVec {
	return pendingRedemptions
}
