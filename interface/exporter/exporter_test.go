package exporter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersBeforeInit(t *testing.T) {
	errorCount, messageCount, deliveryCount, pendingRedemptions = nil, nil, nil, nil

	assert.NotPanics(t, func() {
		IncErrorCount()
		IncMessageCount("deposit")
		IncDeliveryCount("sent")
		SetPendingRedemptions(1, 2)
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg)

	IncErrorCount()
	IncErrorCount()
	IncMessageCount("deposit")
	IncMessageCount("withdraw")
	IncMessageCount("deposit")
	IncDeliveryCount("error")
	SetPendingRedemptions(7, 3)
	SetPendingRedemptions(7, 1)

	assert.Equal(t, float64(2), testutil.ToFloat64(GetErrorCounter()))
	assert.Equal(t, float64(2), testutil.ToFloat64(GetMessageCounter().WithLabelValues("deposit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(GetMessageCounter().WithLabelValues("withdraw")))
	assert.Equal(t, float64(1), testutil.ToFloat64(GetDeliveryCounter().WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(GetPendingRedemptions().WithLabelValues("7")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "endowment_accounts_error_count")
	assert.Contains(t, names, "endowment_accounts_pending_redemptions")
}
