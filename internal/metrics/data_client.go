package metrics

import (
	"errors"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dataClientRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainspend",
		Subsystem: "data_client",
		Name:      "operations_total",
		Help:      "Count of blockchain data service operations.",
	}, []string{"operation", "network", "status"})
	dataClientRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainspend",
		Subsystem: "data_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of blockchain data service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// DataClient tracks metrics for calls to the blockchain data service and the node.
type DataClient struct {
	network model.Network
}

// NewDataClient constructs a metrics collector for data service calls.
func NewDataClient(network model.Network) *DataClient {
	if network == "" {
		network = "unknown"
	}
	return &DataClient{network: network}
}

// Observe records a single call outcome and duration.
func (m DataClient) Observe(operation string, err error, started time.Time) {
	status := callStatus(err)
	dataClientRequestsTotal.WithLabelValues(operation, string(m.network), status).Inc()
	dataClientRequestDuration.WithLabelValues(operation, string(m.network), status).Observe(time.Since(started).Seconds())
}

// not found is an expected answer, so it gets its own status instead of "error".
func callStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, chaindata.ErrNotFound):
		return "not_found"
	case errors.Is(err, chaindata.ErrTransportUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
