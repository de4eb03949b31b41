package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assemblerBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainspend",
		Subsystem: "assembler",
		Name:      "builds_total",
		Help:      "Count of transaction builds by variant.",
	}, []string{"variant", "network", "status"})

	assemblerBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainspend",
		Subsystem: "assembler",
		Name:      "build_duration_seconds",
		Help:      "Duration of a transaction build including remote lookups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"variant", "network", "status"})

	assemblerBuildInputs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainspend",
		Subsystem: "assembler",
		Name:      "build_inputs",
		Help:      "Number of inputs per successfully built transaction.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1..512
	}, []string{"variant", "network"})
)

// Assembler records transaction build outcomes.
type Assembler struct {
	network model.Network
}

// NewAssembler constructs a metrics collector for the transaction assembler.
func NewAssembler(network model.Network) *Assembler {
	if network == "" {
		network = "unknown"
	}
	return &Assembler{network: network}
}

// ObserveBuild records one build attempt of the given variant.
func (m Assembler) ObserveBuild(variant string, err error, inputs int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	assemblerBuildsTotal.WithLabelValues(variant, string(m.network), status).Inc()
	assemblerBuildDuration.WithLabelValues(variant, string(m.network), status).Observe(time.Since(started).Seconds())
	if err == nil {
		assemblerBuildInputs.WithLabelValues(variant, string(m.network)).Observe(float64(inputs))
	}
}
