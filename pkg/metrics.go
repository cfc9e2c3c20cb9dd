package chain

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBlocksAccepted prometheus.Counter
	prometheusBlocksRejected *prometheus.CounterVec
	prometheusTipHeight      prometheus.Gauge
	prometheusRetainedBlocks prometheus.Gauge
	prometheusPrunedBlocks   prometheus.Counter
	prometheusPoolSize       prometheus.Gauge
	prometheusTxsSelected    *prometheus.CounterVec
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBlocksAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "forkchain",
			Subsystem: "chain",
			Name:      "blocks_accepted",
			Help:      "Number of blocks added to the block tree",
		},
	)
	prometheusBlocksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forkchain",
			Subsystem: "chain",
			Name:      "blocks_rejected",
			Help:      "Number of blocks rejected, by error code",
		},
		[]string{"code"},
	)
	prometheusTipHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "forkchain",
			Subsystem: "chain",
			Name:      "tip_height",
			Help:      "Height of the max-height block",
		},
	)
	prometheusRetainedBlocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "forkchain",
			Subsystem: "chain",
			Name:      "retained_blocks",
			Help:      "Number of blocks held in the block tree",
		},
	)
	prometheusPrunedBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "forkchain",
			Subsystem: "chain",
			Name:      "pruned_blocks",
			Help:      "Number of side-branch blocks discarded below the cut-off line",
		},
	)
	prometheusPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "forkchain",
			Subsystem: "mempool",
			Name:      "size",
			Help:      "Number of pending transactions",
		},
	)
	prometheusTxsSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forkchain",
			Subsystem: "handler",
			Name:      "txs_selected",
			Help:      "Number of transactions accepted by the transaction handler, by policy",
		},
		[]string{"policy"},
	)
}
