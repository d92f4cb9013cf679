package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Record store metrics
	NodesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardgraph_nodes_total",
			Help: "Number of node records on this shard",
		},
	)

	EdgesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardgraph_edges_total",
			Help: "Number of edge records on this shard",
		},
	)

	SeriesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shardgraph_series_total",
			Help: "Number of live series by store",
		},
		[]string{"store"},
	)

	SeriesLoadFactor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shardgraph_series_load_factor",
			Help: "Present/total ratio of a series' backing column",
		},
		[]string{"series"},
	)

	InternedStringsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardgraph_interned_strings_total",
			Help: "Number of distinct strings interned in this shard's string table",
		},
	)

	InternMaxProbeDistance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardgraph_intern_max_probe_distance",
			Help: "Largest open-addressing probe distance seen by the string table",
		},
	)

	// Cluster metrics
	ClusterRank = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardgraph_cluster_rank",
			Help: "This process' rank within the cluster",
		},
	)

	ClusterSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardgraph_cluster_size",
			Help: "Total number of shards in the cluster",
		},
	)

	CollectiveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shardgraph_collective_duration_seconds",
			Help:    "Time spent inside a collective call (barrier, allreduce, gather, broadcast)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Ingest/dump metrics
	IngestParquetDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shardgraph_ingest_parquet_duration_seconds",
			Help:    "Time taken to ingest a Parquet edge file or directory",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestEdgesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shardgraph_ingest_edges_total",
			Help: "Total number of edges ingested",
		},
	)

	IngestDanglingEdgesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shardgraph_ingest_dangling_edges_total",
			Help: "Total number of edges dropped during ingest for a blank endpoint",
		},
	)

	DumpParquetDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shardgraph_dump_parquet_duration_seconds",
			Help:    "Time taken to dump this shard's nodes or edges to Parquet",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"which"},
	)

	// Operation metrics
	NHopsDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shardgraph_nhops_duration_seconds",
			Help:    "Time taken by an n-hop reachability pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	SampleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shardgraph_sample_duration_seconds",
			Help:    "Time taken by a deterministic sampling pass",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"which"},
	)

	KCoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shardgraph_kcore_duration_seconds",
			Help:    "Time taken by a k-core peeling pass, all rounds included",
			Buckets: prometheus.DefBuckets,
		},
	)

	KCoreRounds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shardgraph_kcore_rounds",
			Help:    "Number of peeling rounds a k-core pass needed to converge",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	TopKDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shardgraph_topk_duration_seconds",
			Help:    "Time taken by a top-k pass, including the rank-0 merge",
			Buckets: prometheus.DefBuckets,
		},
	)

	RemoveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardgraph_remove_total",
			Help: "Total number of nodes or edges removed by the remove command",
		},
		[]string{"which"},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(EdgesTotal)
	prometheus.MustRegister(SeriesTotal)
	prometheus.MustRegister(SeriesLoadFactor)
	prometheus.MustRegister(InternedStringsTotal)
	prometheus.MustRegister(InternMaxProbeDistance)
	prometheus.MustRegister(ClusterRank)
	prometheus.MustRegister(ClusterSize)
	prometheus.MustRegister(CollectiveDuration)
	prometheus.MustRegister(IngestParquetDuration)
	prometheus.MustRegister(IngestEdgesTotal)
	prometheus.MustRegister(IngestDanglingEdgesTotal)
	prometheus.MustRegister(DumpParquetDuration)
	prometheus.MustRegister(NHopsDuration)
	prometheus.MustRegister(SampleDuration)
	prometheus.MustRegister(KCoreDuration)
	prometheus.MustRegister(KCoreRounds)
	prometheus.MustRegister(TopKDuration)
	prometheus.MustRegister(RemoveTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// StageTimer measures one operation that may run in named stages (a k-core
// pass, say, alternates local peeling with an AllReduceSum each round).
// Duration() and the Observe* methods report the sum of every completed
// Lap plus whatever has elapsed since the timer started or the last Lap,
// so a caller that never laps behaves exactly like a plain start-to-stop
// stopwatch.
type StageTimer struct {
	start time.Time
	laps  map[string]time.Duration
}

// NewTimer starts a timer running.
func NewTimer() *StageTimer {
	return &StageTimer{start: time.Now()}
}

// Lap records the time since the timer started (or since the previous Lap)
// against name, resets the running clock, and returns that stage's
// duration. Calling Lap under the same name twice accumulates.
func (t *StageTimer) Lap(name string) time.Duration {
	d := time.Since(t.start)
	if t.laps == nil {
		t.laps = make(map[string]time.Duration)
	}
	t.laps[name] += d
	t.start = time.Now()
	return d
}

// Duration returns the total elapsed time across every completed lap plus
// the time since the timer started (or last lapped).
func (t *StageTimer) Duration() time.Duration {
	total := time.Since(t.start)
	for _, d := range t.laps {
		total += d
	}
	return total
}

// ObserveDuration records Duration() to a histogram.
func (t *StageTimer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records Duration() to a histogram vec with labels.
func (t *StageTimer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
