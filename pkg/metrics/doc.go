/*
Package metrics provides Prometheus metrics collection and exposition for a
shardgraph process.

The metrics package defines and registers every shardgraph metric using the
Prometheus client library, giving observability into record-store occupancy,
string-table interning pressure, cluster membership, and operation latency.
Metrics are exposed via an HTTP endpoint for scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Record store: node/edge counts, series     │          │
	│  │  Intern table: string count, probe distance │          │
	│  │  Cluster: rank, size, collective duration   │          │
	│  │  Operations: ingest/dump/nhops/sample/kcore │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Collector

Collector (collector.go) samples a single shard's *graph.Graph and
internal/cluster.Cluster handle into the package gauges every 15 seconds.
Each tick is local-only: it reads this shard's own record counts, series
list, and string table, and reads the cluster handle's own Rank/Size. It
never issues a collective call, so one shard's collector can never block
waiting on another shard's.

# Metrics Catalog

Record store:

shardgraph_nodes_total / shardgraph_edges_total:
  - Type: Gauge
  - Description: Local node/edge record count on this shard

shardgraph_series_total{store}:
  - Type: Gauge
  - Description: Number of live series, labeled by "node" or "edge"

shardgraph_series_load_factor{series}:
  - Type: Gauge
  - Description: Present/total ratio of a series' backing column

Intern table:

shardgraph_interned_strings_total:
  - Type: Gauge
  - Description: Distinct strings interned in this shard's string table

shardgraph_intern_max_probe_distance:
  - Type: Gauge
  - Description: Largest open-addressing probe distance observed

Cluster:

shardgraph_cluster_rank / shardgraph_cluster_size:
  - Type: Gauge
  - Description: This process' rank and the cluster's total shard count

shardgraph_collective_duration_seconds{op}:
  - Type: Histogram
  - Description: Time spent inside a barrier, allreduce, gather, or broadcast

Operations:

shardgraph_ingest_parquet_duration_seconds, shardgraph_ingest_edges_total,
shardgraph_ingest_dangling_edges_total, shardgraph_dump_parquet_duration_seconds{which},
shardgraph_nhops_duration_seconds, shardgraph_sample_duration_seconds{which},
shardgraph_kcore_duration_seconds, shardgraph_kcore_rounds,
shardgraph_topk_duration_seconds, shardgraph_remove_total{which}.

# Usage

	timer := metrics.NewTimer()
	g.NHops(target, maxHops, seeds, where)
	timer.ObserveDuration(metrics.NHopsDuration)

	collector := metrics.NewCollector(g, cl)
	collector.Start()
	defer collector.Stop()

	http.Handle("/metrics", metrics.Handler())

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
*/
package metrics
