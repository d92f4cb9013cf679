package metrics

import (
	"time"

	"github.com/cuemby/shardgraph/graph"
	"github.com/cuemby/shardgraph/internal/cluster"
)

// Collector periodically samples a shard's graph and cluster handle into
// the package-level gauges.
type Collector struct {
	g      *graph.Graph
	cl     cluster.Cluster
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector for one shard's graph.
func NewCollector(g *graph.Graph, cl cluster.Cluster) *Collector {
	return &Collector{
		g:      g,
		cl:     cl,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds, local-only (no
// collective calls), so a single shard's ticker can never block on
// another shard's.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectRecordMetrics()
	c.collectSeriesMetrics()
	c.collectInternMetrics()
	c.collectClusterMetrics()
}

func (c *Collector) collectRecordMetrics() {
	NodesTotal.Set(float64(c.g.LocalNodeCount()))
	EdgesTotal.Set(float64(c.g.LocalEdgeCount()))
}

func (c *Collector) collectSeriesMetrics() {
	nodeSeries := c.g.GetSeriesNames("node")
	edgeSeries := c.g.GetSeriesNames("edge")
	SeriesTotal.WithLabelValues("node").Set(float64(len(nodeSeries)))
	SeriesTotal.WithLabelValues("edge").Set(float64(len(edgeSeries)))

	for _, qname := range append(nodeSeries, edgeSeries...) {
		lf, err := c.g.SeriesLoadFactor(qname)
		if err != nil {
			continue
		}
		SeriesLoadFactor.WithLabelValues(qname).Set(lf)
	}
}

func (c *Collector) collectInternMetrics() {
	strs := c.g.Strings()
	InternedStringsTotal.Set(float64(strs.Len()))
	InternMaxProbeDistance.Set(float64(strs.MaxProbeDistance()))
}

func (c *Collector) collectClusterMetrics() {
	ClusterRank.Set(float64(c.cl.Rank()))
	ClusterSize.Set(float64(c.cl.Size()))
}
