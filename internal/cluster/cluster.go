/*
Package cluster implements the collective/async messaging glue of spec.md
§5: every graph-overlay operation that needs cluster-wide state (counts,
frontiers, sampled indices) suspends at one of a small set of named
collective points rather than through an ad hoc RPC per call.

This is deliberately not a replicated-log consensus system (see DESIGN.md
for why hashicorp/raft was dropped): ranks are peers executing the same
sequence of collective calls in lockstep (SPMD), the same shape
pkg/events.Broker drives through a subscriber map, just generalized from
a pub/sub fan-out to MPI-style collectives.
*/
package cluster

// Cluster is the collective surface every graph.Graph shard calls through.
// Implementations: Local (in-process, channel-based) and GRPC (each rank
// holds one connection to the rank-0 coordinator, JSON-coded).
type Cluster interface {
	Rank() int
	Size() int

	// Barrier blocks until every rank has called Barrier, and also flushes
	// any AsyncSend traffic addressed to this rank so it becomes visible
	// via Drain immediately after.
	Barrier()

	// AllReduceSum sums local, key-wise, across every rank, and returns the
	// identical combined map to every rank.
	AllReduceSum(local map[string]int64) map[string]int64

	// Broadcast distributes root's payload to every rank, itself included.
	Broadcast(root int, payload []byte) []byte

	// Gather collects every rank's payload, indexed by rank, visible only
	// to root (nil on every other rank).
	Gather(root int, payload []byte) [][]byte

	// AsyncSend enqueues payload for dest under tag without blocking;
	// dest observes it only after its next Drain(tag) or Barrier-adjacent
	// Drain call.
	AsyncSend(dest int, tag string, payload []byte)

	// Drain is itself a collective: it blocks until every rank has called
	// Drain for tag, then returns this rank's queued messages for tag.
	Drain(tag string) [][]byte
}
