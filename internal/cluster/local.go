package cluster

import "sync"

// localHub is the shared coordination point for one in-process cluster:
// every Local handle created by NewLocalCluster points at the same hub,
// a mutex-guarded broker in the shape of pkg/events/events.go's Broker,
// generalized here to barrier-synchronized collectives.
type localHub struct {
	n int

	mu           sync.Mutex
	cond         *sync.Cond
	gen          int
	arrived      int
	reduceIn     map[string]int64
	reduceOut    map[string]int64
	broadcastBuf []byte
	gatherBufs   [][]byte

	inboxMu sync.Mutex
	inbox   []map[string][][]byte
}

// Local is one shard's handle into an in-process cluster.
type Local struct {
	hub  *localHub
	rank int
}

// NewLocalCluster builds n Local handles sharing one coordination hub, for
// single-process tests and cmd/shardgraph's dev/single-node mode.
func NewLocalCluster(n int) []*Local {
	h := &localHub{n: n, inbox: make([]map[string][][]byte, n)}
	h.cond = sync.NewCond(&h.mu)
	for i := range h.inbox {
		h.inbox[i] = make(map[string][][]byte)
	}
	out := make([]*Local, n)
	for i := 0; i < n; i++ {
		out[i] = &Local{hub: h, rank: i}
	}
	return out
}

func (l *Local) Rank() int { return l.rank }
func (l *Local) Size() int { return l.hub.n }

// rendezvous is the shared "every rank showed up" primitive underlying
// Barrier, AllReduceSum, Broadcast, and Gather: each caller contributes
// under the hub's lock, the last arrival advances the generation and
// wakes everyone, and the rest wait on the same generation counter.
func (l *Local) rendezvous(contribute func()) {
	h := l.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	contribute()
	h.arrived++
	gen := h.gen
	if h.arrived == h.n {
		h.arrived = 0
		h.gen++
		h.cond.Broadcast()
		return
	}
	for h.gen == gen {
		h.cond.Wait()
	}
}

func (l *Local) Barrier() {
	l.rendezvous(func() {})
	l.drainVisible()
}

// drainVisible is a no-op placeholder hook: under this hub design, inbox
// writes are visible to any subsequent Drain the instant AsyncSend
// returns (the inbox is its own mutex-protected structure, not staged
// behind the barrier generation), so Barrier's only remaining
// responsibility is the rendezvous itself.
func (l *Local) drainVisible() {}

func (l *Local) AllReduceSum(local map[string]int64) map[string]int64 {
	h := l.hub
	l.rendezvous(func() {
		if h.reduceIn == nil {
			h.reduceIn = make(map[string]int64)
		}
		for k, v := range local {
			h.reduceIn[k] += v
		}
		if h.arrived == h.n-1 { // this call is the last arrival
			h.reduceOut = h.reduceIn
			h.reduceIn = nil
		}
	})
	out := make(map[string]int64, len(h.reduceOut))
	for k, v := range h.reduceOut {
		out[k] = v
	}
	return out
}

func (l *Local) Broadcast(root int, payload []byte) []byte {
	h := l.hub
	l.rendezvous(func() {
		if l.rank == root {
			h.broadcastBuf = payload
		}
	})
	return h.broadcastBuf
}

func (l *Local) Gather(root int, payload []byte) [][]byte {
	h := l.hub
	l.rendezvous(func() {
		if h.gatherBufs == nil {
			h.gatherBufs = make([][]byte, h.n)
		}
		h.gatherBufs[l.rank] = payload
	})
	if l.rank != root {
		return nil
	}
	out := make([][]byte, len(h.gatherBufs))
	copy(out, h.gatherBufs)
	return out
}

func (l *Local) AsyncSend(dest int, tag string, payload []byte) {
	h := l.hub
	h.inboxMu.Lock()
	h.inbox[dest][tag] = append(h.inbox[dest][tag], payload)
	h.inboxMu.Unlock()
}

func (l *Local) Drain(tag string) [][]byte {
	l.rendezvous(func() {})
	h := l.hub
	h.inboxMu.Lock()
	msgs := h.inbox[l.rank][tag]
	delete(h.inbox[l.rank], tag)
	h.inboxMu.Unlock()
	return msgs
}
