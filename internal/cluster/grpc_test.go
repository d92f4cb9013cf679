package cluster_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/cluster"
)

func TestGRPCCollectivesRoundTrip(t *testing.T) {
	coord, err := cluster.NewGRPCCoordinator("127.0.0.1:0", 2)
	require.NoError(t, err)
	defer coord.Close()

	worker, err := cluster.NewGRPCWorker(coord.Addr(), 1, 2)
	require.NoError(t, err)
	defer worker.Close()

	require.Equal(t, 0, coord.Rank())
	require.Equal(t, 1, worker.Rank())

	var wg sync.WaitGroup
	results := make([]map[string]int64, 2)
	wg.Add(2)
	go func() { defer wg.Done(); results[0] = coord.AllReduceSum(map[string]int64{"n": 2}) }()
	go func() { defer wg.Done(); results[1] = worker.AllReduceSum(map[string]int64{"n": 3}) }()
	wg.Wait()

	require.Equal(t, int64(5), results[0]["n"])
	require.Equal(t, int64(5), results[1]["n"])

	var bwg sync.WaitGroup
	broadcasts := make([][]byte, 2)
	bwg.Add(2)
	go func() { defer bwg.Done(); broadcasts[0] = coord.Broadcast(0, []byte("hi")) }()
	go func() { defer bwg.Done(); broadcasts[1] = worker.Broadcast(0, nil) }()
	bwg.Wait()

	require.Equal(t, "hi", string(broadcasts[0]))
	require.Equal(t, "hi", string(broadcasts[1]))
}
