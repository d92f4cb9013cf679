package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/graph"
	"github.com/cuemby/shardgraph/internal/cluster"
	"github.com/cuemby/shardgraph/internal/config"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/parquetio"
	"github.com/cuemby/shardgraph/internal/value"
)

// stateBlob is the optional JSON document a --state flag (path or "-" for
// stdin) can supply in place of repeating flags on every invocation,
// per spec.md §6.3's "state blob (datastore path + filters)".
type stateBlob struct {
	DataDir     string `json:"data_dir"`
	ShardCount  int    `json:"shard_count"`
	Rank        int    `json:"rank"`
	ClusterAddr string `json:"cluster_addr"`
	Graph       string `json:"graph"`
}

// loadConfig builds the effective Config for one invocation: config.Default(),
// overridden by --config's YAML, overridden by an explicit --state blob,
// overridden last by any flag the caller actually set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if path, _ := cmd.Flags().GetString("state"); path != "" {
		var raw []byte
		var err error
		if path == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return cfg, fmt.Errorf("shardgraph: read state blob: %w", err)
		}
		var blob stateBlob
		if err := json.Unmarshal(raw, &blob); err != nil {
			return cfg, fmt.Errorf("shardgraph: parse state blob: %w", err)
		}
		if blob.DataDir != "" {
			cfg.DataDir = blob.DataDir
		}
		if blob.ShardCount != 0 {
			cfg.ShardCount = blob.ShardCount
		}
		if blob.Rank != 0 {
			cfg.Rank = blob.Rank
		}
		if blob.ClusterAddr != "" {
			cfg.ClusterAddr = blob.ClusterAddr
		}
		if blob.Graph != "" && !cmd.Flags().Changed("graph") {
			if err := cmd.Flags().Set("graph", blob.Graph); err != nil {
				return cfg, err
			}
		}
	}

	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetInt("shard-count"); v != 0 {
		cfg.ShardCount = v
	}
	if v, _ := cmd.Flags().GetInt("rank"); v >= 0 {
		cfg.Rank = v
	}
	if v, _ := cmd.Flags().GetString("cluster-addr"); v != "" {
		cfg.ClusterAddr = v
	}

	return cfg, cfg.Validate()
}

// graphHandle bundles the resources one command opens so they can be torn
// down together once the operation has run.
type graphHandle struct {
	cfg   config.Config
	alloc *datastore.Allocator
	cl    cluster.Cluster
	g     *graph.Graph
}

func (h *graphHandle) Close() {
	if h.alloc != nil {
		h.alloc.Close()
	}
	if gc, ok := h.cl.(*cluster.GRPC); ok {
		gc.Close()
	}
}

// openGraph opens the allocator, joins the cluster, and opens (or creates)
// the graph named by --graph, for a single shard's view of the datastore.
func openGraph(cmd *cobra.Command, directed bool, createIfMissing bool) (*graphHandle, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	graphKey, _ := cmd.Flags().GetString("graph")
	rankDir := datastore.RankDir(cfg.DataDir, cfg.Rank)

	alloc, err := datastore.Open(rankDir, datastore.OpenOnly)
	if errors.Is(err, errs.ErrStoreNotFound) && createIfMissing {
		alloc, err = datastore.Open(rankDir, datastore.CreateOnly)
	}
	if err != nil {
		return nil, err
	}

	var cl cluster.Cluster
	if cfg.Distributed() {
		if cfg.Rank == 0 {
			cl, err = cluster.NewGRPCCoordinator(cfg.ClusterAddr, cfg.ShardCount)
		} else {
			cl, err = cluster.NewGRPCWorker(cfg.ClusterAddr, cfg.Rank, cfg.ShardCount)
		}
		if err != nil {
			alloc.Close()
			return nil, err
		}
	} else {
		cl = cluster.NewLocalCluster(1)[0]
	}

	g, err := graph.Open(alloc, cl, graphKey, directed, createIfMissing)
	if err != nil {
		alloc.Close()
		return nil, err
	}

	return &graphHandle{cfg: cfg, alloc: alloc, cl: cl, g: g}, nil
}

// readWhere compiles the --where flag's JSON predicate (inline, @file, or
// "-" for stdin) into a graph.Where. An empty flag means "match everything".
func readWhere(cmd *cobra.Command) (*graph.Where, error) {
	raw, _ := cmd.Flags().GetString("where")
	if raw == "" {
		return nil, nil
	}

	var rule []byte
	var err error
	switch {
	case raw == "-":
		rule, err = io.ReadAll(os.Stdin)
	case strings.HasPrefix(raw, "@"):
		rule, err = os.ReadFile(strings.TrimPrefix(raw, "@"))
	default:
		rule = []byte(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("shardgraph: read where clause: %w", err)
	}
	return graph.CompileWhere(rule)
}

// parseMetaFlag parses repeated "col:TYPE" pairs (e.g. "weight:DOUBLE") into
// the map[string]parquetio.FieldType shape IngestParquetEdges/DumpParquet*
// take, per spec.md §6.2's column type table.
func parseMetaFlag(pairs []string) (map[string]parquetio.FieldType, error) {
	meta := make(map[string]parquetio.FieldType, len(pairs))
	for _, pair := range pairs {
		col, typ, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("shardgraph: malformed --meta %q, want col:TYPE", pair)
		}
		ft := parquetio.FieldType(strings.ToUpper(typ))
		if _, err := parquetio.TagFor(ft); err != nil {
			return nil, fmt.Errorf("shardgraph: --meta %q: %w", pair, err)
		}
		meta[col] = ft
	}
	return meta, nil
}

// parseScalarValue parses --value/--type into a value.Value, for the
// assign command's fixed-value form (spec.md §4.5). Str/Arr/Obj locators
// are not settable from a raw CLI literal; only the scalar tags are.
func parseScalarValue(tag, raw string) (value.Value, error) {
	switch strings.ToUpper(tag) {
	case "BOOL":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return value.Value{}, fmt.Errorf("shardgraph: --value %q is not a bool: %w", raw, err)
		}
		return value.FromBool(b), nil
	case "I64":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("shardgraph: --value %q is not an int64: %w", raw, err)
		}
		return value.FromI64(n), nil
	case "U64":
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("shardgraph: --value %q is not a uint64: %w", raw, err)
		}
		return value.FromU64(n), nil
	case "F64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("shardgraph: --value %q is not a float64: %w", raw, err)
		}
		return value.FromF64(f), nil
	default:
		return value.Value{}, fmt.Errorf("shardgraph: --type %q must be one of BOOL, I64, U64, F64", tag)
	}
}

// addWhereFlag attaches the --where flag every filtered command shares.
func addWhereFlag(cmd *cobra.Command) {
	cmd.Flags().String("where", "", `Predicate JSON (inline, "@file", or "-" for stdin); empty matches every row`)
}

// parseIntArg parses a positional integer argument (sample/topk/kcore
// counts), wrapping the strconv error for malformed input.
func parseIntArg(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("shardgraph: %q is not an integer: %w", raw, err)
	}
	return n, nil
}
