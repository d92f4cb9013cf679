/*
Package config is shardgraph's shared configuration surface: directory
layout, shard count/rank, cluster transport, and logging defaults, read
from an optional YAML file and overridden by cobra flags — the same
flags-over-defaults shape cmd/warren's main.go uses for
--log-level/--log-json, generalized to a loadable file for the larger
flag surface a multi-shard deployment needs.
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs a cmd/shardgraph invocation needs.
type Config struct {
	// DataDir is the root directory datastore.Allocator opens; each shard
	// gets a "<DataDir>/rank-<Rank>/" subdirectory (SPEC_FULL.md §6.1).
	DataDir string `yaml:"data_dir"`

	// ShardCount is the cluster size; Rank is this process's index.
	ShardCount int `yaml:"shard_count"`
	Rank       int `yaml:"rank"`

	// ClusterAddr is the rank-0 coordinator's gRPC listen/dial address.
	// Empty means use internal/cluster.Local (single-process mode).
	ClusterAddr string `yaml:"cluster_addr"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns the single-shard, single-process configuration
// cmd/shardgraph runs with when no flags or config file are given.
func Default() Config {
	return Config{
		DataDir:    "./shardgraph-data",
		ShardCount: 1,
		Rank:       0,
		LogLevel:   "info",
		LogJSON:    false,
	}
}

// Load reads path as YAML over Default(), leaving fields the file omits
// at their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants cmd/shardgraph relies on before opening
// any store.
func (c Config) Validate() error {
	if c.ShardCount < 1 {
		return fmt.Errorf("config: shard_count must be >= 1, got %d", c.ShardCount)
	}
	if c.Rank < 0 || c.Rank >= c.ShardCount {
		return fmt.Errorf("config: rank %d out of range [0, %d)", c.Rank, c.ShardCount)
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	return nil
}

// Distributed reports whether this configuration runs a multi-process
// cluster.GRPC topology instead of an in-process cluster.Local one.
func (c Config) Distributed() bool { return c.ClusterAddr != "" }
