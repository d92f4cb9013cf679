/*
Package log provides structured logging for shardgraph using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
shard/graph/series-specific child loggers, configurable log levels, and
helper functions for common logging patterns. All logs include timestamps
and support filtering by severity level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Context Loggers                     │          │
	│  │  - WithComponent("ingest")                  │          │
	│  │  - Shard(3).WithGraph("social")             │          │
	│  │           .WithSeries("node.score")         │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Usage

	import "github.com/cuemby/shardgraph/pkg/log"

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	log.Info("shard started")

	shardLog := log.Shard(cl.Rank()).WithGraph("social")
	shardLog.Logger().Info().Msg("graph opened")

	seriesLog := shardLog.WithSeries("node.score")
	seriesLog.Logger().Error().Err(err).Msg("assign failed")

# Design

One global Logger, initialized once in main() and read from every
package without threading a logger argument through every call.
WithComponent is a one-shot child logger; Shard returns a *ScopedLogger
so a command that opens one shard's one graph can narrow rank, then
graph, then series without re-attaching fields that are already known.

Never log an entire row or predicate payload at Info level — series
values can carry user data ingested from Parquet files; log qualified
names and counts, not cell contents.
*/
package log
