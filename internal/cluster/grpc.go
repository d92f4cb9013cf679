package cluster

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// wireRequest/wireResponse are the plain Go structs exchanged over the
// json-coded Collective RPC; see codec.go. There is no protoc-generated
// package behind this — the method table is registered by hand below.
type wireRequest struct {
	ID      string           `json:"id"`
	Op      string           `json:"op"`
	Rank    int              `json:"rank"`
	Reduce  map[string]int64 `json:"reduce,omitempty"`
	Root    int              `json:"root,omitempty"`
	Payload []byte           `json:"payload,omitempty"`
	Dest    int              `json:"dest,omitempty"`
	Tag     string           `json:"tag,omitempty"`
}

type wireResponse struct {
	Reduce    map[string]int64 `json:"reduce,omitempty"`
	Broadcast []byte           `json:"broadcast,omitempty"`
	Gather    [][]byte         `json:"gather,omitempty"`
	Messages  [][]byte         `json:"messages,omitempty"`
}

// coordinatorServer executes every collective by replaying it through the
// same rendezvous hub Local uses, keyed by the RPC caller's declared rank.
// Rank 0 always hosts it; every other rank is a pure gRPC client.
type coordinatorServer struct {
	hub *localHub
}

func (s *coordinatorServer) Call(_ context.Context, req *wireRequest) (*wireResponse, error) {
	log.Debug().Str("op", req.Op).Str("call_id", req.ID).Int("rank", req.Rank).Msg("cluster: coordinator handling collective call")
	peer := &Local{hub: s.hub, rank: req.Rank}
	switch req.Op {
	case "barrier":
		peer.Barrier()
		return &wireResponse{}, nil
	case "allreduce":
		return &wireResponse{Reduce: peer.AllReduceSum(req.Reduce)}, nil
	case "broadcast":
		return &wireResponse{Broadcast: peer.Broadcast(req.Root, req.Payload)}, nil
	case "gather":
		return &wireResponse{Gather: peer.Gather(req.Root, req.Payload)}, nil
	case "send":
		peer.AsyncSend(req.Dest, req.Tag, req.Payload)
		return &wireResponse{}, nil
	case "drain":
		return &wireResponse{Messages: peer.Drain(req.Tag)}, nil
	default:
		return nil, fmt.Errorf("cluster: unknown collective op %q", req.Op)
	}
}

const collectiveServiceName = "shardgraph.cluster.Collective"

var collectiveServiceDesc = grpc.ServiceDesc{
	ServiceName: collectiveServiceName,
	HandlerType: (*coordinatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Call",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(wireRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*coordinatorServer).Call(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + collectiveServiceName + "/Call"}
				handler := func(ctx context.Context, in any) (any, error) {
					return srv.(*coordinatorServer).Call(ctx, in.(*wireRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Metadata: "internal/cluster/grpc.go",
}

// GRPC is the distributed Cluster implementation: one connection per
// shard to the rank-0 coordinator, grounded on pkg/api's (server) and
// pkg/client's (dialer) gRPC usage.
type GRPC struct {
	rank, size int
	addr       string
	conn       *grpc.ClientConn
	server     *grpc.Server
}

// Addr returns the coordinator's bound listen address (useful when addr
// was passed as "host:0" and the OS chose the port), so other ranks can
// be dialed with NewGRPCWorker.
func (g *GRPC) Addr() string { return g.addr }

// NewGRPCCoordinator starts rank 0: it both serves the Collective RPC and
// is itself a participating rank, dialing its own listener like any other
// worker so all ranks share one code path.
func NewGRPCCoordinator(addr string, size int) (*GRPC, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cluster: listen %s: %w", addr, err)
	}
	hub := &localHub{n: size, inbox: make([]map[string][][]byte, size)}
	hub.cond = sync.NewCond(&hub.mu)
	for i := range hub.inbox {
		hub.inbox[i] = make(map[string][][]byte)
	}

	srv := grpc.NewServer()
	srv.RegisterService(&collectiveServiceDesc, &coordinatorServer{hub: hub})
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Error().Err(err).Msg("cluster: coordinator server stopped")
		}
	}()

	return dial(lis.Addr().String(), 0, size, srv)
}

// NewGRPCWorker dials an already-running coordinator as rank.
func NewGRPCWorker(addr string, rank, size int) (*GRPC, error) {
	return dial(addr, rank, size, nil)
}

func dial(addr string, rank, size int, server *grpc.Server) (*GRPC, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("cluster: dial %s: %w", addr, err)
	}
	return &GRPC{rank: rank, size: size, addr: addr, conn: conn, server: server}, nil
}

// Close releases the client connection and, on rank 0, stops the
// coordinator server.
func (g *GRPC) Close() error {
	if g.server != nil {
		g.server.GracefulStop()
	}
	return g.conn.Close()
}

func (g *GRPC) Rank() int { return g.rank }
func (g *GRPC) Size() int { return g.size }

func (g *GRPC) call(req *wireRequest) *wireResponse {
	req.Rank = g.rank
	req.ID = uuid.NewString()
	resp := new(wireResponse)
	err := g.conn.Invoke(context.Background(), "/"+collectiveServiceName+"/Call", req, resp)
	if err != nil {
		// A collective that can't complete has no well-defined partial
		// result in an SPMD model; log and return a zero response rather
		// than leaving the caller to guess which fields are valid. The
		// request id ties this failure to the coordinator's own log line
		// for the same call.
		log.Error().Err(err).Str("op", req.Op).Str("call_id", req.ID).Int("rank", g.rank).Msg("cluster: collective rpc failed")
		return &wireResponse{}
	}
	return resp
}

func (g *GRPC) Barrier() { g.call(&wireRequest{Op: "barrier"}) }

func (g *GRPC) AllReduceSum(local map[string]int64) map[string]int64 {
	return g.call(&wireRequest{Op: "allreduce", Reduce: local}).Reduce
}

func (g *GRPC) Broadcast(root int, payload []byte) []byte {
	return g.call(&wireRequest{Op: "broadcast", Root: root, Payload: payload}).Broadcast
}

func (g *GRPC) Gather(root int, payload []byte) [][]byte {
	return g.call(&wireRequest{Op: "gather", Root: root, Payload: payload}).Gather
}

func (g *GRPC) AsyncSend(dest int, tag string, payload []byte) {
	g.call(&wireRequest{Op: "send", Dest: dest, Tag: tag, Payload: payload})
}

func (g *GRPC) Drain(tag string) [][]byte {
	return g.call(&wireRequest{Op: "drain", Tag: tag}).Messages
}
