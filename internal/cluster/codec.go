package cluster

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a google.golang.org/grpc encoding.Codec that marshals with
// encoding/json instead of protobuf wire format. Registered under the
// name "json" so every collective call on GRPC negotiates it via
// grpc.CallContentSubtype, letting the cluster's messages stay plain Go
// structs rather than requiring a protoc-generated package (see
// DESIGN.md: pkg/api's proto sources were not part of the retrieved
// example tree).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
