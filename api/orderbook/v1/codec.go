package orderbookv1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is passed to grpc.CallContentSubtype on the client and matched
// against the content-subtype gRPC negotiates per call; registering it
// under encoding.RegisterCodec makes it available to any grpc.ClientConn
// or grpc.Server in this process without further wiring.
const codecName = "json"

// jsonCodec implements encoding.Codec by marshaling the plain Go structs in
// this package as JSON, standing in for the protoc-generated protobuf codec
// a real .proto compile would produce.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
