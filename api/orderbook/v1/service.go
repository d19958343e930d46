package orderbookv1

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName and method name mirror orderbook.proto's
// "orderbook.OrderbookAggregator" service and its single RPC.
const (
	serviceName       = "orderbook.OrderbookAggregator"
	bookSummaryMethod = "BookSummary"
)

// OrderbookAggregatorServer is the server API for the OrderbookAggregator
// service, equivalent to what protoc-gen-go-grpc would generate from
// orderbook.proto.
type OrderbookAggregatorServer interface {
	BookSummary(*BookSummaryRequest, OrderbookAggregator_BookSummaryServer) error
}

// OrderbookAggregator_BookSummaryServer is the server-side stream handle
// for the BookSummary RPC.
type OrderbookAggregator_BookSummaryServer interface {
	Send(*Summary) error
	grpc.ServerStream
}

type bookSummaryServer struct {
	grpc.ServerStream
}

func (s *bookSummaryServer) Send(summary *Summary) error {
	return s.ServerStream.SendMsg(summary)
}

// RegisterOrderbookAggregatorServer registers srv with s under the service
// descriptor below, the same call shape protoc-gen-go-grpc emits.
func RegisterOrderbookAggregatorServer(s grpc.ServiceRegistrar, srv OrderbookAggregatorServer) {
	s.RegisterService(&serviceDesc, srv)
}

func bookSummaryHandler(srv any, stream grpc.ServerStream) error {
	req := new(BookSummaryRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(OrderbookAggregatorServer).BookSummary(req, &bookSummaryServer{ServerStream: stream})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderbookAggregatorServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    bookSummaryMethod,
			Handler:       bookSummaryHandler,
			ServerStreams: true,
		},
	},
	Metadata: "orderbook.proto",
}

// OrderbookAggregatorClient is the client API for the OrderbookAggregator
// service.
type OrderbookAggregatorClient interface {
	BookSummary(ctx context.Context, in *BookSummaryRequest, opts ...grpc.CallOption) (OrderbookAggregator_BookSummaryClient, error)
}

type orderbookAggregatorClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderbookAggregatorClient builds a client bound to cc. Callers should
// pass grpc.CallContentSubtype(codecName) (or rely on DialOption defaults
// configured via WithDefaultCallOptions) so the json codec in codec.go is used.
func NewOrderbookAggregatorClient(cc grpc.ClientConnInterface) OrderbookAggregatorClient {
	return &orderbookAggregatorClient{cc: cc}
}

func (c *orderbookAggregatorClient) BookSummary(ctx context.Context, in *BookSummaryRequest, opts ...grpc.CallOption) (OrderbookAggregator_BookSummaryClient, error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], "/"+serviceName+"/"+bookSummaryMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &bookSummaryClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// OrderbookAggregator_BookSummaryClient is the client-side stream handle
// for the BookSummary RPC.
type OrderbookAggregator_BookSummaryClient interface {
	Recv() (*Summary, error)
	grpc.ClientStream
}

type bookSummaryClient struct {
	grpc.ClientStream
}

func (c *bookSummaryClient) Recv() (*Summary, error) {
	summary := new(Summary)
	if err := c.ClientStream.RecvMsg(summary); err != nil {
		return nil, err
	}
	return summary, nil
}
