// Package orderbookv1 holds the OrderbookAggregator wire types and gRPC
// service plumbing described by orderbook.proto. No protoc toolchain runs
// in this build: types.go defines the message shapes as plain Go structs,
// codec.go bridges them onto the wire as JSON via a custom grpc codec
// (registered under the "json" subtype), and service.go hand-writes the
// client/server interfaces and ServiceDesc a protoc-gen-go-grpc pass would
// otherwise generate from the .proto file. See DESIGN.md for why this
// approach was chosen over fabricating protobuf descriptor bytes by hand.
package orderbookv1

// TradedPair identifies the market a BookSummary subscription targets.
type TradedPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// BookSummaryRequest is the BookSummary RPC's single request message.
type BookSummaryRequest struct {
	TradedPair TradedPair `json:"traded_pair"`
}

// Level is one exchange-tagged price/amount entry of a Summary side.
type Level struct {
	Exchange string  `json:"exchange"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

// Summary is the BookSummary RPC's streamed response message. Spread is
// NaN when undefined — spec §3 requires picking one wire representation
// and documenting it (see SPEC_FULL.md §D.4).
type Summary struct {
	Spread WireFloat64 `json:"spread"`
	Bids   []Level     `json:"bids"`
	Asks   []Level     `json:"asks"`
}
