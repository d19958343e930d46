package orderbookv1

import "testing"

func TestJSONCodecRoundTripsRequestAndSummary(t *testing.T) {
	codec := jsonCodec{}

	req := &BookSummaryRequest{TradedPair: TradedPair{First: "ETH", Second: "BTC"}}
	data, err := codec.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	var decodedReq BookSummaryRequest
	if err := codec.Unmarshal(data, &decodedReq); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if decodedReq != *req {
		t.Fatalf("request round trip mismatch: want %+v, got %+v", req, decodedReq)
	}

	summary := &Summary{
		Spread: 1.5,
		Bids:   []Level{{Exchange: "Binance", Price: 100, Amount: 1}},
	}
	data, err = codec.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}

	var decodedSummary Summary
	if err := codec.Unmarshal(data, &decodedSummary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if decodedSummary.Spread != summary.Spread || len(decodedSummary.Bids) != 1 {
		t.Fatalf("summary round trip mismatch: want %+v, got %+v", summary, decodedSummary)
	}
}

func TestJSONCodecName(t *testing.T) {
	if name := (jsonCodec{}).Name(); name != "json" {
		t.Fatalf("expected codec name %q, got %q", "json", name)
	}
}
