package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
)

// State is the Aggregator's spec §4.2 lifecycle state.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateTerminated
	// StateFailed is StateTerminated's counterpart for an aggregator that
	// never got a single source running: every configured Feed's Start
	// call returned an error (spec §4.3 NoSourcesAvailable), as opposed to
	// sources that connected and later all dropped.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle is the spec §4.2 AggregatorHandle: an opaque, shareable reference
// to one running Aggregator. Multiple Registry callers hold clones; the
// Aggregator itself never references the Handle (spec §9 "cyclic lifetime
// temptation" — cleanup flows registry to aggregator, never back).
type Handle struct {
	pair    domain.TradedPair
	bc      Broadcaster
	state   *atomic.Int32
}

// Pair returns the traded pair this handle's aggregator serves.
func (h *Handle) Pair() domain.TradedPair { return h.pair }

// State reports whether the aggregator is still running.
func (h *Handle) State() State { return State(h.state.Load()) }

// Subscribe returns a fresh subscription to the broadcast stream. Per spec
// §4.2, a newly joined subscriber does not receive historical summaries;
// it begins with the next published one.
func (h *Handle) Subscribe() (<-chan domain.Summary, func()) {
	return h.bc.Subscribe()
}

// Aggregator merges several Exchange Feed Adapter streams for one pair into
// a single broadcast of Summary values (spec §4.2).
type Aggregator struct {
	pair domain.TradedPair
	log  logger.LoggerInterface
	bc   Broadcaster

	state *atomic.Int32
}

// Spawn returns a Handle immediately and does every source's Feed.Start
// call in the background (spec §5: the Registry's serialization point
// covers lookup/insert only, never the spawn itself, since Start blocks on
// a real connect-with-retry budget that can run tens of seconds). sources
// must be non-empty; the Registry enforces NoSourcesAvailable when none
// were configured. When every configured source's Start call eventually
// fails, the Handle's summaries channel closes with State StateFailed
// instead of StateTerminated, so the RPC layer can tell "never had a
// source" apart from "ran, then lost every source" (spec §4.3).
func Spawn(ctx context.Context, pair domain.TradedPair, sources []Feed, log logger.LoggerInterface, bc Broadcaster) *Handle {
	state := &atomic.Int32{}
	state.Store(int32(StateStarting))

	a := &Aggregator{pair: pair, log: log, bc: bc, state: state}

	go a.run(ctx, sources)

	return &Handle{pair: pair, bc: bc, state: state}
}

// arrivalEvent distinguishes the four things a per-source goroutine can
// report to run's merge loop.
type arrivalEvent int

const (
	eventStarted arrivalEvent = iota
	eventBook
	eventStreamClosed
	eventStartFailed
)

type arrival struct {
	sourceID string
	book     domain.ExchangeBook
	event    arrivalEvent
}

// run is the single-threaded merge loop. One goroutine per source calls
// Feed.Start and reports back over arrivals: eventStarted/eventStartFailed
// once the connect attempt resolves, then eventBook/eventStreamClosed as
// the resulting stream produces snapshots or closes. run maintains the
// latest-book-per-source map, recomputes and publishes the Summary on every
// book, and terminates once no source is pending and none is active —
// either because every Start call failed (StateFailed) or because every
// connected source later dropped (StateTerminated).
func (a *Aggregator) run(ctx context.Context, sources []Feed) {
	arrivals := make(chan arrival)
	var wg sync.WaitGroup

	send := func(arr arrival) bool {
		select {
		case arrivals <- arr:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, src := range sources {
		wg.Add(1)
		go func(src Feed) {
			defer wg.Done()
			stream, err := src.Start(ctx, a.pair)
			if err != nil {
				a.log.Warn(ctx, "exchange feed failed to start", "exchange", src.ID(), "pair", a.pair.String(), "error", err)
				send(arrival{sourceID: src.ID(), event: eventStartFailed})
				return
			}
			if !send(arrival{sourceID: src.ID(), event: eventStarted}) {
				return
			}
			for {
				book, ok := <-stream
				if !ok {
					send(arrival{sourceID: src.ID(), event: eventStreamClosed})
					return
				}
				if !send(arrival{sourceID: src.ID(), book: book, event: eventBook}) {
					return
				}
			}
		}(src)
	}

	go func() {
		wg.Wait()
		close(arrivals)
	}()

	latest := make(map[string]domain.ExchangeBook, len(sources))
	pending := len(sources)
	activeSources := 0
	everConnected := false

	defer func() {
		if everConnected {
			a.state.Store(int32(StateTerminated))
		} else {
			a.state.Store(int32(StateFailed))
		}
		a.bc.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case arr, chanOpen := <-arrivals:
			if !chanOpen {
				return
			}

			switch arr.event {
			case eventStartFailed:
				pending--
			case eventStarted:
				pending--
				activeSources++
				everConnected = true
			case eventStreamClosed:
				activeSources--
				delete(latest, arr.sourceID)
				a.log.Info(ctx, "exchange source terminated", "exchange", arr.sourceID, "pair", a.pair.String())
			case eventBook:
				latest[arr.sourceID] = arr.book
				a.state.Store(int32(StateRunning))
				a.bc.Publish(domain.Merge(latest))
			}

			if pending == 0 && activeSources == 0 {
				return
			}
		}
	}
}
