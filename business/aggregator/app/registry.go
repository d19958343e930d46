package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/apperror"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
)

// AdapterFactory builds the Feed instances for one pair. It is called with
// the registry lock held (see Registry.GetOrStart), so it must not itself
// call back into the registry.
type AdapterFactory func(pair domain.TradedPair) []Feed

// BroadcasterFactory builds a fresh Broadcaster for a newly spawned
// aggregator. Exists so tests can substitute an instrumented broadcaster
// without the registry depending on the broadcast infra package directly.
type BroadcasterFactory func() Broadcaster

// Registry keeps one Aggregator per TradedPair alive and shares it among
// subscribers (spec §4.3). GetOrStart is linearizable on the pair key: under
// a stampede of concurrent calls for the same pair, exactly one Aggregator
// is spawned.
type Registry struct {
	log      logger.LoggerInterface
	adapters AdapterFactory
	newBC    BroadcasterFactory

	mu      sync.Mutex
	handles map[domain.TradedPair]*Handle
}

// NewRegistry creates an empty Registry. adapters constructs the Feed set
// for a pair on first request; newBC constructs the Broadcaster each
// spawned Aggregator publishes through.
func NewRegistry(log logger.LoggerInterface, adapters AdapterFactory, newBC BroadcasterFactory) *Registry {
	return &Registry{
		log:      log,
		adapters: adapters,
		newBC:    newBC,
		handles:  make(map[domain.TradedPair]*Handle),
	}
}

// GetOrStart returns the running Aggregator's Handle for pair, spawning one
// on first request. If no sources are configured for pair at all, it
// returns NoSourcesAvailable synchronously and does not cache a handle.
// GetOrStart never blocks on a Feed's Start call: Spawn launches those in
// the background and returns immediately (spec §5), so a slow or down
// exchange for one pair never stalls lookups for any other pair. If every
// configured source's Start call later fails, or every connected source
// eventually drops, the Handle's summaries channel closes (State
// StateFailed or StateTerminated respectively) — internal/rpcserver maps
// StateFailed onto NoSourcesAvailable and StateTerminated onto a clean end
// of stream for a still-pending subscriber. A
// cached Handle in either terminal state is not reused on the next
// GetOrStart call — a fresh Aggregator is spawned in its place — otherwise
// the pair would be stuck forever after a transient or permanent failure.
func (r *Registry) GetOrStart(ctx context.Context, pair domain.TradedPair) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[pair]; ok && h.State() != StateTerminated && h.State() != StateFailed {
		return h, nil
	}

	sources := r.adapters(pair)
	if len(sources) == 0 {
		return nil, apperror.New(apperror.CodeNoSourcesAvailable,
			apperror.WithContext(fmt.Sprintf("no exchange sources configured for %s", pair)))
	}

	h := Spawn(ctx, pair, sources, r.log, r.newBC())
	r.handles[pair] = h
	return h, nil
}

// Count returns the number of live registry entries, used by health checks
// and tests.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
