// Package zmqingest subscribes to the daemon's ZMQ push topics
// (hashblock, rawtx), de-duplicates messages, and fans them out to the
// subscription registry (SPEC_FULL.md §4.6). It is grounded on the
// teacher's core/peer_management.go Subscribe/Unsubscribe
// goroutine-per-topic channel pattern, transported over
// github.com/go-zeromq/zmq4 (pure Go, no cgo, matching the pack's
// general preference for pure-Go dependencies).
package zmqingest

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qtum-project/qtumnode-facade/internal/addressdecoder"
	"github.com/qtum-project/qtumnode-facade/internal/events"
	"github.com/qtum-project/qtumnode-facade/internal/lrucache"
	"github.com/qtum-project/qtumnode-facade/internal/subscription"
	"github.com/qtum-project/qtumnode-facade/internal/txwire"
)

// Socket is the ZMQ subscriber surface the ingest loop needs. The
// production implementation wraps *zmq4.Socket (see socket.go); tests
// use an in-memory fake.
type Socket interface {
	// Recv blocks for the next multipart message: [topic, body, seq].
	Recv(ctx context.Context) (topic string, body []byte, err error)
	Close() error
}

// SummaryResolver recomputes an address's balance summary, used to
// populate the addressbalance event payload. The query facade
// implements this.
type SummaryResolver interface {
	AddressSummaryForBalanceEvent(ctx context.Context, address string) (TotalReceived, TotalSpent, Balance, UnconfirmedBalance int64, err error)
}

// TipNotifier is informed of every raw hashblock payload before dedup,
// so the tip tracker can throttle/coalesce and decide whether this is a
// genuinely new tip. The ingest loop always calls this first for
// hashblock messages, per SPEC_FULL.md §4.6 ("Throttle tip updates...
// If already in the known-blocks dedup set, drop after tip update").
type TipNotifier interface {
	NotifyTip(ctx context.Context, hashHex string)
}

// Options configures the ingest loop.
type Options struct {
	ReArmDelay time.Duration // default 5s, after a monitor_error
}

func (o Options) withDefaults() Options {
	if o.ReArmDelay <= 0 {
		o.ReArmDelay = 5 * time.Second
	}
	return o
}

// Ingest runs the ZMQ receive loop for one socket.
type Ingest struct {
	opts     Options
	log      *logrus.Logger
	registry *subscription.Registry
	cache    *lrucache.Set
	decoder  addressdecoder.ScriptDecoder
	tip      TipNotifier
	resolver SummaryResolver
}

// New constructs an Ingest bound to its collaborators.
func New(opts Options, registry *subscription.Registry, cache *lrucache.Set, decoder addressdecoder.ScriptDecoder, tip TipNotifier, resolver SummaryResolver) *Ingest {
	return &Ingest{
		opts:     opts.withDefaults(),
		log:      logrus.New(),
		registry: registry,
		cache:    cache,
		decoder:  decoder,
		tip:      tip,
		resolver: resolver,
	}
}

// Run processes messages from sock until sock.Recv returns an error,
// and returns that error. It does not reconnect; callers wanting
// reconnect-with-backoff should use RunWithReconnect.
func (ig *Ingest) Run(ctx context.Context, sock Socket) error {
	for {
		topic, body, err := sock.Recv(ctx)
		if err != nil {
			return err
		}
		ig.handle(ctx, topic, body)
	}
}

// RunWithReconnect calls dial to obtain a fresh socket and runs Run in
// a loop, waiting ReArmDelay between reconnect attempts. Disconnects
// are logged, not fatal (SPEC_FULL.md §4.6).
func (ig *Ingest) RunWithReconnect(ctx context.Context, dial func(ctx context.Context) (Socket, error)) {
	for {
		if ctx.Err() != nil {
			return
		}
		sock, err := dial(ctx)
		if err != nil {
			ig.log.WithFields(logrus.Fields{"error": err}).Warn("zmq dial failed, will re-arm")
			ig.registry.Publish(events.TopicError, err)
			if !sleepOrDone(ctx, ig.opts.ReArmDelay) {
				return
			}
			continue
		}
		err = ig.Run(ctx, sock)
		_ = sock.Close()
		if ctx.Err() != nil {
			return
		}
		ig.log.WithFields(logrus.Fields{"error": err}).Warn("zmq socket disconnected, re-arming")
		ig.registry.Publish(events.TopicError, err)
		if !sleepOrDone(ctx, ig.opts.ReArmDelay) {
			return
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (ig *Ingest) handle(ctx context.Context, topic string, body []byte) {
	switch topic {
	case "rawtx":
		ig.handleRawTx(ctx, body)
	case "hashblock":
		ig.handleHashBlock(ctx, body)
	default:
		ig.log.WithFields(logrus.Fields{"topic": topic}).Warn("ignoring unknown zmq topic")
	}
}

func (ig *Ingest) handleRawTx(ctx context.Context, raw []byte) {
	txid := txwire.Txid(raw)
	if ig.cache.Dedup.KnownTxs.Has(txid) {
		return
	}
	ig.cache.Dedup.KnownTxs.Set(txid, struct{}{})

	ig.registry.Publish(events.TopicRawTransaction, hex.EncodeToString(raw))
	ig.registry.Publish(events.TopicTx, raw)

	tx, err := txwire.Decode(raw)
	if err != nil {
		ig.log.WithFields(logrus.Fields{"error": err, "txid": txid}).Warn("failed to decode raw transaction")
		ig.registry.Publish(events.TopicError, err)
		return
	}

	seen := make(map[string]bool)
	for _, out := range tx.Outputs {
		addr, ok := ig.decoder.ScriptToAddress(out.Script)
		if !ok || seen[addr] {
			continue
		}
		seen[addr] = true
		ig.dispatchAddress(ctx, addr, txid)
	}
	for _, in := range tx.Inputs {
		addr, ok := ig.decoder.ScriptToAddress(in.Script)
		if !ok || seen[addr] {
			continue
		}
		seen[addr] = true
		ig.dispatchAddress(ctx, addr, txid)
	}
}

func (ig *Ingest) dispatchAddress(ctx context.Context, addr, txid string) {
	ig.registry.PublishAddress(events.TopicAddressTxid, addr, events.AddressTxid{Address: addr, Txid: txid})

	if ig.registry.AddressSubscriberCount(events.TopicAddressBalance, addr) == 0 || ig.resolver == nil {
		return
	}
	received, spent, balance, unconfirmed, err := ig.resolver.AddressSummaryForBalanceEvent(ctx, addr)
	if err != nil {
		ig.log.WithFields(logrus.Fields{"error": err, "address": addr}).Warn("failed to resolve balance summary")
		ig.registry.Publish(events.TopicError, err)
		return
	}
	ig.registry.PublishAddress(events.TopicAddressBalance, addr, events.AddressBalance{
		Address:            addr,
		Txid:               txid,
		TotalReceived:      received,
		TotalSpent:         spent,
		Balance:            balance,
		UnconfirmedBalance: unconfirmed,
	})
}

func (ig *Ingest) handleHashBlock(ctx context.Context, raw []byte) {
	hashHex := txwire.HashHex(raw)
	if ig.tip != nil {
		ig.tip.NotifyTip(ctx, hashHex)
	}
	if ig.cache.Dedup.KnownBlocks.Has(hashHex) {
		return
	}
	ig.cache.Dedup.KnownBlocks.Set(hashHex, struct{}{})
	ig.registry.Publish(events.TopicHashBlock, hashHex)
	ig.registry.Publish(events.TopicBlock, hashHex)
}
