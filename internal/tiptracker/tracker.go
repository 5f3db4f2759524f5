// Package tiptracker maintains the current chain height and drives
// tip-scoped cache invalidation plus the tip/synced events
// (SPEC_FULL.md §4.7). Its single coalescing update path is grounded on
// the teacher's core/chain_fork_manager.go WithFields tip-change
// logging convention; the debounce itself uses only the standard
// library's time.Timer, matching the pack (no debounce library appears
// anywhere in it).
package tiptracker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qtum-project/qtumnode-facade/internal/events"
	"github.com/qtum-project/qtumnode-facade/internal/lrucache"
	"github.com/qtum-project/qtumnode-facade/internal/metrics"
	"github.com/qtum-project/qtumnode-facade/internal/subscription"
)

// HeightFetcher fetches the height for the current tip hash, typically
// getblock(hash).height or getblockchaininfo via the RPC pool.
type HeightFetcher func(ctx context.Context, hash string) (uint64, error)

// ProgressFetcher fetches the daemon's current verificationprogress, a
// float in [0,1].
type ProgressFetcher func(ctx context.Context) (float64, error)

// ZmqSubscriber attaches the ZMQ subscriptions once initial sync has
// progressed far enough, per SPEC_FULL.md §4.7's
// checkSyncedAndSubscribeZmqEvents.
type ZmqSubscriber func(ctx context.Context)

// Options configures the tracker's timing (SPEC_FULL.md §6).
type Options struct {
	QuietWindow          time.Duration // default 1s
	TipUpdateInterval    time.Duration // default 15s
	ZmqSubscribeProgress float64       // default 0.9999
}

func (o Options) withDefaults() Options {
	if o.QuietWindow <= 0 {
		o.QuietWindow = time.Second
	}
	if o.TipUpdateInterval <= 0 {
		o.TipUpdateInterval = 15 * time.Second
	}
	if o.ZmqSubscribeProgress <= 0 {
		o.ZmqSubscribeProgress = 0.9999
	}
	return o
}

// Tracker coalesces tip updates into a single apply path.
type Tracker struct {
	opts     Options
	log      *logrus.Logger
	registry *subscription.Registry
	cache    *lrucache.Set
	height   HeightFetcher
	progress ProgressFetcher

	mu        sync.Mutex
	tipHash   string
	tipHeight uint64
	timer     *time.Timer
	pending   string
	synced    bool

	metrics *metrics.Metrics
}

// SetMetrics attaches m so every applied tip updates its height gauge.
func (t *Tracker) SetMetrics(m *metrics.Metrics) {
	t.mu.Lock()
	t.metrics = m
	t.mu.Unlock()
}

// New constructs a Tracker. height and progress must be non-nil.
func New(opts Options, registry *subscription.Registry, cache *lrucache.Set, height HeightFetcher, progress ProgressFetcher) *Tracker {
	return &Tracker{
		opts:     opts.withDefaults(),
		log:      logrus.New(),
		registry: registry,
		cache:    cache,
		height:   height,
		progress: progress,
	}
}

// TipHash returns the last applied tip hash.
func (t *Tracker) TipHash() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tipHash
}

// TipHeight returns the last applied tip height.
func (t *Tracker) TipHeight() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tipHeight
}

// NotifyTip implements zmqingest.TipNotifier. The first message since
// the tracker went idle fires almost immediately; any message that
// arrives while a fire is still pending instead rearms the timer for a
// full QuietWindow and replaces the pending hash, so a rapid burst
// collapses into a single apply of the last hash in the burst.
func (t *Tracker) NotifyTip(ctx context.Context, hashHex string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = hashHex
	delay := time.Duration(0)
	if t.timer != nil {
		t.timer.Stop()
		delay = t.opts.QuietWindow
	}
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		h := t.pending
		t.timer = nil
		t.mu.Unlock()
		t.apply(ctx, h)
	})
}

// apply runs the single coalescing update path (SPEC_FULL.md §4.7).
func (t *Tracker) apply(ctx context.Context, hashHex string) {
	t.mu.Lock()
	changed := hashHex != t.tipHash
	if changed {
		t.tipHash = hashHex
	}
	t.mu.Unlock()
	if !changed {
		return
	}

	t.cache.ResetTipScoped()

	height, err := t.height(ctx, hashHex)
	if err != nil {
		t.log.WithFields(logrus.Fields{"error": err, "hash": hashHex}).Warn("failed to fetch height for new tip")
		t.registry.Publish(events.TopicError, err)
		return
	}

	t.mu.Lock()
	heightChanged := height != t.tipHeight
	t.tipHeight = height
	m := t.metrics
	t.mu.Unlock()

	if m != nil {
		m.TipHeight.Set(float64(height))
	}

	if heightChanged {
		t.log.WithFields(logrus.Fields{"height": height, "hash": hashHex}).Info("tip advanced")
		t.registry.Publish(events.TopicTip, height)
	}

	t.maybeEmitSynced(ctx, height)
}

func (t *Tracker) maybeEmitSynced(ctx context.Context, height uint64) {
	t.mu.Lock()
	alreadySynced := t.synced
	t.mu.Unlock()
	if alreadySynced || t.progress == nil {
		return
	}
	p, err := t.progress(ctx)
	if err != nil {
		return
	}
	if roundedPercent(p) >= 100 {
		t.mu.Lock()
		t.synced = true
		t.mu.Unlock()
		t.registry.Publish(events.TopicSynced, height)
	}
}

func roundedPercent(progress float64) int {
	return int(progress*100 + 0.5)
}

// WaitUntilSyncedThenSubscribe polls ProgressFetcher every
// TipUpdateInterval until it reaches ZmqSubscribeProgress, then invokes
// subscribe exactly once. This is
// checkSyncedAndSubscribeZmqEvents (SPEC_FULL.md §4.7): it prevents
// subscribers from drinking the firehose during initial block download.
func (t *Tracker) WaitUntilSyncedThenSubscribe(ctx context.Context, subscribe ZmqSubscriber) error {
	ticker := time.NewTicker(t.opts.TipUpdateInterval)
	defer ticker.Stop()
	for {
		p, err := t.progress(ctx)
		if err == nil && p >= t.opts.ZmqSubscribeProgress {
			subscribe(ctx)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
