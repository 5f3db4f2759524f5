// Package facade implements the query facade (SPEC_FULL.md §4.8): the
// cache lookup -> RPC call -> transform -> cache store -> return
// skeleton every high-level query follows, plus the mempool-overlay and
// pagination logic layered on top of it. It is grounded on the
// teacher's core/account_and_balance_operations.go (thin
// mutex-protected wrapper over a single collaborator, one exported
// method per operation, fmt.Errorf error wrapping) and
// core/ledger.go's structured logrus.WithFields logging around
// balance-affecting operations.
package facade

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/qtum-project/qtumnode-facade/internal/lrucache"
	"github.com/qtum-project/qtumnode-facade/internal/metrics"
	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
	"github.com/qtum-project/qtumnode-facade/internal/rpcpool"
	"github.com/qtum-project/qtumnode-facade/internal/subscription"
)

// Options configures the facade's documented limits (SPEC_FULL.md §6).
type Options struct {
	MaxTxids               int // default 1000
	MaxTransactionHistory  int // default 50
	MaxAddressesQuery      int // default 10000
	TransactionConcurrency int // default 5
}

func (o Options) withDefaults() Options {
	if o.MaxTxids <= 0 {
		o.MaxTxids = 1000
	}
	if o.MaxTransactionHistory <= 0 {
		o.MaxTransactionHistory = 50
	}
	if o.MaxAddressesQuery <= 0 {
		o.MaxAddressesQuery = 10000
	}
	if o.TransactionConcurrency <= 0 {
		o.TransactionConcurrency = 5
	}
	return o
}

// HeightProvider reports the current confirmed chain height, satisfied
// by *internal/tiptracker.Tracker. Kept as a narrow interface so this
// package never imports tiptracker directly.
type HeightProvider interface {
	TipHeight() uint64
}

// Facade answers high-level blockchain/address queries, consulting the
// cache before the RPC pool and overlaying mempool data where
// documented.
type Facade struct {
	opts     Options
	log      *logrus.Logger
	pool     *rpcpool.Pool
	cache    *lrucache.Set
	registry *subscription.Registry
	height   HeightProvider
	metrics  *metrics.Metrics
	sf       singleflight.Group
}

// New constructs a Facade bound to its collaborators.
func New(opts Options, pool *rpcpool.Pool, cache *lrucache.Set, registry *subscription.Registry, height HeightProvider) *Facade {
	return &Facade{
		opts:     opts.withDefaults(),
		log:      logrus.New(),
		pool:     pool,
		cache:    cache,
		registry: registry,
		height:   height,
	}
}

// SetMetrics attaches m so subsequent calls record RPC outcomes. Safe
// to call once during startup wiring; a nil facade metrics field simply
// skips instrumentation.
func (f *Facade) SetMetrics(m *metrics.Metrics) { f.metrics = m }

// call issues method against the pool with the default retry policy,
// wrapping transport failures so callers only ever see the taxonomy
// from internal/rpcerrors.
func (f *Facade) call(ctx context.Context, result any, method string, args ...any) error {
	err := f.pool.TryAll(ctx, func(ctx context.Context, b *rpcpool.Backend) error {
		return b.Client.CallContext(ctx, result, method, args...)
	})
	if f.metrics != nil {
		f.metrics.ObserveRPC(method, err)
	}
	return err
}

// confirmations implements the confirmations helper (SPEC_FULL.md
// §4.8): max(0, height - txHeight + 1), requiring a known chain height.
func confirmations(height, txHeight int64) (int64, error) {
	if height <= 0 {
		return 0, rpcerrors.NewRangeError("confirmations: chain height not yet known")
	}
	if txHeight <= 0 {
		return 0, nil
	}
	c := height - txHeight + 1
	if c < 0 {
		c = 0
	}
	return c, nil
}

// looksNumeric reports whether s should be resolved via getBlockHash
// rather than treated as a block hash directly: an integer, or a
// digit-only string shorter than 40 characters (SPEC_FULL.md §4.8,
// §8's `_maybeGetBlockHash` boundary case).
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	if len(s) >= 40 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// maybeGetBlockHash resolves arg to a block hash, routing numeric-looking
// arguments through getBlockHash and passing the rest through unchanged.
func (f *Facade) maybeGetBlockHash(ctx context.Context, arg string) (string, error) {
	if !looksNumeric(arg) {
		return arg, nil
	}
	height, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "", rpcerrors.NewRangeError("invalid block height %q", arg)
	}
	var hash string
	if err := f.call(ctx, &hash, "getBlockHash", height); err != nil {
		return "", err
	}
	return hash, nil
}
