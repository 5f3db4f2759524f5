// Package rpcpool multiplexes JSON-RPC calls across a pool of backend
// daemon connections (SPEC_FULL.md §4.4). Round-robin dispatch is an
// explicit Next() call rather than the source's mutating property
// getter (REDESIGN FLAG adopted, see SPEC_FULL.md §9). It is grounded
// on the teacher's base_node.go (wrapping a collaborator interface) and
// cmd/cli/master_node.go (lazy package-level singleton guard), and
// transports calls over github.com/ethereum/go-ethereum/rpc, already an
// indirect dependency of the teacher.
package rpcpool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

// Client is the JSON-RPC call surface the pool requires of a backend
// connection. *rpc.Client satisfies this directly.
type Client interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// Backend is one configured daemon connection: an RPC client handle and
// the two booleans the supervisor tracks during startup.
type Backend struct {
	Client            Client
	Endpoint          string
	ReindexInProgress bool
	TipLoaded         bool
}

// DialBackend opens a new HTTP JSON-RPC connection to endpoint.
func DialBackend(ctx context.Context, endpoint string) (*Backend, error) {
	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, rpcerrors.NewTransientError(err)
	}
	return &Backend{Client: c, Endpoint: endpoint}, nil
}

// Pool round-robins calls across a fixed set of backends. The pool
// invariant (SPEC_FULL.md §3): it holds at least one backend once
// New returns successfully.
type Pool struct {
	backends []*Backend
	cursor   uint64 // advanced atomically by Next
}

// New constructs a pool over backends, which must be non-empty.
func New(backends []*Backend) (*Pool, error) {
	if len(backends) == 0 {
		return nil, rpcerrors.NewSupervisorError("rpc pool requires at least one backend")
	}
	return &Pool{backends: backends}, nil
}

// Next returns the next backend in round-robin order, advancing the
// cursor as an explicit side effect of the call (not of merely reading
// it).
func (p *Pool) Next() *Backend {
	i := atomic.AddUint64(&p.cursor, 1) - 1
	return p.backends[i%uint64(len(p.backends))]
}

// Len reports the number of configured backends.
func (p *Pool) Len() int { return len(p.backends) }

// Backends returns a copy of the configured backend list, in
// round-robin order starting from index 0 (used by the supervisor to
// iterate every backend, and by tests).
func (p *Pool) Backends() []*Backend {
	out := make([]*Backend, len(p.backends))
	copy(out, p.backends)
	return out
}

// Call issues method against the next backend in rotation, with no
// retry. Use TryAll for the retrying variant.
func (p *Pool) Call(ctx context.Context, result any, method string, args ...any) error {
	return p.Next().Client.CallContext(ctx, result, method, args...)
}

// StoppingFunc reports whether the host is shutting down; pending
// retries observe it and abort with rpcerrors.ErrStopping.
type StoppingFunc func() bool

// TryAllOption configures TryAll.
type TryAllOption func(*tryAllConfig)

type tryAllConfig struct {
	attempts int
	interval time.Duration
	stopping StoppingFunc
}

// WithAttempts overrides the default attempt count (1 per backend, this
// sets the total across all backends).
func WithAttempts(n int) TryAllOption {
	return func(c *tryAllConfig) { c.attempts = n }
}

// WithInterval overrides the default inter-attempt delay.
func WithInterval(d time.Duration) TryAllOption {
	return func(c *tryAllConfig) { c.interval = d }
}

// WithStoppingCheck installs a StoppingFunc that aborts retries early.
func WithStoppingCheck(f StoppingFunc) TryAllOption {
	return func(c *tryAllConfig) { c.stopping = f }
}

const (
	defaultTryAllInterval = time.Second
)

// TryAll runs op against successive backends (via Next, so round-robin
// advances on every attempt, including for TryAll) up to the configured
// attempt count, separated by the configured interval. Success
// short-circuits; failures do not remove backends from rotation
// (SPEC_FULL.md §4.4). By default it attempts once per configured
// backend.
//
// Every failure is classified through rpcerrors.Classify (SPEC_FULL.md
// §7): a semantic daemon error (any code other than -28) is surfaced
// immediately as a non-retried *rpcerrors.RPCError rather than retried
// against the next backend, since retrying an invalid-address or
// out-of-range request cannot change the outcome. Only a transient
// failure — code -28 (still warming up) or a network-level error with
// no code at all — continues the retry loop.
func (p *Pool) TryAll(ctx context.Context, op func(ctx context.Context, b *Backend) error, opts ...TryAllOption) error {
	cfg := tryAllConfig{attempts: len(p.backends), interval: defaultTryAllInterval}
	for _, o := range opts {
		o(&cfg)
	}

	var lastErr error
	for attempt := 0; attempt < cfg.attempts; attempt++ {
		if cfg.stopping != nil && cfg.stopping() {
			return rpcerrors.ErrStopping
		}
		b := p.Next()
		err := op(ctx, b)
		if err == nil {
			return nil
		}
		classified := rpcerrors.Classify(err)
		if _, transient := classified.(*rpcerrors.TransientRPCError); !transient {
			return classified
		}
		lastErr = classified
		if attempt < cfg.attempts-1 {
			if !sleepOrStop(ctx, cfg.interval, cfg.stopping) {
				return rpcerrors.ErrStopping
			}
		}
	}
	return lastErr
}

// sleepOrStop waits for d, returning false early if ctx is cancelled or
// stopping reports true.
func sleepOrStop(ctx context.Context, d time.Duration, stopping StoppingFunc) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case <-ticker.C:
			if stopping != nil && stopping() {
				return false
			}
		}
	}
}
