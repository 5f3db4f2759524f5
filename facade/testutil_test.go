package facade

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qtum-project/qtumnode-facade/internal/lrucache"
	"github.com/qtum-project/qtumnode-facade/internal/rpcpool"
	"github.com/qtum-project/qtumnode-facade/internal/subscription"
)

// fakeClient replays a fixed handler per RPC method, round-tripping
// through JSON the way the real *rpc.Client would.
type fakeClient struct {
	handlers map[string]func(args []any) (any, error)
	calls    map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]func(args []any) (any, error)), calls: make(map[string]int)}
}

func (c *fakeClient) on(method string, h func(args []any) (any, error)) {
	c.handlers[method] = h
}

func (c *fakeClient) CallContext(ctx context.Context, result any, method string, args ...any) error {
	c.calls[method]++
	h, ok := c.handlers[method]
	if !ok {
		return fmt.Errorf("fakeClient: no handler for %s", method)
	}
	resp, err := h(args)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func newTestFacade(t interface{ Helper() }, client *fakeClient, opts Options) *Facade {
	t.Helper()
	pool, err := rpcpool.New([]*rpcpool.Backend{{Client: client, Endpoint: "test"}})
	if err != nil {
		panic(err)
	}
	cache := lrucache.NewSet(lrucache.Capacities{})
	reg := subscription.New(nil)
	return New(opts, pool, cache, reg, nil)
}
