package facade

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

// rawBalance mirrors the daemon's getAddressBalance response. The
// source resolved balance through getaccountaddress -> getbalance,
// treating an address as if it were a wallet account label; this
// facade calls the address-index getAddressBalance RPC directly
// instead (SPEC_FULL.md §9: the double indirection is not preserved).
type rawBalance struct {
	Balance  int64 `json:"balance"`
	Received int64 `json:"received"`
}

// rawMempoolOverview mirrors getAddressMempool's aggregate shape used
// for the unconfirmed half of an address summary.
type rawMempoolOverview struct {
	Appearances int64 `json:"appearances"`
	Balance     int64 `json:"balance"`
}

// AddressSummary merges confirmed txids, balance, and a mempool
// overview into one record via a parallel fan-out over the three
// subqueries (SPEC_FULL.md §4.8 "Address summary"). noTxList omits
// Txids and consults a dedicated cache entry.
func (f *Facade) AddressSummary(ctx context.Context, address string, noTxList bool) (*AddressSummary, error) {
	cacheKey := address
	if noTxList {
		cacheKey = address + "|notxlist"
	}
	if cached, ok := f.cache.Tip.AddressSummary.Get(cacheKey); ok {
		s := cached.(AddressSummary)
		return &s, nil
	}

	var txids []string
	var bal rawBalance
	var overview rawMempoolOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := f.confirmedTxids(gctx, []string{address})
		if err != nil {
			return err
		}
		txids = t
		return nil
	})
	g.Go(func() error {
		b, err := f.addressBalance(gctx, address)
		if err != nil {
			return err
		}
		bal = b
		return nil
	})
	g.Go(func() error {
		deltas, err := f.addressMempool(gctx, []string{address})
		if err != nil {
			return err
		}
		overview = summarizeMempool(deltas)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := AddressSummary{
		Appearances:            int64(len(txids)),
		TotalReceived:          bal.Received,
		TotalSpent:             bal.Received - bal.Balance,
		Balance:                bal.Balance,
		UnconfirmedAppearances: overview.Appearances,
		UnconfirmedBalance:     overview.Balance,
	}
	if !noTxList {
		summary.Txids = txids
	}

	f.cache.Tip.AddressSummary.Set(cacheKey, summary)
	return &summary, nil
}

// addressBalance fetches and caches a single address's confirmed
// balance/received pair independently of the combined AddressSummary
// cache entry, so a summary cache miss doesn't force a redundant
// getAddressBalance call when the balance alone was already fetched
// (SPEC_FULL.md §3 "balance-by-address").
func (f *Facade) addressBalance(ctx context.Context, address string) (rawBalance, error) {
	if cached, ok := f.cache.Tip.BalanceByAddress.Get(address); ok {
		return cached.(rawBalance), nil
	}
	var bal rawBalance
	if err := f.call(ctx, &bal, "getAddressBalance", []string{address}); err != nil {
		return rawBalance{}, err
	}
	f.cache.Tip.BalanceByAddress.Set(address, bal)
	return bal, nil
}

func summarizeMempool(deltas []mempoolDelta) rawMempoolOverview {
	seen := make(map[string]bool, len(deltas))
	var overview rawMempoolOverview
	for _, d := range deltas {
		if !seen[d.Txid] {
			seen[d.Txid] = true
			overview.Appearances++
		}
		overview.Balance += d.Satoshis
	}
	return overview
}

// AddressSummaryForBalanceEvent implements zmqingest.SummaryResolver:
// it recomputes the balance fields published on an addressbalance
// event. Single-address only (SPEC_FULL.md §9 binding decision on the
// source's multi-address getAddressBalance bug).
func (f *Facade) AddressSummaryForBalanceEvent(ctx context.Context, address string) (totalReceived, totalSpent, balance, unconfirmedBalance int64, err error) {
	s, err := f.AddressSummary(ctx, address, true)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return s.TotalReceived, s.TotalSpent, s.Balance, s.UnconfirmedBalance, nil
}

// GetAddressBalance returns the address summary (without the txid list)
// for a single address. Multi-address input is rejected with a RangeError
// rather than silently invoking a callback multiple times, as the
// source did (SPEC_FULL.md §9).
func (f *Facade) GetAddressBalance(ctx context.Context, addrs []string) (*AddressSummary, error) {
	if len(addrs) != 1 {
		return nil, rpcerrors.NewRangeError("getAddressBalance: exactly one address required, got %d", len(addrs))
	}
	return f.AddressSummary(ctx, addrs[0], true)
}
