package facade

import (
	"context"

	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

// AddressTxids returns the txids touching addrs, confirmed and
// mempool by default (SPEC_FULL.md §4.8 "Address txids"). opts
// selects mempool-only or a confirmed height range.
func (f *Facade) AddressTxids(ctx context.Context, addrs []string, opts AddressTxidsOptions) ([]string, error) {
	if opts.QueryMempoolOnly {
		return f.mempoolTxids(ctx, addrs)
	}
	if opts.Start != nil && opts.End != nil {
		return f.heightRangeTxids(ctx, addrs, *opts.Start, *opts.End)
	}

	confirmed, err := f.confirmedTxids(ctx, addrs)
	if err != nil {
		return nil, err
	}
	mempool, err := f.mempoolTxids(ctx, addrs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(confirmed))
	for _, t := range confirmed {
		seen[t] = true
	}
	out := append([]string(nil), mempool...)
	for i := 0; i < len(out); {
		if seen[out[i]] {
			out = append(out[:i], out[i+1:]...)
			continue
		}
		i++
	}
	return append(out, confirmed...), nil
}

func (f *Facade) confirmedTxids(ctx context.Context, addrs []string) ([]string, error) {
	key := addressKey(addrs)
	if cached, ok := f.cache.Tip.TxidsByAddress.Get(key); ok {
		return cached.([]string), nil
	}
	var txids []string
	if err := f.call(ctx, &txids, "getAddressTxids", addrs, map[string]any{}); err != nil {
		return nil, err
	}
	f.cache.Tip.TxidsByAddress.Set(key, txids)
	return txids, nil
}

func (f *Facade) mempoolTxids(ctx context.Context, addrs []string) ([]string, error) {
	deltas, err := f.addressMempool(ctx, addrs)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(deltas))
	out := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if seen[d.Txid] {
			continue
		}
		seen[d.Txid] = true
		out = append(out, d.Txid)
	}
	return out, nil
}

// heightRangeTxids implements `_getHeightRangeQuery`: the daemon orders
// results most-recent-first, so a valid caller-supplied range requires
// start >= end (SPEC_FULL.md §9's binding resolution of the source's
// polarity ambiguity). The request is translated into the daemon's own
// {start: end, end: start} shape.
func (f *Facade) heightRangeTxids(ctx context.Context, addrs []string, start, end int64) ([]string, error) {
	if start < end {
		return nil, rpcerrors.NewRangeError("height range: end (%d) expected to be <= start (%d)", end, start)
	}
	var txids []string
	if err := f.call(ctx, &txids, "getAddressTxids", addrs, map[string]any{
		"start": end,
		"end":   start,
	}); err != nil {
		return nil, err
	}
	return txids, nil
}
