package facade

import (
	"context"
	"strings"

	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

// AddressUnspentOutputs returns every unspent output for addrs,
// confirmed UTXOs overlaid with mempool deltas (SPEC_FULL.md §4.8's
// "Address UTXOs with mempool overlay"). Pass queryMempool=false to
// return confirmed UTXOs only.
func (f *Facade) AddressUnspentOutputs(ctx context.Context, addrs []string, queryMempool bool) ([]UTXO, error) {
	confirmed, err := f.confirmedUTXOs(ctx, addrs)
	if err != nil {
		return nil, err
	}
	if !queryMempool {
		return confirmed, nil
	}

	deltas, err := f.addressMempool(ctx, addrs)
	if err != nil {
		return nil, err
	}

	confirmedSet := make(map[outpoint]bool, len(confirmed))
	for _, u := range confirmed {
		confirmedSet[outpoint{Txid: u.Txid, OutputIndex: u.OutputIndex}] = true
	}

	spent := make(map[outpoint]bool)
	var mempoolNew []UTXO
	for _, d := range deltas {
		if d.isSpend() {
			spent[outpoint{Txid: d.PrevTxid, OutputIndex: d.PrevOut}] = true
			continue
		}
		op := outpoint{Txid: d.Txid, OutputIndex: d.Index}
		if confirmedSet[op] {
			continue
		}
		mempoolNew = append(mempoolNew, UTXO{
			Address:     d.Address,
			Txid:        d.Txid,
			OutputIndex: d.Index,
			Satoshis:    d.Satoshis,
			Height:      0,
		})
	}

	reverseUTXOs(mempoolNew)
	merged := append(mempoolNew, confirmed...)

	out := merged[:0]
	for _, u := range merged {
		if spent[outpoint{Txid: u.Txid, OutputIndex: u.OutputIndex}] {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func reverseUTXOs(s []UTXO) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// addressKey joins addrs into the cache key getAddressUtxos/getAddressMempool
// results are stored under (SPEC_FULL.md §4.8: "cached by the
// comma-joined address key").
func addressKey(addrs []string) string { return strings.Join(addrs, ",") }

func (f *Facade) confirmedUTXOs(ctx context.Context, addrs []string) ([]UTXO, error) {
	key := addressKey(addrs)
	if cached, ok := f.cache.Tip.UTXOsByAddress.Get(key); ok {
		return cached.([]UTXO), nil
	}

	var raw []rawUTXO
	if err := f.call(ctx, &raw, "getAddressUtxos", addrs); err != nil {
		return nil, err
	}
	out := make([]UTXO, len(raw))
	for i, u := range raw {
		out[i] = UTXO{
			Address:     u.Address,
			Txid:        u.Txid,
			OutputIndex: u.OutputIndex,
			Script:      u.Script,
			Satoshis:    u.Satoshis,
			Height:      u.Height,
			IsStake:     u.IsStake,
		}
	}
	f.cache.Tip.UTXOsByAddress.Set(key, out)
	return out, nil
}

// SpentInfo reports which transaction spent the output identified by
// (txid, index), or nil if the daemon has no record of it. Code -5 (not
// found) is the expected common case for an unspent or unknown output,
// not an error (SPEC_FULL.md §7). Not cached: spent status is
// tip-dependent and not named in either cache group.
func (f *Facade) SpentInfo(ctx context.Context, txid string, index int) (*SpentInfo, error) {
	var raw struct {
		Txid   string `json:"txid"`
		Index  int    `json:"index"`
		Height int64  `json:"height"`
	}
	err := f.call(ctx, &raw, "getSpentInfo", map[string]any{"txid": txid, "index": index})
	if err != nil {
		if rpcerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &SpentInfo{Txid: raw.Txid, Index: raw.Index, Height: raw.Height}, nil
}

func (f *Facade) addressMempool(ctx context.Context, addrs []string) ([]mempoolDelta, error) {
	var deltas []mempoolDelta
	if err := f.call(ctx, &deltas, "getAddressMempool", addrs); err != nil {
		return nil, err
	}
	return deltas, nil
}
