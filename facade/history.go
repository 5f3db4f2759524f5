package facade

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

// AddressHistory resolves the paginated, per-transaction history of
// addrs between [from, to) (SPEC_FULL.md §4.8 "Address history"): the
// confirmed+mempool txid list, sliced to the page, then each
// transaction resolved in parallel at TransactionConcurrency.
func (f *Facade) AddressHistory(ctx context.Context, addrs []string, from, to int64) ([]HistoryEntry, error) {
	if to-from > int64(f.opts.MaxTransactionHistory) {
		return nil, rpcerrors.NewRangeError("address history: to-from (%d) exceeds maxTransactionHistory (%d)", to-from, f.opts.MaxTransactionHistory)
	}
	if to < from {
		return nil, rpcerrors.NewRangeError("address history: to (%d) must be >= from (%d)", to, from)
	}

	txids, err := f.AddressTxids(ctx, addrs, AddressTxidsOptions{})
	if err != nil {
		return nil, err
	}
	if from > int64(len(txids)) {
		return nil, nil
	}
	if to > int64(len(txids)) {
		to = int64(len(txids))
	}
	page := txids[from:to]

	addrSet := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		addrSet[a] = true
	}

	entries := make([]HistoryEntry, len(page))
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(f.opts.TransactionConcurrency))
	var mu sync.Mutex

	for i, txid := range page {
		i, txid := i, txid
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			dt, err := f.DetailedTransaction(gctx, txid)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			entries[i] = historyEntryFor(dt, addrSet, f.currentHeight())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *Facade) currentHeight() int64 {
	if f.height == nil {
		return 0
	}
	return int64(f.height.TipHeight())
}

// historyEntryFor computes dt's net satoshi delta against addrSet and
// the indexes of the inputs/outputs that touch it.
func historyEntryFor(dt *DetailedTransaction, addrSet map[string]bool, chainHeight int64) HistoryEntry {
	var net int64
	var inputIdx, outputIdx []int
	for i, in := range dt.Inputs {
		if addrSet[in.Address] {
			net -= in.Satoshis
			inputIdx = append(inputIdx, i)
		}
	}
	for i, out := range dt.Outputs {
		if addrSet[out.Address] {
			net += out.Satoshis
			outputIdx = append(outputIdx, i)
		}
	}

	conf, err := confirmations(chainHeight, dt.Height)
	if err != nil {
		conf = dt.Confirmations
	}

	return HistoryEntry{
		Txid:          dt.Txid,
		Height:        dt.Height,
		Confirmations: conf,
		Satoshis:      net,
		Inputs:        inputIdx,
		Outputs:       outputIdx,
	}
}
