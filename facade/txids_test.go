package facade

import (
	"context"
	"testing"

	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

func TestAddressTxidsHeightRangeRejectsInvalidPolarity(t *testing.T) {
	client := newFakeClient()
	f := newTestFacade(t, client, Options{})

	start, end := int64(10), int64(20) // end > start: invalid per §9's adopted polarity
	_, err := f.AddressTxids(context.Background(), []string{"A"}, AddressTxidsOptions{Start: &start, End: &end})
	if err == nil {
		t.Fatal("expected RangeError for end > start, got nil")
	}
	if _, ok := err.(*rpcerrors.RangeError); !ok {
		t.Fatalf("error type = %T, want *rpcerrors.RangeError", err)
	}
}

func TestAddressTxidsHeightRangeSwapsForDaemon(t *testing.T) {
	client := newFakeClient()
	var gotOpts map[string]any
	client.on("getAddressTxids", func(args []any) (any, error) {
		gotOpts = args[1].(map[string]any)
		return []string{"tx1", "tx2"}, nil
	})
	f := newTestFacade(t, client, Options{})

	start, end := int64(20), int64(10)
	txids, err := f.AddressTxids(context.Background(), []string{"A"}, AddressTxidsOptions{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("AddressTxids: %v", err)
	}
	if len(txids) != 2 {
		t.Fatalf("txids = %v, want 2 entries", txids)
	}
	if gotOpts["start"] != end || gotOpts["end"] != start {
		t.Fatalf("daemon opts = %+v, want start=%d end=%d (swapped)", gotOpts, end, start)
	}
}

func TestAddressTxidsMempoolOnly(t *testing.T) {
	client := newFakeClient()
	client.on("getAddressMempool", func(args []any) (any, error) {
		return []mempoolDelta{{Txid: "t1"}, {Txid: "t1"}, {Txid: "t2"}}, nil
	})
	f := newTestFacade(t, client, Options{})

	txids, err := f.AddressTxids(context.Background(), []string{"A"}, AddressTxidsOptions{QueryMempoolOnly: true})
	if err != nil {
		t.Fatalf("AddressTxids: %v", err)
	}
	if len(txids) != 2 {
		t.Fatalf("txids = %v, want 2 deduplicated entries", txids)
	}
}

func TestAddressTxidsMergesConfirmedAndMempoolWithoutDuplicates(t *testing.T) {
	client := newFakeClient()
	client.on("getAddressTxids", func(args []any) (any, error) {
		return []string{"confirmed1", "shared"}, nil
	})
	client.on("getAddressMempool", func(args []any) (any, error) {
		return []mempoolDelta{{Txid: "shared"}, {Txid: "mempoolOnly"}}, nil
	})
	f := newTestFacade(t, client, Options{})

	txids, err := f.AddressTxids(context.Background(), []string{"A"}, AddressTxidsOptions{})
	if err != nil {
		t.Fatalf("AddressTxids: %v", err)
	}
	count := map[string]int{}
	for _, t := range txids {
		count[t]++
	}
	if count["shared"] != 1 {
		t.Fatalf("txids = %v, want \"shared\" to appear exactly once", txids)
	}
	if count["mempoolOnly"] != 1 || count["confirmed1"] != 1 {
		t.Fatalf("txids = %v, want both unique entries present", txids)
	}
}
