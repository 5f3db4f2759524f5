package facade

import (
	"context"
	"testing"
)

func TestAddressSummaryMergesSubqueries(t *testing.T) {
	client := newFakeClient()
	client.on("getAddressTxids", func(args []any) (any, error) {
		return []string{"t1", "t2"}, nil
	})
	client.on("getAddressBalance", func(args []any) (any, error) {
		return rawBalance{Balance: 4000, Received: 10000}, nil
	})
	client.on("getAddressMempool", func(args []any) (any, error) {
		return []mempoolDelta{{Txid: "t3", Satoshis: 500}}, nil
	})

	f := newTestFacade(t, client, Options{})
	summary, err := f.AddressSummary(context.Background(), "A", false)
	if err != nil {
		t.Fatalf("AddressSummary: %v", err)
	}
	if summary.Appearances != 2 {
		t.Fatalf("appearances = %d, want 2", summary.Appearances)
	}
	if summary.Balance != 4000 || summary.TotalReceived != 10000 || summary.TotalSpent != 6000 {
		t.Fatalf("summary = %+v, want balance=4000 received=10000 spent=6000", summary)
	}
	if summary.UnconfirmedBalance != 500 || summary.UnconfirmedAppearances != 1 {
		t.Fatalf("summary = %+v, want unconfirmedBalance=500 unconfirmedAppearances=1", summary)
	}
	if len(summary.Txids) != 2 {
		t.Fatalf("txids = %v, want 2 entries when noTxList=false", summary.Txids)
	}
}

func TestAddressSummaryNoTxListOmitsTxids(t *testing.T) {
	client := newFakeClient()
	client.on("getAddressTxids", func(args []any) (any, error) {
		return []string{"t1"}, nil
	})
	client.on("getAddressBalance", func(args []any) (any, error) {
		return rawBalance{Balance: 1, Received: 1}, nil
	})
	client.on("getAddressMempool", func(args []any) (any, error) {
		return []mempoolDelta{}, nil
	})

	f := newTestFacade(t, client, Options{})
	summary, err := f.AddressSummary(context.Background(), "A", true)
	if err != nil {
		t.Fatalf("AddressSummary: %v", err)
	}
	if summary.Txids != nil {
		t.Fatalf("txids = %v, want nil when noTxList=true", summary.Txids)
	}
}

func TestGetAddressBalanceRejectsMultipleAddresses(t *testing.T) {
	client := newFakeClient()
	f := newTestFacade(t, client, Options{})

	_, err := f.GetAddressBalance(context.Background(), []string{"A", "B"})
	if err == nil {
		t.Fatal("expected RangeError for multi-address input, got nil")
	}
}

func TestAddressSummaryForBalanceEventMatchesSummary(t *testing.T) {
	client := newFakeClient()
	client.on("getAddressTxids", func(args []any) (any, error) { return []string{}, nil })
	client.on("getAddressBalance", func(args []any) (any, error) {
		return rawBalance{Balance: 200, Received: 500}, nil
	})
	client.on("getAddressMempool", func(args []any) (any, error) { return []mempoolDelta{}, nil })

	f := newTestFacade(t, client, Options{})
	received, spent, balance, unconfirmed, err := f.AddressSummaryForBalanceEvent(context.Background(), "A")
	if err != nil {
		t.Fatalf("AddressSummaryForBalanceEvent: %v", err)
	}
	if received != 500 || spent != 300 || balance != 200 || unconfirmed != 0 {
		t.Fatalf("got (%d, %d, %d, %d), want (500, 300, 200, 0)", received, spent, balance, unconfirmed)
	}
}
