package facade

import (
	"context"
	"encoding/json"
	"testing"
)

func TestDetailedTransactionDerivesFee(t *testing.T) {
	client := newFakeClient()
	client.on("getRawTransaction", func(args []any) (any, error) {
		return map[string]any{
			"txid":          "t1",
			"height":        100,
			"confirmations": 5,
			"vin": []map[string]any{
				{"txid": "prev1", "vout": 0, "valueSat": 1000, "address": "A"},
			},
			"vout": []map[string]any{
				{"valueSat": 900, "scriptPubKey": map[string]any{"addresses": []string{"B"}}},
			},
		}, nil
	})

	f := newTestFacade(t, client, Options{})
	dt, err := f.DetailedTransaction(context.Background(), "t1")
	if err != nil {
		t.Fatalf("DetailedTransaction: %v", err)
	}
	if dt.FeeSatoshis != 100 {
		t.Fatalf("feeSatoshis = %d, want 100 (1000 - 900)", dt.FeeSatoshis)
	}
	if dt.IsCoinbase {
		t.Fatal("expected non-coinbase transaction")
	}
}

func TestDetailedTransactionCoinbaseHasZeroFee(t *testing.T) {
	client := newFakeClient()
	client.on("getRawTransaction", func(args []any) (any, error) {
		return map[string]any{
			"txid": "coinbase1",
			"vin": []map[string]any{
				{"coinbase": "03abcdef"},
			},
			"vout": []map[string]any{
				{"valueSat": 5000000000, "scriptPubKey": map[string]any{"addresses": []string{"miner"}}},
			},
		}, nil
	})

	f := newTestFacade(t, client, Options{})
	dt, err := f.DetailedTransaction(context.Background(), "coinbase1")
	if err != nil {
		t.Fatalf("DetailedTransaction: %v", err)
	}
	if !dt.IsCoinbase {
		t.Fatal("expected coinbase transaction")
	}
	if dt.FeeSatoshis != 0 {
		t.Fatalf("feeSatoshis = %d, want 0 for coinbase", dt.FeeSatoshis)
	}
}

func TestDetailedTransactionCachesTipScoped(t *testing.T) {
	client := newFakeClient()
	client.on("getRawTransaction", func(args []any) (any, error) {
		return map[string]any{"txid": "t1", "vin": []map[string]any{}, "vout": []map[string]any{}}, nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	if _, err := f.DetailedTransaction(ctx, "t1"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := f.DetailedTransaction(ctx, "t1"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if client.calls["getRawTransaction"] != 1 {
		t.Fatalf("getRawTransaction called %d times, want 1", client.calls["getRawTransaction"])
	}
}

func TestTransactionCachesImmutablyAndOmitsConfirmations(t *testing.T) {
	client := newFakeClient()
	client.on("getRawTransaction", func(args []any) (any, error) {
		return map[string]any{
			"txid":          "t1",
			"confirmations": 5,
			"vin": []map[string]any{
				{"txid": "prev1", "vout": 0, "valueSat": 1000, "address": "A"},
			},
			"vout": []map[string]any{
				{"valueSat": 900, "scriptPubKey": map[string]any{"addresses": []string{"B"}}},
			},
		}, nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	tx, err := f.Transaction(ctx, "t1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(tx.Inputs) != 1 || len(tx.Outputs) != 1 {
		t.Fatalf("tx = %+v, want one input and one output", tx)
	}
	if _, err := f.Transaction(ctx, "t1"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if client.calls["getRawTransaction"] != 1 {
		t.Fatalf("getRawTransaction called %d times, want 1", client.calls["getRawTransaction"])
	}
}

func TestRawTransactionCachesImmutably(t *testing.T) {
	client := newFakeClient()
	client.on("getRawTransaction", func(args []any) (any, error) {
		if args[1].(int) != 0 {
			t.Fatalf("expected verbosity 0, got %v", args[1])
		}
		return "rawtxhex", nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	raw, err := f.RawTransaction(ctx, "t1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if raw != "rawtxhex" {
		t.Fatalf("raw = %q, want rawtxhex", raw)
	}
	if _, err := f.RawTransaction(ctx, "t1"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if client.calls["getRawTransaction"] != 1 {
		t.Fatalf("getRawTransaction called %d times, want 1", client.calls["getRawTransaction"])
	}
}

func TestRawTransactionJSONPassesDaemonResponseThroughVerbatim(t *testing.T) {
	client := newFakeClient()
	client.on("getRawTransaction", func(args []any) (any, error) {
		if args[1].(int) != 1 {
			t.Fatalf("expected verbosity 1, got %v", args[1])
		}
		return map[string]any{"txid": "t1", "locktime": 42}, nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	raw, err := f.RawTransactionJSON(ctx, "t1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode raw json: %v", err)
	}
	if decoded["txid"] != "t1" {
		t.Fatalf("decoded = %+v, want txid t1", decoded)
	}
	if _, err := f.RawTransactionJSON(ctx, "t1"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if client.calls["getRawTransaction"] != 1 {
		t.Fatalf("getRawTransaction called %d times, want 1", client.calls["getRawTransaction"])
	}
}

func TestConfirmationsHelper(t *testing.T) {
	cases := []struct {
		height, txHeight, want int64
		wantErr                bool
	}{
		{height: 100, txHeight: 95, want: 6},
		{height: 100, txHeight: 100, want: 1},
		{height: 100, txHeight: 0, want: 0},
		{height: 0, txHeight: 50, wantErr: true},
	}
	for _, c := range cases {
		got, err := confirmations(c.height, c.txHeight)
		if c.wantErr {
			if err == nil {
				t.Fatalf("confirmations(%d, %d): expected error, got nil", c.height, c.txHeight)
			}
			continue
		}
		if err != nil {
			t.Fatalf("confirmations(%d, %d): unexpected error %v", c.height, c.txHeight, err)
		}
		if got != c.want {
			t.Fatalf("confirmations(%d, %d) = %d, want %d", c.height, c.txHeight, got, c.want)
		}
	}
}

func TestLooksNumeric(t *testing.T) {
	cases := map[string]bool{
		"12345":                                      true,
		"0":                                          true,
		"":                                           false,
		"00000000000000000000000000000000000000ab":  false,
		"abc123":                                     false,
	}
	for in, want := range cases {
		if got := looksNumeric(in); got != want {
			t.Fatalf("looksNumeric(%q) = %v, want %v", in, got, want)
		}
	}
	// A 40+ char digit-only string must not be treated as numeric, since
	// block hashes are 64 hex characters and could coincidentally be
	// all-digit.
	longDigits := ""
	for i := 0; i < 40; i++ {
		longDigits += "1"
	}
	if looksNumeric(longDigits) {
		t.Fatalf("looksNumeric(%q) = true, want false (>= 40 chars)", longDigits)
	}
}
