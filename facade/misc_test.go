package facade

import (
	"context"
	"errors"
	"testing"
)

func TestEstimateFeeCachesByBlocksKey(t *testing.T) {
	client := newFakeClient()
	client.on("estimateFee", func(args []any) (any, error) {
		blocks := args[0].(int)
		if blocks == 2 {
			return 0.001, nil
		}
		return 0.0005, nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	fee2a, err := f.EstimateFee(ctx, 2)
	if err != nil {
		t.Fatalf("EstimateFee(2): %v", err)
	}
	fee6, err := f.EstimateFee(ctx, 6)
	if err != nil {
		t.Fatalf("EstimateFee(6): %v", err)
	}
	fee2b, err := f.EstimateFee(ctx, 2)
	if err != nil {
		t.Fatalf("EstimateFee(2) cached: %v", err)
	}

	if fee2a != 0.001 || fee2b != 0.001 {
		t.Fatalf("fee(2) = %v, %v, want 0.001 both times", fee2a, fee2b)
	}
	if fee6 != 0.0005 {
		t.Fatalf("fee(6) = %v, want 0.0005", fee6)
	}
	if client.calls["estimateFee"] != 2 {
		t.Fatalf("estimateFee called %d times, want 2 (one per distinct blocks key)", client.calls["estimateFee"])
	}
}

func TestGetInfoMergesDaemonFields(t *testing.T) {
	client := newFakeClient()
	client.on("getInfo", func(args []any) (any, error) {
		return rawInfo{Version: 1, Blocks: 400, Connections: 8, Difficulty: 2.5}, nil
	})
	client.on("getBlockchainInfo", func(args []any) (any, error) {
		return rawBlockchainInfo{Chain: "main", Blocks: 500}, nil
	})
	f := newTestFacade(t, client, Options{})

	info, err := f.GetInfo(context.Background())
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Chain != "main" || info.Blocks != 500 || info.Connections != 8 {
		t.Fatalf("info = %+v, want chain=main (from getblockchaininfo) blocks=500 connections=8", info)
	}
}

func TestGenerateBlocksRejectsNonRegtest(t *testing.T) {
	client := newFakeClient()
	client.on("getInfo", func(args []any) (any, error) {
		return rawInfo{}, nil
	})
	client.on("getBlockchainInfo", func(args []any) (any, error) {
		return rawBlockchainInfo{Chain: "main"}, nil
	})
	f := newTestFacade(t, client, Options{})

	_, err := f.GenerateBlocks(context.Background(), 1)
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("err = %v, want ErrNotSupported", err)
	}
	if client.calls["generate"] != 0 {
		t.Fatal("generate must not be called on a non-regtest chain")
	}
}

func TestGenerateBlocksAllowsRegtest(t *testing.T) {
	client := newFakeClient()
	client.on("getInfo", func(args []any) (any, error) {
		return rawInfo{}, nil
	})
	client.on("getBlockchainInfo", func(args []any) (any, error) {
		return rawBlockchainInfo{Chain: "regtest"}, nil
	})
	client.on("generate", func(args []any) (any, error) {
		return []string{"hash1"}, nil
	})
	f := newTestFacade(t, client, Options{})

	hashes, err := f.GenerateBlocks(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateBlocks: %v", err)
	}
	if len(hashes) != 1 || hashes[0] != "hash1" {
		t.Fatalf("hashes = %v, want [hash1]", hashes)
	}
}

func TestSingletonTipCachesDoNotRefetch(t *testing.T) {
	client := newFakeClient()
	client.on("getDgpInfo", func(args []any) (any, error) {
		return DgpInfo{MinGasPrice: 40}, nil
	})
	client.on("getMiningInfo", func(args []any) (any, error) {
		return MiningInfo{Blocks: 10}, nil
	})
	client.on("getStakingInfo", func(args []any) (any, error) {
		return StakingInfo{Enabled: true}, nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	if _, err := f.GetDgpInfo(ctx); err != nil {
		t.Fatalf("GetDgpInfo: %v", err)
	}
	if _, err := f.GetDgpInfo(ctx); err != nil {
		t.Fatalf("GetDgpInfo cached: %v", err)
	}
	if _, err := f.GetMiningInfo(ctx); err != nil {
		t.Fatalf("GetMiningInfo: %v", err)
	}
	if _, err := f.GetStakingInfo(ctx); err != nil {
		t.Fatalf("GetStakingInfo: %v", err)
	}

	if client.calls["getDgpInfo"] != 1 {
		t.Fatalf("getDgpInfo called %d times, want 1", client.calls["getDgpInfo"])
	}
	if client.calls["getMiningInfo"] != 1 {
		t.Fatalf("getMiningInfo called %d times, want 1", client.calls["getMiningInfo"])
	}
	if client.calls["getStakingInfo"] != 1 {
		t.Fatalf("getStakingInfo called %d times, want 1", client.calls["getStakingInfo"])
	}
}

func TestGetTransactionReceiptCachesImmutably(t *testing.T) {
	client := newFakeClient()
	client.on("getTransactionReceipt", func(args []any) (any, error) {
		return TransactionReceipt{TransactionHash: "t1", GasUsed: 21000}, nil
	})
	f := newTestFacade(t, client, Options{})
	ctx := context.Background()

	if _, err := f.GetTransactionReceipt(ctx, "t1"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := f.GetTransactionReceipt(ctx, "t1"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if client.calls["getTransactionReceipt"] != 1 {
		t.Fatalf("getTransactionReceipt called %d times, want 1", client.calls["getTransactionReceipt"])
	}
}

func TestGetSubsidyDelegatesToBlockSubsidy(t *testing.T) {
	client := newFakeClient()
	client.on("getSubsidy", func(args []any) (any, error) {
		return int64(100), nil
	})
	f := newTestFacade(t, client, Options{})

	got, err := f.GetSubsidy(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetSubsidy: %v", err)
	}
	if got != 100 {
		t.Fatalf("GetSubsidy = %d, want 100", got)
	}
}

func TestCallContractReturnsRawResult(t *testing.T) {
	client := newFakeClient()
	client.on("callContract", func(args []any) (any, error) {
		return map[string]any{"executionResult": map[string]any{"output": "0x01"}}, nil
	})
	f := newTestFacade(t, client, Options{})

	result, err := f.CallContract(context.Background(), "addr", "0xdata", "from")
	if err != nil {
		t.Fatalf("CallContract: %v", err)
	}
	if result["executionResult"] == nil {
		t.Fatalf("result = %v, want executionResult key", result)
	}
}
