package appconfig

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaultsWithNoPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.ListenAddr != ":8090" {
		t.Fatalf("admin.listen_addr = %q, want :8090", cfg.Admin.ListenAddr)
	}
	if len(cfg.RPC.Endpoints) != 1 || cfg.RPC.Endpoints[0] != "http://127.0.0.1:3889" {
		t.Fatalf("rpc.endpoints = %v, want one default endpoint", cfg.RPC.Endpoints)
	}
	if cfg.Facade.TransactionConcurrency != 5 {
		t.Fatalf("facade.transaction_concurrency = %d, want 5", cfg.Facade.TransactionConcurrency)
	}
}

func TestDurationFallsBackOnInvalidInput(t *testing.T) {
	if got := Duration("", 2*time.Second); got != 2*time.Second {
		t.Fatalf("Duration(empty) = %v, want 2s", got)
	}
	if got := Duration("not-a-duration", 3*time.Second); got != 3*time.Second {
		t.Fatalf("Duration(invalid) = %v, want 3s", got)
	}
	if got := Duration("500ms", time.Second); got != 500*time.Millisecond {
		t.Fatalf("Duration(500ms) = %v, want 500ms", got)
	}
}
