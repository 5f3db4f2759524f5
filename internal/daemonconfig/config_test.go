package daemonconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const validMain = `
# qtum.conf
server=1
txindex=1
addressindex=1
spentindex=1
zmqpubrawtx=tcp://127.0.0.1:3888
zmqpubhashblock=tcp://127.0.0.1:3888
rpcuser=user
`

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	cfg := Parse("# comment\n\nserver=1\n")
	if !cfg["server"].Bool() {
		t.Fatalf("server flag not parsed")
	}
	if len(cfg) != 1 {
		t.Fatalf("expected exactly one key, got %d", len(cfg))
	}
}

func TestParseCoercesNumericValues(t *testing.T) {
	cfg := Parse("rpcport=3889\nrpcuser=alice\n")
	n, ok := cfg["rpcport"].Int()
	if !ok || n != 3889 {
		t.Fatalf("rpcport not coerced to int: %v, %v", n, ok)
	}
	if _, ok := cfg["rpcuser"].Int(); ok {
		t.Fatalf("rpcuser should not be numeric")
	}
}

func TestLoadMergePrecedence(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "qtum.conf")
	netPath := filepath.Join(dir, "regtest.conf")
	writeFile(t, mainPath, validMain)
	writeFile(t, netPath, "rpcuser=override\n")

	cfg, err := Load(Defaults(), mainPath, netPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg["rpcuser"].String() != "override" {
		t.Fatalf("network overlay did not win: got %q", cfg["rpcuser"].String())
	}
	if n, _ := cfg["rpcport"].Int(); n != 3889 {
		t.Fatalf("defaults layer lost: rpcport=%d", n)
	}
}

func TestValidateFailsOnMissingIndexFlag(t *testing.T) {
	cfg := Parse("server=1\ntxindex=1\nzmqpubrawtx=tcp://x\nzmqpubhashblock=tcp://x\n")
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ConfigError for missing addressindex/spentindex")
	}
}

func TestValidateFailsOnMismatchedZmqEndpoints(t *testing.T) {
	cfg := Parse(validMain)
	cfg["zmqpubhashblock"] = newValue("tcp://127.0.0.1:9999")
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ConfigError for mismatched zmq endpoints")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := Parse(validMain)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReindexRequested(t *testing.T) {
	cfg := Parse(validMain + "reindex=1\n")
	if !cfg.ReindexRequested() {
		t.Fatalf("expected ReindexRequested to be true")
	}
	if Parse(validMain).ReindexRequested() {
		t.Fatalf("expected ReindexRequested to be false without reindex=1")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
