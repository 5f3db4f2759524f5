// Package addressdecoder defines the interface this facade needs from
// the host's address/script decoding library (SPEC_FULL.md §1: out of
// scope, "specified only by the interface the core needs from them").
// A production deployment wires in the daemon's own script-to-address
// conventions (P2PKH/P2SH/P2WPKH base58/bech32 encoding, network
// version bytes); this package ships a minimal default good enough for
// tests and for networks that only need P2PKH-style recognition.
package addressdecoder

import (
	"encoding/base64"
	"strings"
)

// ScriptDecoder turns an output script into the address it pays (or
// ("", false) if the script is not a recognised standard form), and
// validates an address string against the active network.
type ScriptDecoder interface {
	ScriptToAddress(script []byte) (address string, ok bool)
	IsValidAddress(address string) bool
}

// Stub is a minimal ScriptDecoder: it treats a script's base64 encoding
// as its "address" and accepts any non-empty string with the configured
// prefix as valid. It exists purely so the rest of this facade can be
// exercised without a real chain-specific decoding library wired in;
// SPEC_FULL.md names the real decoder as an external collaborator.
type Stub struct {
	// Prefix is prepended to every derived address, mimicking a
	// network's address-version byte; IsValidAddress checks for it.
	Prefix string
}

// NewStub constructs a Stub using prefix (e.g. "q" for Qtum mainnet,
// "Q" for Qtum testnet).
func NewStub(prefix string) *Stub {
	if prefix == "" {
		prefix = "q"
	}
	return &Stub{Prefix: prefix}
}

// ScriptToAddress implements ScriptDecoder.
func (s *Stub) ScriptToAddress(script []byte) (string, bool) {
	if len(script) == 0 {
		return "", false
	}
	return s.Prefix + base64.RawURLEncoding.EncodeToString(script), true
}

// IsValidAddress implements ScriptDecoder.
func (s *Stub) IsValidAddress(address string) bool {
	return strings.HasPrefix(address, s.Prefix) && len(address) > len(s.Prefix)
}
