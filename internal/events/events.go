// Package events defines the event payloads emitted by the ZMQ ingest,
// tip tracker, and process supervisor onto the subscription registry's
// bus. Types here are plain data; delivery is the subscription
// package's job.
package events

// Topic names an event class in the subscription registry.
type Topic string

const (
	// TopicRawTransaction carries the hex-encoded raw transaction bytes
	// of every transaction observed on the rawtx ZMQ feed.
	TopicRawTransaction Topic = "rawtransaction"
	// TopicHashBlock carries the hex-encoded hash of every new tip seen
	// on the hashblock ZMQ feed.
	TopicHashBlock Topic = "hashblock"
	// TopicAddressTxid carries AddressTxid payloads, one per address
	// touched by an ingested raw transaction.
	TopicAddressTxid Topic = "addresstxid"
	// TopicAddressBalance carries AddressBalance payloads, one per
	// balance subscriber of an address touched by an ingested raw
	// transaction.
	TopicAddressBalance Topic = "addressbalance"
	// TopicReady fires once after the supervisor completes startup.
	TopicReady Topic = "ready"
	// TopicTip fires on every confirmed height change.
	TopicTip Topic = "tip"
	// TopicSynced fires once verification progress reaches 100%.
	TopicSynced Topic = "synced"
	// TopicBlock mirrors TopicHashBlock for internal consumers.
	TopicBlock Topic = "block"
	// TopicTx mirrors TopicRawTransaction for internal consumers.
	TopicTx Topic = "tx"
	// TopicError carries errors raised inside background processing
	// that must not halt the producer.
	TopicError Topic = "error"
)

// AddressTxid is emitted once per (address, txid) pair touched by a
// newly ingested raw transaction.
type AddressTxid struct {
	Address string
	Txid    string
}

// AddressBalance is emitted once per balance subscriber of an address
// touched by a newly ingested raw transaction, carrying the address's
// recomputed summary.
type AddressBalance struct {
	Address             string
	Txid                string
	TotalReceived        int64
	TotalSpent           int64
	Balance              int64
	UnconfirmedBalance   int64
}

// Emitter receives events delivered by the subscription registry. A
// websocket bridge, log sink, or test probe implements this.
type Emitter interface {
	// Emit delivers a single event for topic. Implementations must not
	// block for long; the registry calls Emit synchronously in
	// registration order.
	Emit(topic Topic, payload any)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(topic Topic, payload any)

// Emit implements Emitter.
func (f EmitterFunc) Emit(topic Topic, payload any) { f(topic, payload) }
