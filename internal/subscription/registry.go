// Package subscription tracks in-process subscribers for the ZMQ ingest
// and tip tracker, indexed both by topic (rawtransaction/hashblock) and
// by address (addresstxid/addressbalance). It is a flat
// (topic, address) -> []Emitter mapping behind one owner, replacing the
// source's nested mutable maps and the ad-hoc empty-key cleanup
// scattered across its call sites (see SPEC_FULL.md §9).
package subscription

import (
	"reflect"
	"sync"

	"github.com/qtum-project/qtumnode-facade/internal/events"
)

// AddressValidator reports whether addr is a well-formed address on the
// currently configured network. It is satisfied by the external
// address/script decoding library; see internal/addressdecoder.
type AddressValidator interface {
	IsValidAddress(addr string) bool
}

// key identifies one bucket of emitters. address is empty for plain
// topic subscriptions (rawtransaction/hashblock).
type key struct {
	topic   events.Topic
	address string
}

// Registry is the single owner of all subscription state. The zero
// value is not usable; use New.
type Registry struct {
	mu        sync.RWMutex
	emitters  map[key][]events.Emitter
	validator AddressValidator
}

// New constructs an empty registry. validator is used by
// SubscribeAddress/SubscribeBalance to reject malformed addresses; pass
// nil to accept everything (used in tests).
func New(validator AddressValidator) *Registry {
	return &Registry{
		emitters:  make(map[key][]events.Emitter),
		validator: validator,
	}
}

// indexOf returns e's position in list, or -1. Emitters of an
// uncomparable dynamic type (such as events.EmitterFunc) never match an
// existing entry, so Subscribe appends them every time and they cannot
// be removed by Unsubscribe or Disconnect.
func indexOf(list []events.Emitter, e events.Emitter) int {
	if t := reflect.TypeOf(e); t != nil && !t.Comparable() {
		return -1
	}
	for i, existing := range list {
		if existing == e {
			return i
		}
	}
	return -1
}

func removeAt(list []events.Emitter, i int) []events.Emitter {
	return append(list[:i], list[i+1:]...)
}

// Subscribe appends e to topic's emitter list if not already present.
func (r *Registry) Subscribe(topic events.Topic, e events.Emitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(key{topic: topic}, e)
}

// Unsubscribe removes e from topic's emitter list. Idempotent.
func (r *Registry) Unsubscribe(topic events.Topic, e events.Emitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(key{topic: topic}, e)
}

// SubscribeAddress appends e to the addresstxid emitter list of each
// valid address in addrs, silently skipping malformed addresses.
func (r *Registry) SubscribeAddress(e events.Emitter, addrs []string) {
	r.subscribeKeyed(events.TopicAddressTxid, e, addrs)
}

// SubscribeBalance appends e to the addressbalance emitter list of each
// valid address in addrs, silently skipping malformed addresses.
func (r *Registry) SubscribeBalance(e events.Emitter, addrs []string) {
	r.subscribeKeyed(events.TopicAddressBalance, e, addrs)
}

func (r *Registry) subscribeKeyed(topic events.Topic, e events.Emitter, addrs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, addr := range addrs {
		if r.validator != nil && !r.validator.IsValidAddress(addr) {
			continue
		}
		r.appendLocked(key{topic: topic, address: addr}, e)
	}
}

// UnsubscribeAddress removes e from the addresstxid emitter list of the
// listed addrs, or from every address key if addrs is empty.
func (r *Registry) UnsubscribeAddress(e events.Emitter, addrs []string) {
	r.unsubscribeKeyed(events.TopicAddressTxid, e, addrs)
}

// UnsubscribeBalance removes e from the addressbalance emitter list of
// the listed addrs, or from every address key if addrs is empty.
func (r *Registry) UnsubscribeBalance(e events.Emitter, addrs []string) {
	r.unsubscribeKeyed(events.TopicAddressBalance, e, addrs)
}

func (r *Registry) unsubscribeKeyed(topic events.Topic, e events.Emitter, addrs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(addrs) == 0 {
		for k := range r.emitters {
			if k.topic == topic {
				r.removeLocked(k, e)
			}
		}
		return
	}
	for _, addr := range addrs {
		r.removeLocked(key{topic: topic, address: addr}, e)
	}
}

// Disconnect removes e from every key in the registry. Call this once
// per disconnected subscriber; the registry never emits to it again.
func (r *Registry) Disconnect(e events.Emitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.emitters {
		r.removeLocked(k, e)
	}
}

func (r *Registry) appendLocked(k key, e events.Emitter) {
	list := r.emitters[k]
	if indexOf(list, e) >= 0 {
		return
	}
	r.emitters[k] = append(list, e)
}

func (r *Registry) removeLocked(k key, e events.Emitter) {
	list, ok := r.emitters[k]
	if !ok {
		return
	}
	i := indexOf(list, e)
	if i < 0 {
		return
	}
	list = removeAt(list, i)
	if len(list) == 0 {
		delete(r.emitters, k)
		return
	}
	r.emitters[k] = list
}

// Publish delivers payload to every emitter subscribed to topic, in
// registration order.
func (r *Registry) Publish(topic events.Topic, payload any) {
	r.mu.RLock()
	list := append([]events.Emitter(nil), r.emitters[key{topic: topic}]...)
	r.mu.RUnlock()
	for _, e := range list {
		e.Emit(topic, payload)
	}
}

// PublishAddress delivers payload to every emitter subscribed to topic
// for addr, in registration order.
func (r *Registry) PublishAddress(topic events.Topic, addr string, payload any) {
	r.mu.RLock()
	list := append([]events.Emitter(nil), r.emitters[key{topic: topic, address: addr}]...)
	r.mu.RUnlock()
	for _, e := range list {
		e.Emit(topic, payload)
	}
}

// AddressSubscriberCount reports how many emitters are currently
// registered for topic/addr; used by metrics and tests.
func (r *Registry) AddressSubscriberCount(topic events.Topic, addr string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.emitters[key{topic: topic, address: addr}])
}

// TopicSubscriberCount reports how many emitters are currently
// registered for a plain topic subscription.
func (r *Registry) TopicSubscriberCount(topic events.Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.emitters[key{topic: topic}])
}
