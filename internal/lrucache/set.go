package lrucache

// Capacities configures every cache's maximum entry count. All fields
// are optional; Defaults() fills in SPEC_FULL.md §3's recognised
// defaults for anything left at zero.
type Capacities struct {
	// Large applies to per-transaction/per-address entries (50,000-100,000).
	Large int
	// Small applies to block-window entries (72-288).
	Small int
	// Dedup applies to the known-blocks/known-transactions dedup sets (50).
	Dedup int
}

const (
	defaultLarge = 50000
	defaultSmall = 144
	defaultDedup = 50
)

// Defaults returns c with every zero field replaced by its
// SPEC_FULL.md-documented default.
func (c Capacities) Defaults() Capacities {
	if c.Large <= 0 {
		c.Large = defaultLarge
	}
	if c.Small <= 0 {
		c.Small = defaultSmall
	}
	if c.Dedup <= 0 {
		c.Dedup = defaultDedup
	}
	return c
}

// TipScoped holds every cache flushed on tip advancement (SPEC_FULL.md §3).
type TipScoped struct {
	UTXOsByAddress       *Cache[string, any]
	TxidsByAddress       *Cache[string, any]
	BalanceByAddress     *Cache[string, any]
	AddressSummary       *Cache[string, any]
	BlockOverviewByHash  *Cache[string, any]
	BlockJSONByHash      *Cache[string, any]
	DetailedTxByTxid     *Cache[string, any]
	AccountInfoByAddress *Cache[string, any]
	DgpInfo              *Cache[string, any]
	MiningInfo           *Cache[string, any]
	StakingInfo          *Cache[string, any]
}

// Immutable holds every cache bounded only by LRU capacity, never
// invalidated by tip changes.
type Immutable struct {
	TxByTxid          *Cache[string, any]
	RawTxByTxid       *Cache[string, any]
	RawJSONTxByTxid   *Cache[string, any]
	TxReceiptByTxid   *Cache[string, any]
	BlockByHash       *Cache[string, any]
	BlockJSONByHash   *Cache[string, any]
	BlockSubsidyByHgt *Cache[string, any]
	RawBlockByHash    *Cache[string, any]
	BlockHeaderByHash *Cache[string, any]
	EstimateFeeByBlocks *Cache[string, any]
}

// Dedup holds the membership-only ZMQ dedup sets.
type Dedup struct {
	KnownBlocks *Cache[string, struct{}]
	KnownTxs    *Cache[string, struct{}]
}

// Set bundles the tip-scoped, immutable, and dedup cache groups. It is
// the single collaborator the tip tracker and query facade share.
type Set struct {
	Tip       TipScoped
	Immutable Immutable
	Dedup     Dedup
}

// NewSet constructs a cache set sized by caps (zero fields filled with
// defaults).
func NewSet(caps Capacities) *Set {
	caps = caps.Defaults()
	large := caps.Large
	small := caps.Small
	dedup := caps.Dedup

	return &Set{
		Tip: TipScoped{
			UTXOsByAddress:       NewCache[string, any](large),
			TxidsByAddress:       NewCache[string, any](large),
			BalanceByAddress:     NewCache[string, any](large),
			AddressSummary:       NewCache[string, any](large),
			BlockOverviewByHash:  NewCache[string, any](small),
			BlockJSONByHash:      NewCache[string, any](small),
			DetailedTxByTxid:     NewCache[string, any](large),
			AccountInfoByAddress: NewCache[string, any](large),
			DgpInfo:              NewCache[string, any](1),
			MiningInfo:           NewCache[string, any](1),
			StakingInfo:          NewCache[string, any](1),
		},
		Immutable: Immutable{
			TxByTxid:          NewCache[string, any](large),
			RawTxByTxid:       NewCache[string, any](large),
			RawJSONTxByTxid:   NewCache[string, any](large),
			TxReceiptByTxid:   NewCache[string, any](large),
			BlockByHash:       NewCache[string, any](small),
			BlockJSONByHash:   NewCache[string, any](small),
			BlockSubsidyByHgt: NewCache[string, any](small),
			RawBlockByHash:    NewCache[string, any](small),
			BlockHeaderByHash: NewCache[string, any](small),
			EstimateFeeByBlocks: NewCache[string, any](small),
		},
		Dedup: Dedup{
			KnownBlocks: NewCache[string, struct{}](dedup),
			KnownTxs:    NewCache[string, struct{}](dedup),
		},
	}
}

// ResetTipScoped empties every tip-scoped cache. Called by the tip
// tracker on every tip change; this is the only correctness-critical
// cache operation in the system (SPEC_FULL.md §9).
func (s *Set) ResetTipScoped() {
	s.Tip.UTXOsByAddress.Reset()
	s.Tip.TxidsByAddress.Reset()
	s.Tip.BalanceByAddress.Reset()
	s.Tip.AddressSummary.Reset()
	s.Tip.BlockOverviewByHash.Reset()
	s.Tip.BlockJSONByHash.Reset()
	s.Tip.DetailedTxByTxid.Reset()
	s.Tip.AccountInfoByAddress.Reset()
	s.Tip.DgpInfo.Reset()
	s.Tip.MiningInfo.Reset()
	s.Tip.StakingInfo.Reset()
}
