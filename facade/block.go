package facade

import (
	"context"
	"strconv"
)

// BlockOverview fetches a block's summary, resolving arg through
// maybeGetBlockHash first (SPEC_FULL.md §4.8 "Block hash resolution").
// Cached tip-scoped: block overviews can be reorganised away before
// enough confirmations accrue.
func (f *Facade) BlockOverview(ctx context.Context, arg string) (*BlockOverview, error) {
	hash, err := f.maybeGetBlockHash(ctx, arg)
	if err != nil {
		return nil, err
	}
	if cached, ok := f.cache.Tip.BlockOverviewByHash.Get(hash); ok {
		b := cached.(BlockOverview)
		return &b, nil
	}

	var raw rawBlock
	if err := f.call(ctx, &raw, "getBlock", hash, 1); err != nil {
		return nil, err
	}

	overview := BlockOverview{
		Hash:          raw.Hash,
		PrevHash:      raw.PreviousBlockHash,
		Height:        raw.Height,
		Confirmations: raw.Confirmations,
		ChainWork:     raw.Chainwork,
		Time:          raw.Time,
		TxCount:       len(raw.Tx),
	}
	f.cache.Tip.BlockOverviewByHash.Set(hash, overview)
	return &overview, nil
}

// RawBlockJSON fetches a block's full verbose JSON, immutable once
// mined (bounded only by LRU capacity, never reorg-sensitive at the
// raw-field level the way the derived overview is).
func (f *Facade) RawBlockJSON(ctx context.Context, arg string) (map[string]any, error) {
	hash, err := f.maybeGetBlockHash(ctx, arg)
	if err != nil {
		return nil, err
	}
	if cached, ok := f.cache.Immutable.BlockJSONByHash.Get(hash); ok {
		return cached.(map[string]any), nil
	}
	var raw map[string]any
	if err := f.call(ctx, &raw, "getBlock", hash, 1); err != nil {
		return nil, err
	}
	f.cache.Immutable.BlockJSONByHash.Set(hash, raw)
	return raw, nil
}

// Block fetches a block's immutable structural fields, omitting
// BlockOverview's reorg-sensitive Confirmations so the result can be
// cached without ever going stale (SPEC_FULL.md §3 "block-by-hash").
func (f *Facade) Block(ctx context.Context, arg string) (*Block, error) {
	hash, err := f.maybeGetBlockHash(ctx, arg)
	if err != nil {
		return nil, err
	}
	if cached, ok := f.cache.Immutable.BlockByHash.Get(hash); ok {
		b := cached.(Block)
		return &b, nil
	}

	var raw rawBlock
	if err := f.call(ctx, &raw, "getBlock", hash, 1); err != nil {
		return nil, err
	}
	b := Block{
		Hash:      raw.Hash,
		PrevHash:  raw.PreviousBlockHash,
		Height:    raw.Height,
		ChainWork: raw.Chainwork,
		Time:      raw.Time,
		Txids:     raw.Tx,
	}
	f.cache.Immutable.BlockByHash.Set(hash, b)
	return &b, nil
}

// RawBlock fetches a block's raw serialized hex, immutable once mined
// (SPEC_FULL.md §3 "raw-block-by-hash").
func (f *Facade) RawBlock(ctx context.Context, arg string) (string, error) {
	hash, err := f.maybeGetBlockHash(ctx, arg)
	if err != nil {
		return "", err
	}
	if cached, ok := f.cache.Immutable.RawBlockByHash.Get(hash); ok {
		return cached.(string), nil
	}
	var raw string
	if err := f.call(ctx, &raw, "getBlock", hash, 0); err != nil {
		return "", err
	}
	f.cache.Immutable.RawBlockByHash.Set(hash, raw)
	return raw, nil
}

// BestBlockHash returns the daemon's current tip hash, uncached (always
// the freshest value by definition).
func (f *Facade) BestBlockHash(ctx context.Context) (string, error) {
	var hash string
	if err := f.call(ctx, &hash, "getBestBlockHash"); err != nil {
		return "", err
	}
	return hash, nil
}

// BlockHeader fetches a block header, immutable once mined.
func (f *Facade) BlockHeader(ctx context.Context, arg string) (map[string]any, error) {
	hash, err := f.maybeGetBlockHash(ctx, arg)
	if err != nil {
		return nil, err
	}
	if cached, ok := f.cache.Immutable.BlockHeaderByHash.Get(hash); ok {
		return cached.(map[string]any), nil
	}
	var header map[string]any
	if err := f.call(ctx, &header, "getBlockHeader", hash); err != nil {
		return nil, err
	}
	f.cache.Immutable.BlockHeaderByHash.Set(hash, header)
	return header, nil
}

// BlockHashes returns the block hashes between high and low, uncached
// (a bounded-range scan, not a repeatable single-key lookup).
func (f *Facade) BlockHashes(ctx context.Context, high, low int64) ([]string, error) {
	var hashes []string
	if err := f.call(ctx, &hashes, "getBlockHashes", high, low, map[string]any{}); err != nil {
		return nil, err
	}
	return hashes, nil
}

// BlockSubsidy returns the block reward at height, immutable once the
// daemon's subsidy schedule has passed that height.
func (f *Facade) BlockSubsidy(ctx context.Context, height int64) (int64, error) {
	key := strconv.FormatInt(height, 10)
	if cached, ok := f.cache.Immutable.BlockSubsidyByHgt.Get(key); ok {
		return cached.(int64), nil
	}
	var subsidy int64
	if err := f.call(ctx, &subsidy, "getSubsidy", height); err != nil {
		return 0, err
	}
	f.cache.Immutable.BlockSubsidyByHgt.Set(key, subsidy)
	return subsidy, nil
}
