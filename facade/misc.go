package facade

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// ErrNotSupported is returned by operations that are only meaningful on
// a regtest network, when the connected daemon reports otherwise
// (SPEC_FULL.md §4.8 expansion: GenerateBlocks).
var ErrNotSupported = errors.New("facade: operation not supported on this network")

// EstimateFee returns the estimated fee per kilobyte for confirmation
// within blocks blocks, cached by blocks in the immutable cache group
// (SPEC_FULL.md §4.8 expansion). Cached entries do not expire; they are
// dropped only by LRU eviction.
func (f *Facade) EstimateFee(ctx context.Context, blocks int) (float64, error) {
	key := strconv.Itoa(blocks)
	if cached, ok := f.cache.Immutable.EstimateFeeByBlocks.Get(key); ok {
		return cached.(float64), nil
	}
	var fee float64
	if err := f.call(ctx, &fee, "estimateFee", blocks); err != nil {
		return 0, err
	}
	f.cache.Immutable.EstimateFeeByBlocks.Set(key, fee)
	return fee, nil
}

type rawInfo struct {
	Version         int64   `json:"version"`
	ProtocolVersion int64   `json:"protocolversion"`
	Blocks          int64   `json:"blocks"`
	Chain           string  `json:"chain"`
	Connections     int64   `json:"connections"`
	Difficulty      float64 `json:"difficulty"`
	TestNet         bool    `json:"testnet"`
	RelayFee        float64 `json:"relayfee"`
}

// rawBlockchainInfo mirrors the getblockchaininfo fields GetInfo merges
// in: legacy getInfo carries no "chain" field, and its "blocks" lags
// getblockchaininfo's during initial sync.
type rawBlockchainInfo struct {
	Chain  string `json:"chain"`
	Blocks int64  `json:"blocks"`
}

// GetInfo merges getInfo/getblockchaininfo into one status record,
// always fresh (SPEC_FULL.md §4.8 expansion: "uncached, always-fresh
// status call used by health checks"). The two calls run concurrently;
// chain and blocks are taken from getblockchaininfo, the only one of
// the pair that reports them.
func (f *Facade) GetInfo(ctx context.Context) (*NodeInfo, error) {
	var raw rawInfo
	var chain rawBlockchainInfo

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.call(gctx, &raw, "getInfo")
	})
	g.Go(func() error {
		return f.call(gctx, &chain, "getBlockchainInfo")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &NodeInfo{
		Version:         raw.Version,
		ProtocolVersion: raw.ProtocolVersion,
		Blocks:          chain.Blocks,
		Chain:           chain.Chain,
		Connections:     raw.Connections,
		Difficulty:      raw.Difficulty,
		TestNet:         raw.TestNet,
		RelayFee:        raw.RelayFee,
	}, nil
}

// GenerateBlocks mines n blocks, regtest-only (SPEC_FULL.md §4.8
// expansion). Failing fast on a non-regtest chain avoids an RPC round
// trip the daemon would reject anyway.
func (f *Facade) GenerateBlocks(ctx context.Context, n int) ([]string, error) {
	info, err := f.GetInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info.Chain != "regtest" {
		return nil, ErrNotSupported
	}
	var hashes []string
	if err := f.call(ctx, &hashes, "generate", n); err != nil {
		return nil, err
	}
	return hashes, nil
}

// GetAccountInfo fetches a contract account's balance/nonce/code
// (SPEC_FULL.md §4.8 expansion, qtum EVM-on-UTXO). Tip-scoped: account
// state changes with every block.
func (f *Facade) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	if cached, ok := f.cache.Tip.AccountInfoByAddress.Get(address); ok {
		info := cached.(AccountInfo)
		return &info, nil
	}
	var info AccountInfo
	if err := f.call(ctx, &info, "getAccountInfo", address); err != nil {
		return nil, err
	}
	f.cache.Tip.AccountInfoByAddress.Set(address, info)
	return &info, nil
}

const singletonKey = "singleton"

// GetDgpInfo fetches the current Decentralized Governance Protocol
// parameters, tip-scoped.
func (f *Facade) GetDgpInfo(ctx context.Context) (*DgpInfo, error) {
	if cached, ok := f.cache.Tip.DgpInfo.Get(singletonKey); ok {
		info := cached.(DgpInfo)
		return &info, nil
	}
	var info DgpInfo
	if err := f.call(ctx, &info, "getDgpInfo"); err != nil {
		return nil, err
	}
	f.cache.Tip.DgpInfo.Set(singletonKey, info)
	return &info, nil
}

// GetMiningInfo fetches the current mining status, tip-scoped.
func (f *Facade) GetMiningInfo(ctx context.Context) (*MiningInfo, error) {
	if cached, ok := f.cache.Tip.MiningInfo.Get(singletonKey); ok {
		info := cached.(MiningInfo)
		return &info, nil
	}
	var info MiningInfo
	if err := f.call(ctx, &info, "getMiningInfo"); err != nil {
		return nil, err
	}
	f.cache.Tip.MiningInfo.Set(singletonKey, info)
	return &info, nil
}

// GetStakingInfo fetches the current staking status, tip-scoped.
func (f *Facade) GetStakingInfo(ctx context.Context) (*StakingInfo, error) {
	if cached, ok := f.cache.Tip.StakingInfo.Get(singletonKey); ok {
		info := cached.(StakingInfo)
		return &info, nil
	}
	var info StakingInfo
	if err := f.call(ctx, &info, "getStakingInfo"); err != nil {
		return nil, err
	}
	f.cache.Tip.StakingInfo.Set(singletonKey, info)
	return &info, nil
}

// CallContract executes a read-only contract call, uncached (the
// result depends on the exact state at call time and the daemon itself
// does not version it by block).
func (f *Facade) CallContract(ctx context.Context, address, data, from string) (map[string]any, error) {
	var result map[string]any
	if err := f.call(ctx, &result, "callContract", address, data, from); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransactionReceipt fetches a contract execution receipt, immutable
// once mined.
func (f *Facade) GetTransactionReceipt(ctx context.Context, txid string) (*TransactionReceipt, error) {
	if cached, ok := f.cache.Immutable.TxReceiptByTxid.Get(txid); ok {
		r := cached.(TransactionReceipt)
		return &r, nil
	}
	var receipt TransactionReceipt
	if err := f.call(ctx, &receipt, "getTransactionReceipt", txid); err != nil {
		return nil, err
	}
	f.cache.Immutable.TxReceiptByTxid.Set(txid, receipt)
	return &receipt, nil
}

// GetSubsidy returns the block reward at height (SPEC_FULL.md §4.8
// expansion), immutable once mined.
func (f *Facade) GetSubsidy(ctx context.Context, height int64) (int64, error) {
	return f.BlockSubsidy(ctx, height)
}
