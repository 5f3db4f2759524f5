package facade

// UTXO is one unspent output in the facade's canonical shape, merged
// from confirmed getAddressUtxos results and unspent mempool deltas
// (SPEC_FULL.md §4.8).
type UTXO struct {
	Address     string `json:"address"`
	Txid        string `json:"txid"`
	OutputIndex int    `json:"outputIndex"`
	Script      string `json:"script"`
	Satoshis    int64  `json:"satoshis"`
	Height      int64  `json:"height"`
	IsStake     bool   `json:"isStake"`
}

// outpoint identifies a UTXO for spent-index / dedup filtering.
type outpoint struct {
	Txid        string
	OutputIndex int
}

// rawUTXO mirrors getAddressUtxos' daemon field names.
type rawUTXO struct {
	Address     string `json:"address"`
	Txid        string `json:"txid"`
	OutputIndex int    `json:"outputIndex"`
	Script      string `json:"script"`
	Satoshis    int64  `json:"satoshis"`
	Height      int64  `json:"height"`
	IsStake     bool   `json:"isStake"`
}

// mempoolDelta mirrors getAddressMempool's daemon field names: a single
// credit or debit observed against an address in the mempool.
type mempoolDelta struct {
	Address     string `json:"address"`
	Txid        string `json:"txid"`
	Index       int    `json:"index"`
	Satoshis    int64  `json:"satoshis"`
	PrevTxid    string `json:"prevtxid"`
	PrevOut     int    `json:"prevout"`
	Timestamp   int64  `json:"timestamp"`
}

// isSpend reports whether d describes a mempool spend of a previously
// confirmed output rather than a new mempool-created output
// (SPEC_FULL.md §4.8's "Address UTXOs with mempool overlay").
func (d mempoolDelta) isSpend() bool {
	return d.PrevTxid != "" && d.Satoshis <= 0
}

// AddressTxidsOptions configures AddressTxids (SPEC_FULL.md §4.8).
type AddressTxidsOptions struct {
	// QueryMempoolOnly restricts the result to unconfirmed txids.
	QueryMempoolOnly bool
	// Start and End, when both non-nil, select a confirmed height range
	// and disable the mempool query. The daemon expects most-recent-first
	// ordering; valid input requires Start >= End (SPEC_FULL.md §9).
	Start *int64
	End   *int64
}

// AddressSummary merges confirmed and unconfirmed activity for one
// address (SPEC_FULL.md §4.8).
type AddressSummary struct {
	Appearances            int64    `json:"appearances"`
	TotalReceived           int64    `json:"totalReceived"`
	TotalSpent              int64    `json:"totalSpent"`
	Balance                 int64    `json:"balance"`
	UnconfirmedAppearances int64    `json:"unconfirmedAppearances"`
	UnconfirmedBalance     int64    `json:"unconfirmedBalance"`
	Txids                   []string `json:"txids,omitempty"`
}

// HistoryEntry is one resolved transaction in an address's history,
// with per-address input/output index maps and a net satoshi delta
// (SPEC_FULL.md §4.8).
type HistoryEntry struct {
	Txid          string  `json:"txid"`
	Height        int64   `json:"height"`
	Confirmations int64   `json:"confirmations"`
	Satoshis      int64   `json:"satoshis"` // net delta for the queried address
	Inputs        []int   `json:"inputIndexes"`
	Outputs       []int   `json:"outputIndexes"`
}

// TxInputDetail is one input of a DetailedTransaction.
type TxInputDetail struct {
	PrevTxID    string `json:"prevTxId"`
	OutputIndex int    `json:"outputIndex"`
	Script      string `json:"script"`
	ScriptAsm   string `json:"scriptAsm"`
	Sequence    uint32 `json:"sequence"`
	Address     string `json:"address"`
	Satoshis    int64  `json:"satoshis"`
}

// TxOutputDetail is one output of a DetailedTransaction.
type TxOutputDetail struct {
	Satoshis    int64  `json:"satoshis"`
	Script      string `json:"script"`
	ScriptAsm   string `json:"scriptAsm"`
	SpentTxID   string `json:"spentTxId"`
	SpentIndex  int    `json:"spentIndex"`
	SpentHeight int64  `json:"spentHeight"`
	Address     string `json:"address"`
}

// DetailedTransaction is a verbose, fee-annotated transaction view
// (SPEC_FULL.md §4.8).
type DetailedTransaction struct {
	Txid          string           `json:"txid"`
	Height        int64            `json:"height"`
	Confirmations int64            `json:"confirmations"`
	Time          int64            `json:"time"`
	Inputs        []TxInputDetail  `json:"inputs"`
	Outputs       []TxOutputDetail `json:"outputs"`
	InputSatoshis int64            `json:"inputSatoshis"`
	OutputSatoshis int64           `json:"outputSatoshis"`
	FeeSatoshis   int64            `json:"feeSatoshis"`
	IsCoinbase    bool             `json:"isCoinbase"`
}

// BlockOverview is the facade's canonical block summary, transformed
// from getBlock's daemon field names (SPEC_FULL.md §4.8: "chainwork ->
// chainWork, previousblockhash -> prevHash").
type BlockOverview struct {
	Hash          string `json:"hash"`
	PrevHash      string `json:"prevHash"`
	Height        int64  `json:"height"`
	Confirmations int64  `json:"confirmations"`
	ChainWork     string `json:"chainWork"`
	Time          int64  `json:"time"`
	TxCount       int    `json:"txCount"`
}

type rawBlock struct {
	Hash              string   `json:"hash"`
	PreviousBlockHash string   `json:"previousblockhash"`
	Height            int64    `json:"height"`
	Confirmations     int64    `json:"confirmations"`
	Chainwork         string   `json:"chainwork"`
	Time              int64    `json:"time"`
	Tx                []string `json:"tx"`
}

// NodeInfo merges getInfo/getblockchaininfo for the supplemented
// GetInfo operation (SPEC_FULL.md §4.8 expansion).
type NodeInfo struct {
	Version         int64   `json:"version"`
	ProtocolVersion int64   `json:"protocolVersion"`
	Blocks          int64   `json:"blocks"`
	Chain           string  `json:"chain"`
	Connections     int64   `json:"connections"`
	Difficulty      float64 `json:"difficulty"`
	TestNet         bool    `json:"testnet"`
	RelayFee        float64 `json:"relayFee"`
}

// AccountInfo mirrors the qtum-specific getAccountInfo RPC.
type AccountInfo struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
	Code    string `json:"code,omitempty"`
}

// DgpInfo mirrors getDgpInfo (Decentralized Governance Protocol params).
type DgpInfo struct {
	MaxBlockSize    int64 `json:"maxBlockSize"`
	MinGasPrice     int64 `json:"minGasPrice"`
	BlockGasLimit   int64 `json:"blockGasLimit"`
}

// MiningInfo mirrors getMiningInfo.
type MiningInfo struct {
	Blocks           int64   `json:"blocks"`
	Difficulty       float64 `json:"difficulty"`
	NetworkHashPS    float64 `json:"networkhashps"`
	PooledTx         int64   `json:"pooledtx"`
}

// StakingInfo mirrors getStakingInfo.
type StakingInfo struct {
	Enabled       bool    `json:"enabled"`
	Staking       bool    `json:"staking"`
	Weight        int64   `json:"weight"`
	NetStakeWeight int64  `json:"netstakeweight"`
	ExpectedTime  int64   `json:"expectedtime"`
}

// TransactionReceipt mirrors getTransactionReceipt (EVM-on-UTXO
// contract execution outcome).
type TransactionReceipt struct {
	TransactionHash string   `json:"transactionHash"`
	ContractAddress string   `json:"contractAddress"`
	GasUsed         int64    `json:"gasUsed"`
	Log             []string `json:"log"`
	Excepted        string   `json:"excepted"`
}

// Transaction is a transaction's immutable structural view: inputs and
// outputs as mined, with none of DetailedTransaction's Confirmations or
// derived fee, so it never needs tip-scoped invalidation.
type Transaction struct {
	Txid    string           `json:"txid"`
	Time    int64            `json:"time"`
	Inputs  []TxInputDetail  `json:"inputs"`
	Outputs []TxOutputDetail `json:"outputs"`
}

// Block is a block's immutable structural view: every field is fixed
// the instant the block is mined. Unlike BlockOverview it carries no
// Confirmations, so it never needs tip-scoped invalidation.
type Block struct {
	Hash      string   `json:"hash"`
	PrevHash  string   `json:"prevHash"`
	Height    int64    `json:"height"`
	ChainWork string   `json:"chainWork"`
	Time      int64    `json:"time"`
	Txids     []string `json:"txids"`
}

// SpentInfo identifies the transaction that spent one previously
// confirmed output (SPEC_FULL.md §4.8 expansion).
type SpentInfo struct {
	Txid   string `json:"txid"`
	Index  int    `json:"index"`
	Height int64  `json:"height"`
}
