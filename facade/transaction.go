package facade

import (
	"context"
	"encoding/json"
)

// rawVerboseTx mirrors getRawTransaction(txid, verbosity=1)'s daemon
// field names; the daemon resolves scripts to addresses itself.
type rawVerboseTx struct {
	Txid          string `json:"txid"`
	Height        int64  `json:"height"`
	Confirmations int64  `json:"confirmations"`
	Time          int64  `json:"time"`
	Vin           []struct {
		Txid      string `json:"txid"`
		Vout      int    `json:"vout"`
		Coinbase  string `json:"coinbase"`
		ScriptSig struct {
			Hex string `json:"hex"`
			Asm string `json:"asm"`
		} `json:"scriptSig"`
		Sequence uint32 `json:"sequence"`
		Address  string `json:"address"`
		Value    int64  `json:"valueSat"`
	} `json:"vin"`
	Vout []struct {
		ValueSat     int64  `json:"valueSat"`
		ScriptPubKey struct {
			Hex       string `json:"hex"`
			Asm       string `json:"asm"`
			Addresses []string `json:"addresses"`
		} `json:"scriptPubKey"`
		SpentTxID   string `json:"spentTxId"`
		SpentIndex  int    `json:"spentIndex"`
		SpentHeight int64  `json:"spentHeight"`
	} `json:"vout"`
}

// DetailedTransaction fetches a verbose raw transaction and derives fee
// and per-input/output detail (SPEC_FULL.md §4.8 "Detailed transaction").
// Cached tip-scoped rather than immutably: Confirmations climbs with
// every new block, so a stale entry must be evicted on tip advancement.
//
// AddressHistory fans out many goroutines that can land on the same
// txid (shared inputs, change outputs); the cache-miss fetch is
// collapsed through a singleflight.Group keyed by txid so only one
// getRawTransaction call goes out per concurrent stampede.
func (f *Facade) DetailedTransaction(ctx context.Context, txid string) (*DetailedTransaction, error) {
	if cached, ok := f.cache.Tip.DetailedTxByTxid.Get(txid); ok {
		dt := cached.(DetailedTransaction)
		return &dt, nil
	}

	v, err, _ := f.sf.Do("DetailedTransaction:"+txid, func() (any, error) {
		if cached, ok := f.cache.Tip.DetailedTxByTxid.Get(txid); ok {
			return cached.(DetailedTransaction), nil
		}

		var raw rawVerboseTx
		if err := f.call(ctx, &raw, "getRawTransaction", txid, 1); err != nil {
			return nil, err
		}

		inputs, outputs, inputSat, outputSat, isCoinbase := transformRawTx(raw)

		dt := DetailedTransaction{
			Txid:          raw.Txid,
			Height:        raw.Height,
			Confirmations: raw.Confirmations,
			Time:          raw.Time,
			Inputs:        inputs,
			Outputs:       outputs,
			IsCoinbase:    isCoinbase,
		}
		dt.InputSatoshis = inputSat
		dt.OutputSatoshis = outputSat
		if !isCoinbase {
			dt.FeeSatoshis = inputSat - outputSat
		}

		f.cache.Tip.DetailedTxByTxid.Set(txid, dt)
		return dt, nil
	})
	if err != nil {
		return nil, err
	}
	dt := v.(DetailedTransaction)
	return &dt, nil
}

// Transaction fetches a transaction's immutable structural view,
// omitting DetailedTransaction's reorg-sensitive Confirmations and
// derived fee so the result can be cached without ever going stale
// (SPEC_FULL.md §3 "transaction-by-txid").
func (f *Facade) Transaction(ctx context.Context, txid string) (*Transaction, error) {
	if cached, ok := f.cache.Immutable.TxByTxid.Get(txid); ok {
		tx := cached.(Transaction)
		return &tx, nil
	}

	var raw rawVerboseTx
	if err := f.call(ctx, &raw, "getRawTransaction", txid, 1); err != nil {
		return nil, err
	}
	inputs, outputs, _, _, _ := transformRawTx(raw)
	tx := Transaction{
		Txid:    raw.Txid,
		Time:    raw.Time,
		Inputs:  inputs,
		Outputs: outputs,
	}
	f.cache.Immutable.TxByTxid.Set(txid, tx)
	return &tx, nil
}

// transformRawTx derives per-input/output detail and satoshi totals
// from a verbose raw transaction response, shared by DetailedTransaction
// and Transaction so both build identical Inputs/Outputs shapes.
func transformRawTx(raw rawVerboseTx) (inputs []TxInputDetail, outputs []TxOutputDetail, inputSat, outputSat int64, isCoinbase bool) {
	for _, in := range raw.Vin {
		if in.Coinbase != "" {
			isCoinbase = true
			continue
		}
		inputSat += in.Value
		inputs = append(inputs, TxInputDetail{
			PrevTxID:    in.Txid,
			OutputIndex: in.Vout,
			Script:      in.ScriptSig.Hex,
			ScriptAsm:   in.ScriptSig.Asm,
			Sequence:    in.Sequence,
			Address:     in.Address,
			Satoshis:    in.Value,
		})
	}
	for _, out := range raw.Vout {
		outputSat += out.ValueSat
		addr := ""
		if len(out.ScriptPubKey.Addresses) > 0 {
			addr = out.ScriptPubKey.Addresses[0]
		}
		outputs = append(outputs, TxOutputDetail{
			Satoshis:    out.ValueSat,
			Script:      out.ScriptPubKey.Hex,
			ScriptAsm:   out.ScriptPubKey.Asm,
			SpentTxID:   out.SpentTxID,
			SpentIndex:  out.SpentIndex,
			SpentHeight: out.SpentHeight,
			Address:     addr,
		})
	}
	return inputs, outputs, inputSat, outputSat, isCoinbase
}

// RawTransaction fetches a transaction's raw serialized hex, immutable
// once mined (SPEC_FULL.md §3 "raw-transaction-by-txid").
func (f *Facade) RawTransaction(ctx context.Context, txid string) (string, error) {
	if cached, ok := f.cache.Immutable.RawTxByTxid.Get(txid); ok {
		return cached.(string), nil
	}
	var raw string
	if err := f.call(ctx, &raw, "getRawTransaction", txid, 0); err != nil {
		return "", err
	}
	f.cache.Immutable.RawTxByTxid.Set(txid, raw)
	return raw, nil
}

// RawTransactionJSON fetches the daemon's verbose getRawTransaction
// response verbatim, immutable once mined (SPEC_FULL.md §3
// "raw-json-transaction-by-txid"). Unlike DetailedTransaction this is
// not transformed or fee-derived: it is the daemon's own JSON, useful
// to callers wanting fields this facade doesn't otherwise expose.
func (f *Facade) RawTransactionJSON(ctx context.Context, txid string) (json.RawMessage, error) {
	if cached, ok := f.cache.Immutable.RawJSONTxByTxid.Get(txid); ok {
		return cached.(json.RawMessage), nil
	}
	var raw json.RawMessage
	if err := f.call(ctx, &raw, "getRawTransaction", txid, 1); err != nil {
		return nil, err
	}
	f.cache.Immutable.RawJSONTxByTxid.Set(txid, raw)
	return raw, nil
}

// BroadcastTransaction submits a raw transaction to the network
// (SPEC_FULL.md §4.8 expansion). Mutating calls are never cached.
func (f *Facade) BroadcastTransaction(ctx context.Context, rawTxHex string, allowAbsurdFees bool) (string, error) {
	var txid string
	if err := f.call(ctx, &txid, "sendRawTransaction", rawTxHex, allowAbsurdFees); err != nil {
		return "", err
	}
	return txid, nil
}
