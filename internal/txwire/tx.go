// Package txwire parses the raw transaction bytes pushed on the ZMQ
// rawtx topic far enough to recover each input's previous outpoint and
// each output's script and value. Turning a script into an address
// string is explicitly out of scope (SPEC_FULL.md §1: "the
// address/script decoding library ... used purely as a pure function
// script -> address string"); that step lives behind the
// ScriptDecoder interface in internal/addressdecoder.
package txwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// OutPoint identifies a previous transaction output being spent.
type OutPoint struct {
	Txid  string // big-endian hex, as displayed by the daemon's RPCs
	Index uint32
}

// TxIn is one transaction input.
type TxIn struct {
	PrevOut  OutPoint
	Script   []byte
	Sequence uint32
}

// TxOut is one transaction output.
type TxOut struct {
	Satoshis int64
	Script   []byte
}

// Tx is a decoded transaction: version/locktime plus every input and
// output. Witness data, if present, is skipped (not needed to extract
// addresses, and the daemon's own txid always excludes it).
type Tx struct {
	Version  int32
	Inputs   []TxIn
	Outputs  []TxOut
	LockTime uint32
}

// Decode parses raw wire-format transaction bytes.
func Decode(raw []byte) (*Tx, error) {
	r := bytes.NewReader(raw)
	tx := &Tx{}

	if err := binary.Read(r, binary.LittleEndian, &tx.Version); err != nil {
		return nil, fmt.Errorf("txwire: read version: %w", err)
	}

	marker, flag, err := peekSegwitMarker(r)
	if err != nil {
		return nil, err
	}
	segwit := marker == 0x00 && flag != 0x00

	inCount, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("txwire: read input count: %w", err)
	}
	tx.Inputs = make([]TxIn, inCount)
	for i := range tx.Inputs {
		in, err := readTxIn(r)
		if err != nil {
			return nil, fmt.Errorf("txwire: read input %d: %w", i, err)
		}
		tx.Inputs[i] = *in
	}

	outCount, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("txwire: read output count: %w", err)
	}
	tx.Outputs = make([]TxOut, outCount)
	for i := range tx.Outputs {
		out, err := readTxOut(r)
		if err != nil {
			return nil, fmt.Errorf("txwire: read output %d: %w", i, err)
		}
		tx.Outputs[i] = *out
	}

	if segwit {
		for range tx.Inputs {
			if err := skipWitness(r); err != nil {
				return nil, fmt.Errorf("txwire: skip witness: %w", err)
			}
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &tx.LockTime); err != nil {
		return nil, fmt.Errorf("txwire: read locktime: %w", err)
	}
	return tx, nil
}

// peekSegwitMarker looks at the next two bytes without consuming them
// unless they form the segwit marker/flag pair (0x00, 0x01+).
func peekSegwitMarker(r *bytes.Reader) (marker, flag byte, err error) {
	pos, _ := r.Seek(0, io.SeekCurrent)
	var buf [2]byte
	n, err := r.Read(buf[:])
	if err != nil || n < 2 {
		_, _ = r.Seek(pos, io.SeekStart)
		return 0, 0, nil
	}
	if buf[0] == 0x00 && buf[1] != 0x00 {
		return buf[0], buf[1], nil
	}
	_, _ = r.Seek(pos, io.SeekStart)
	return 0, 0, nil
}

func readVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}
	switch prefix[0] {
	case 0xfd:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 0xfe:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 0xff:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return v, nil
	default:
		return uint64(prefix[0]), nil
	}
}

func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readTxIn(r io.Reader) (*TxIn, error) {
	var prevTxid [32]byte
	if _, err := io.ReadFull(r, prevTxid[:]); err != nil {
		return nil, err
	}
	var index uint32
	if err := binary.Read(r, binary.LittleEndian, &index); err != nil {
		return nil, err
	}
	script, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	var sequence uint32
	if err := binary.Read(r, binary.LittleEndian, &sequence); err != nil {
		return nil, err
	}
	return &TxIn{
		PrevOut:  OutPoint{Txid: reverseHex(prevTxid[:]), Index: index},
		Script:   script,
		Sequence: sequence,
	}, nil
}

func readTxOut(r io.Reader) (*TxOut, error) {
	var satoshis int64
	if err := binary.Read(r, binary.LittleEndian, &satoshis); err != nil {
		return nil, err
	}
	script, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &TxOut{Satoshis: satoshis, Script: script}, nil
}

func skipWitness(r io.Reader) error {
	count, err := readVarInt(r)
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		if _, err := readVarBytes(r); err != nil {
			return err
		}
	}
	return nil
}

// reverseHex returns b reversed and hex-encoded, matching the daemon's
// display convention for txids and block hashes (wire format is
// internally little-endian).
func reverseHex(b []byte) string {
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return fmt.Sprintf("%x", rev)
}
