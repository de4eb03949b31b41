// Package model defines the records exchanged with the blockchain data service.
package model

import "slices"

// Transaction is a transaction record as reported by the data service.
type Transaction struct {
	Hash          string   `json:"hash"`
	Confirmations int64    `json:"confirmations"`
	BlockHeight   int64    `json:"block_height,omitempty"`
	BlockHash     string   `json:"block_hash,omitempty"`
	Amount        int64    `json:"amount,omitempty"`
	Fees          int64    `json:"fees,omitempty"`
	Inputs        []Input  `json:"inputs"`
	Outputs       []Output `json:"outputs"`
}

// Input references a previous transaction output.
type Input struct {
	PreviousTransactionHash string   `json:"previous_transaction_hash"`
	OutputIndex             uint32   `json:"output_index"`
	Amount                  int64    `json:"amount,omitempty"`
	Addresses               []string `json:"addresses,omitempty"`
	Coinbase                string   `json:"coinbase,omitempty"`
}

// Output is a payment in the smallest unit to a set of addresses.
type Output struct {
	Amount     int64    `json:"amount"`
	Spent      bool     `json:"spent"`
	ScriptHex  string   `json:"script_hex,omitempty"`
	ScriptType string   `json:"script_type,omitempty"`
	Addresses  []string `json:"addresses"`
}

// PaysTo reports whether the output's address set contains address.
func (o Output) PaysTo(address string) bool {
	return slices.Contains(o.Addresses, address)
}

// OutputsPaying returns the indexes of every output paying address, in order.
func (t Transaction) OutputsPaying(address string) []uint32 {
	var idx []uint32
	for i, out := range t.Outputs {
		if out.PaysTo(address) {
			idx = append(idx, uint32(i))
		}
	}
	return idx
}

// FilterByConfirmations projects txs to those with exactly the given confirmation count.
func FilterByConfirmations(txs []Transaction, confirmations int64) []Transaction {
	filtered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Confirmations == confirmations {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// Hashes returns the hash of every transaction, preserving order.
func Hashes(txs []Transaction) []string {
	hashes := make([]string, 0, len(txs))
	for _, tx := range txs {
		hashes = append(hashes, tx.Hash)
	}
	return hashes
}
