package model

import "strconv"

// Block is a block summary.
type Block struct {
	Hash              string   `json:"hash"`
	Height            uint64   `json:"height"`
	Confirmations     int64    `json:"confirmations,omitempty"`
	TransactionHashes []string `json:"transaction_hashes,omitempty"`
}

// BlockTransactions is a block together with its transactions.
type BlockTransactions struct {
	Block
	Transactions []Transaction `json:"transactions"`
}

// BroadcastResult is the data service reply to a submitted transaction.
type BroadcastResult struct {
	Hash string `json:"hash"`
}

// OutpointKey formats a txid:index pair.
func OutpointKey(txid string, index uint32) string {
	return txid + ":" + strconv.FormatUint(uint64(index), 10)
}
