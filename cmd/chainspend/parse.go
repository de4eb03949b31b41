package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/chainspend/internal/assembler"
	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

// parseInput reads "txid:secret" or "txid:secret:index".
func parseInput(value string) (assembler.GeneralInput, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return assembler.GeneralInput{}, fmt.Errorf("input %q: want txid:secret[:index]", value)
	}
	in := assembler.GeneralInput{PrevTxID: parts[0], Secret: parts[1]}
	if len(parts) == 3 {
		idx, err := parseIndex(parts[2])
		if err != nil {
			return assembler.GeneralInput{}, fmt.Errorf("input %q: %w", value, err)
		}
		in.OutputIndex = idx
	}
	return in, nil
}

// parsePayment reads "address:satoshis".
func parsePayment(value string) (assembler.Payment, error) {
	address, amount, ok := strings.Cut(value, ":")
	if !ok || address == "" {
		return assembler.Payment{}, fmt.Errorf("payment %q: want address:satoshis", value)
	}
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return assembler.Payment{}, fmt.Errorf("payment %q: %w", value, err)
	}
	return assembler.Payment{Address: address, Amount: btcutil.Amount(n)}, nil
}

// pageOf returns nil when neither limit nor offset is set.
func pageOf(limit, offset int) (*chaindata.Pagination, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("limit %d and offset %d must not be negative", limit, offset)
	}
	if limit == 0 && offset == 0 {
		return nil, nil
	}
	return &chaindata.Pagination{Limit: limit, Offset: offset}, nil
}

// parseIndex returns nil for an empty value.
func parseIndex(value string) (*uint32, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("output index: %w", err)
	}
	idx, err := safe.Uint32(n)
	if err != nil {
		return nil, fmt.Errorf("output index: %w", err)
	}
	return &idx, nil
}

// decodeHistory accepts a transaction array or an address transactions document.
func decodeHistory(data []byte) ([]model.Transaction, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty history")
	}
	if data[0] == '[' {
		var txs []model.Transaction
		if err := json.Unmarshal(data, &txs); err != nil {
			return nil, fmt.Errorf("decode transactions: %w", err)
		}
		return txs, nil
	}
	var doc model.AddressTransactions
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode address transactions: %w", err)
	}
	return doc.History(), nil
}

func loadHistory(path string) ([]model.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return decodeHistory(data)
}
