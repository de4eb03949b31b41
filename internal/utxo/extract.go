package utxo

import (
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
	"github.com/scylladb/go-set/strset"
)

// ExtractUnspent derives the unspent outputs of address from its history alone.
//
// An output counts as unspent when it pays address, the service has not flagged it spent,
// and no input of a transaction in the same history consumes it. Outputs spent by
// transactions outside the history cannot be detected, so the result is best effort.
func ExtractUnspent(history []model.Transaction, address string) []model.UnspentOutput {
	consumed := strset.New()
	for _, tx := range history {
		for _, in := range tx.Inputs {
			if in.Coinbase != "" || in.PreviousTransactionHash == "" {
				continue
			}
			consumed.Add(model.OutpointKey(in.PreviousTransactionHash, in.OutputIndex))
		}
	}

	seen := strset.New()
	var unspent []model.UnspentOutput
	for _, tx := range history {
		for _, index := range tx.OutputsPaying(address) {
			key := model.OutpointKey(tx.Hash, index)
			out := tx.Outputs[index]
			if out.Spent || consumed.Has(key) || seen.Has(key) {
				continue
			}
			seen.Add(key)
			unspent = append(unspent, model.UnspentOutput{
				TxID:      tx.Hash,
				Index:     index,
				Amount:    out.Amount,
				ScriptHex: out.ScriptHex,
				Addresses: out.Addresses,
			})
		}
	}
	return unspent
}

// Total sums the amounts of outputs.
func Total(outputs []model.UnspentOutput) (int64, error) {
	amounts := make([]int64, 0, len(outputs))
	for _, out := range outputs {
		amounts = append(amounts, out.Amount)
	}
	return safe.SumInt64(amounts...)
}
