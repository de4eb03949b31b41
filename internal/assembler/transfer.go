package assembler

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/chainspend/internal/keys"
)

// TransferRequest spends one previous output to a recipient and returns the change.
type TransferRequest struct {
	PrevTxID string
	// OutputIndex disambiguates when the previous transaction pays the key address more than once.
	OutputIndex *uint32
	Secret      string
	Recipient   string
	Amount      btcutil.Amount
	Fee         btcutil.Amount
	// ChangeAddress defaults to the key address.
	ChangeAddress string
}

// CreateTx builds a payment of Amount to Recipient plus a change output of matched - Amount - Fee.
func (a *Assembler) CreateTx(ctx context.Context, req TransferRequest) (raw *keys.RawTransaction, err error) {
	started := time.Now()
	defer func() { a.observe(variantTransfer, started, raw, err) }()

	if err := checkAmounts(req.Amount, req.Fee); err != nil {
		return nil, err
	}
	key, err := a.deriveKey(req.Secret)
	if err != nil {
		return nil, err
	}
	changeAddress := req.ChangeAddress
	if changeAddress == "" {
		changeAddress = key.Address
	}
	for _, address := range []string{req.Recipient, changeAddress} {
		if err := a.validateRecipient(address); err != nil {
			return nil, err
		}
	}

	prev, err := a.txs.Transaction(ctx, req.PrevTxID)
	if err != nil {
		return nil, previousTxError(req.PrevTxID, err)
	}
	index, err := matchOutput(prev, key.Address, req.OutputIndex)
	if err != nil {
		return nil, err
	}

	available := btcutil.Amount(prev.Outputs[index].Amount)
	change := available - req.Amount - req.Fee
	if change < 0 || req.Amount+req.Fee < 0 {
		return nil, fmt.Errorf("%w: output %s:%d holds %d, need %d plus fee %d",
			ErrInsufficientFunds, prev.Hash, index, available, req.Amount, req.Fee)
	}

	pkScript, err := keys.PkScriptFromHex(prev.Outputs[index].ScriptHex)
	if err != nil {
		return nil, err
	}

	return a.build(variantTransfer,
		[]keys.InputSpec{{
			PrevTxID:    req.PrevTxID,
			OutputIndex: index,
			Amount:      available,
			PkScript:    pkScript,
			Key:         key,
		}},
		[]keys.OutputSpec{
			keys.PayTo(req.Recipient, req.Amount),
			keys.PayTo(changeAddress, change),
		},
	)
}
