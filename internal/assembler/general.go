package assembler

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
	"github.com/goodnatureofminers/chainspend/pkg/workerpool"
)

// GeneralInput spends the output of PrevTxID paying the address of Secret.
type GeneralInput struct {
	PrevTxID    string
	OutputIndex *uint32
	Secret      string
}

type Payment struct {
	Address string
	Amount  btcutil.Amount
}

// GeneralRequest has no change output; whatever inputs exceed payments by is the fee.
type GeneralRequest struct {
	Inputs   []GeneralInput
	Payments []Payment
	// MetadataHex, when non-empty, adds a zero value data output after the payments.
	MetadataHex string
}

// CreateGeneralTx builds an N input, M output transaction, signing each input with its own key.
func (a *Assembler) CreateGeneralTx(ctx context.Context, req GeneralRequest) (raw *keys.RawTransaction, err error) {
	started := time.Now()
	defer func() { a.observe(variantGeneral, started, raw, err) }()

	if len(req.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(req.Payments) == 0 && req.MetadataHex == "" {
		return nil, ErrNoRecipients
	}

	outputs := make([]keys.OutputSpec, 0, len(req.Payments)+1)
	var paid btcutil.Amount
	for _, p := range req.Payments {
		if err := checkAmounts(p.Amount); err != nil {
			return nil, err
		}
		if err := a.validateRecipient(p.Address); err != nil {
			return nil, err
		}
		if paid, err = safe.AddInt64(paid, p.Amount); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
		}
		outputs = append(outputs, keys.PayTo(p.Address, p.Amount))
	}
	if req.MetadataHex != "" {
		data, err := hex.DecodeString(req.MetadataHex)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
		}
		outputs = append(outputs, keys.Metadata(data))
	}

	signers := make([]*keys.SigningKey, 0, len(req.Inputs))
	for i, in := range req.Inputs {
		key, err := a.deriveKey(in.Secret)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		signers = append(signers, key)
	}

	prevs, err := workerpool.Map(ctx, a.workers, req.Inputs,
		func(ctx context.Context, in GeneralInput) (*model.Transaction, error) {
			prev, err := a.txs.Transaction(ctx, in.PrevTxID)
			if err != nil {
				return nil, previousTxError(in.PrevTxID, err)
			}
			return prev, nil
		})
	if err != nil {
		return nil, err
	}

	inputs := make([]keys.InputSpec, 0, len(req.Inputs))
	var funded btcutil.Amount
	for i, in := range req.Inputs {
		index, err := matchOutput(prevs[i], signers[i].Address, in.OutputIndex)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		out := prevs[i].Outputs[index]
		pkScript, err := keys.PkScriptFromHex(out.ScriptHex)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if funded, err = safe.AddInt64(funded, btcutil.Amount(out.Amount)); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs = append(inputs, keys.InputSpec{
			PrevTxID:    in.PrevTxID,
			OutputIndex: index,
			Amount:      btcutil.Amount(out.Amount),
			PkScript:    pkScript,
			Key:         signers[i],
		})
	}

	if paid > funded {
		return nil, fmt.Errorf("%w: inputs hold %d, payments need %d", ErrInsufficientFunds, funded, paid)
	}

	return a.build(variantGeneral, inputs, outputs)
}
