package assembler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/utxo"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
	"github.com/scylladb/go-set/strset"
	"go.uber.org/zap"
)

// CashoutRequest drains every key's unspent outputs and splits the total minus Fee evenly across Recipients.
type CashoutRequest struct {
	Secrets    []string
	Recipients []string
	Fee        btcutil.Amount
}

type sourceOutputs struct {
	key     *keys.SigningKey
	outputs []model.UnspentOutput
}

// CreateMultipleAddressesCashoutTx drains the unspent outputs of every key into the recipients.
// The integer division remainder is left to the fee.
func (a *Assembler) CreateMultipleAddressesCashoutTx(ctx context.Context, req CashoutRequest) (raw *keys.RawTransaction, err error) {
	started := time.Now()
	defer func() { a.observe(variantCashout, started, raw, err) }()

	return a.cashout(ctx, variantCashout, req)
}

// CreateSingleAddressCashoutTx sends everything one key holds, minus fee, to recipient.
func (a *Assembler) CreateSingleAddressCashoutTx(
	ctx context.Context,
	secret, recipient string,
	fee btcutil.Amount,
) (raw *keys.RawTransaction, err error) {
	started := time.Now()
	defer func() { a.observe(variantSingleCashout, started, raw, err) }()

	return a.cashout(ctx, variantSingleCashout, CashoutRequest{
		Secrets:    []string{secret},
		Recipients: []string{recipient},
		Fee:        fee,
	})
}

// CreateMultipleAddressesCashoutTxOffline is CreateMultipleAddressesCashoutTx over a caller supplied history.
func (a *Assembler) CreateMultipleAddressesCashoutTxOffline(
	req CashoutRequest,
	history []model.Transaction,
) (raw *keys.RawTransaction, err error) {
	started := time.Now()
	defer func() { a.observe(variantCashoutOffline, started, raw, err) }()

	return a.cashoutOffline(variantCashoutOffline, req, history)
}

// CreateSingleAddressCashoutTxOffline is CreateSingleAddressCashoutTx over a caller supplied history.
func (a *Assembler) CreateSingleAddressCashoutTxOffline(
	secret, recipient string,
	fee btcutil.Amount,
	history []model.Transaction,
) (raw *keys.RawTransaction, err error) {
	started := time.Now()
	defer func() { a.observe(variantSingleCashoutOffline, started, raw, err) }()

	return a.cashoutOffline(variantSingleCashoutOffline, CashoutRequest{
		Secrets:    []string{secret},
		Recipients: []string{recipient},
		Fee:        fee,
	}, history)
}

func (a *Assembler) cashout(ctx context.Context, variant string, req CashoutRequest) (*keys.RawTransaction, error) {
	signers, err := a.prepareCashout(req)
	if err != nil {
		return nil, err
	}

	sources, err := a.snapshot(ctx, signers)
	if err != nil {
		return nil, err
	}
	if countOutputs(sources) == 0 {
		return nil, ErrNoUtxos
	}

	if a.settleDelay > 0 {
		if err := a.sleep(ctx, a.settleDelay); err != nil {
			return nil, err
		}
		settled, err := a.snapshot(ctx, signers)
		if err != nil {
			return nil, err
		}
		if !sameOutputs(sources, settled) {
			return nil, ErrSnapshotChanged
		}
	}

	return a.buildCashout(variant, sources, req)
}

func (a *Assembler) cashoutOffline(variant string, req CashoutRequest, history []model.Transaction) (*keys.RawTransaction, error) {
	signers, err := a.prepareCashout(req)
	if err != nil {
		return nil, err
	}

	sources := make([]sourceOutputs, 0, len(signers))
	for _, key := range signers {
		sources = append(sources, sourceOutputs{key: key, outputs: utxo.ExtractUnspent(history, key.Address)})
	}
	if countOutputs(sources) == 0 {
		return nil, ErrNoUtxos
	}

	return a.buildCashout(variant, sources, req)
}

// prepareCashout derives one key per distinct source address and validates recipients.
func (a *Assembler) prepareCashout(req CashoutRequest) ([]*keys.SigningKey, error) {
	if len(req.Secrets) == 0 {
		return nil, ErrNoInputs
	}
	if len(req.Recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if err := checkAmounts(req.Fee); err != nil {
		return nil, err
	}
	for _, recipient := range req.Recipients {
		if err := a.validateRecipient(recipient); err != nil {
			return nil, err
		}
	}

	seen := strset.New()
	signers := make([]*keys.SigningKey, 0, len(req.Secrets))
	for _, secret := range req.Secrets {
		key, err := a.deriveKey(secret)
		if err != nil {
			return nil, err
		}
		if seen.Has(key.Address) {
			a.logger.Debug("skipping duplicate source address", zap.String("address", key.Address))
			continue
		}
		seen.Add(key.Address)
		signers = append(signers, key)
	}
	return signers, nil
}

func (a *Assembler) snapshot(ctx context.Context, signers []*keys.SigningKey) ([]sourceOutputs, error) {
	sources := make([]sourceOutputs, 0, len(signers))
	for _, key := range signers {
		outputs, err := a.unspent.Unspent(ctx, key.Address)
		switch {
		case errors.Is(err, chaindata.ErrNotFound):
			outputs = nil
		case err != nil:
			return nil, fmt.Errorf("unspent outputs of %s via %s: %w", key.Address, a.unspent.Name(), err)
		}
		sources = append(sources, sourceOutputs{key: key, outputs: outputs})
	}
	return sources, nil
}

func (a *Assembler) buildCashout(variant string, sources []sourceOutputs, req CashoutRequest) (*keys.RawTransaction, error) {
	var (
		inputs []keys.InputSpec
		total  btcutil.Amount
	)
	for _, src := range sources {
		for _, out := range src.outputs {
			pkScript, err := keys.PkScriptFromHex(out.ScriptHex)
			if err != nil {
				return nil, fmt.Errorf("outpoint %s: %w", out.Outpoint(), err)
			}
			inputs = append(inputs, keys.InputSpec{
				PrevTxID:    out.TxID,
				OutputIndex: out.Index,
				Amount:      btcutil.Amount(out.Amount),
				PkScript:    pkScript,
				Key:         src.key,
			})
		}
		amount, err := utxo.Total(src.outputs)
		if err != nil {
			return nil, err
		}
		if total, err = safe.AddInt64(total, btcutil.Amount(amount)); err != nil {
			return nil, err
		}
	}

	recipients := btcutil.Amount(len(req.Recipients))
	share := (total - req.Fee) / recipients
	if share <= 0 {
		return nil, fmt.Errorf("%w: %d available, fee %d, %d recipients", ErrInsufficientFunds, total, req.Fee, recipients)
	}

	outputs := make([]keys.OutputSpec, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		outputs = append(outputs, keys.PayTo(recipient, share))
	}

	a.logger.Debug("cashout split",
		zap.String("variant", variant),
		zap.Int("sources", len(sources)),
		zap.Int64("total", int64(total)),
		zap.Int64("share", int64(share)),
		zap.Int64("remainder", int64(total-req.Fee-share*recipients)),
	)
	return a.build(variant, inputs, outputs)
}

func countOutputs(sources []sourceOutputs) int {
	n := 0
	for _, src := range sources {
		n += len(src.outputs)
	}
	return n
}

func sameOutputs(before, after []sourceOutputs) bool {
	return outputSet(before).IsEqual(outputSet(after))
}

func outputSet(sources []sourceOutputs) *strset.Set {
	set := strset.New()
	for _, src := range sources {
		for _, out := range src.outputs {
			set.Add(src.key.Address + "/" + out.Outpoint() + "/" + strconv.FormatInt(out.Amount, 10))
		}
	}
	return set
}
