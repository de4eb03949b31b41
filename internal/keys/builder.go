package keys

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

var (
	ErrNoInputs       = errors.New("transaction has no inputs")
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrNegativeAmount = errors.New("negative output amount")
	ErrInvalidAddress = model.ErrInvalidAddress
	ErrKeyMismatch    = errors.New("previous output is not payable by the signing key")
)

// InputSpec references a previous output and the key that can spend it.
// An empty PkScript is derived from the key's address.
type InputSpec struct {
	PrevTxID    string
	OutputIndex uint32
	Amount      btcutil.Amount
	PkScript    []byte
	Key         *SigningKey
}

// OutputSpec is either a payment to Address or a data carrier holding Metadata.
type OutputSpec struct {
	Amount   btcutil.Amount
	Address  string
	Metadata []byte
}

// PayTo returns a payment output.
func PayTo(address string, amount btcutil.Amount) OutputSpec {
	return OutputSpec{Address: address, Amount: amount}
}

// Metadata returns a zero value data carrier output.
func Metadata(data []byte) OutputSpec {
	return OutputSpec{Metadata: data}
}

// PkScriptFromHex decodes a previous output script reported by the data service.
func PkScriptFromHex(scriptHex string) ([]byte, error) {
	if scriptHex == "" {
		return nil, nil
	}
	return decodeScriptHex(scriptHex)
}

// BuildTransaction assembles the inputs and outputs in order and signs every input.
func (p *Provider) BuildTransaction(inputs []InputSpec, outputs []OutputSpec) (*RawTransaction, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	ring := newKeyring(p.params)
	prevScripts := make([][]byte, 0, len(inputs))
	values := make([]btcutil.Amount, 0, len(inputs))
	var inputTotal btcutil.Amount

	for i, in := range inputs {
		if in.Key == nil {
			return nil, fmt.Errorf("input %d: missing signing key", i)
		}
		hash, err := chainhash.NewHashFromStr(in.PrevTxID)
		if err != nil {
			return nil, fmt.Errorf("input %d: parse txid %q: %w", i, in.PrevTxID, err)
		}
		pkScript := in.PkScript
		if len(pkScript) == 0 {
			if pkScript, err = txscript.PayToAddrScript(in.Key.addr); err != nil {
				return nil, fmt.Errorf("input %d: build script: %w", i, err)
			}
		}
		if err := p.checkPayable(pkScript, in.Key); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, in.OutputIndex), nil, nil))
		prevScripts = append(prevScripts, pkScript)
		values = append(values, in.Amount)
		inputTotal += in.Amount
		ring.add(in.Key)
	}

	for i, out := range outputs {
		txOut, err := p.txOut(out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		tx.AddTxOut(txOut)
	}

	if err := txauthor.AddAllInputScripts(tx, prevScripts, values, ring); err != nil {
		return nil, fmt.Errorf("sign inputs: %w", err)
	}

	return newRawTransaction(tx, inputTotal, p.params)
}

func (p *Provider) checkPayable(pkScript []byte, key *SigningKey) error {
	addrs, err := scriptAddresses(pkScript, p.params)
	if err != nil {
		return fmt.Errorf("decode previous script: %w", err)
	}
	for _, addr := range addrs {
		if addr == key.Address {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrKeyMismatch, key.Address)
}

func (p *Provider) txOut(out OutputSpec) (*wire.TxOut, error) {
	if out.Amount < 0 {
		return nil, ErrNegativeAmount
	}
	if out.Metadata != nil {
		script, err := txscript.NullDataScript(out.Metadata)
		if err != nil {
			return nil, fmt.Errorf("build data script: %w", err)
		}
		return wire.NewTxOut(int64(out.Amount), script), nil
	}
	addr, err := btcutil.DecodeAddress(out.Address, p.params)
	if err != nil || !addr.IsForNet(p.params) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, out.Address)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("build script: %w", err)
	}
	return wire.NewTxOut(int64(out.Amount), script), nil
}

// OutputSummary describes one output of a built transaction.
type OutputSummary struct {
	Index     uint32         `json:"index"`
	Amount    btcutil.Amount `json:"amount"`
	Class     string         `json:"class"`
	Addresses []string       `json:"addresses,omitempty"`
	Dust      bool           `json:"dust,omitempty"`
}

// RawTransaction is a fully signed transaction ready for broadcast.
type RawTransaction struct {
	tx         *wire.MsgTx
	hex        string
	inputTotal btcutil.Amount
	outputs    []OutputSummary
}

func newRawTransaction(tx *wire.MsgTx, inputTotal btcutil.Amount, params *chaincfg.Params) (*RawTransaction, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	outputs := make([]OutputSummary, 0, len(tx.TxOut))
	for i, out := range tx.TxOut {
		index, err := safe.Uint32(i)
		if err != nil {
			return nil, fmt.Errorf("output index: %w", err)
		}
		addrs, _ := scriptAddresses(out.PkScript, params)
		outputs = append(outputs, OutputSummary{
			Index:     index,
			Amount:    btcutil.Amount(out.Value),
			Class:     txscript.GetScriptClass(out.PkScript).String(),
			Addresses: addrs,
			Dust:      txrules.IsDustOutput(out, txrules.DefaultRelayFeePerKb),
		})
	}

	return &RawTransaction{
		tx:         tx,
		hex:        hex.EncodeToString(buf.Bytes()),
		inputTotal: inputTotal,
		outputs:    outputs,
	}, nil
}

// Hex returns the serialized transaction.
func (r *RawTransaction) Hex() string { return r.hex }

// TxID returns the transaction hash.
func (r *RawTransaction) TxID() string { return r.tx.TxHash().String() }

// MsgTx returns a copy of the wire transaction.
func (r *RawTransaction) MsgTx() *wire.MsgTx { return r.tx.Copy() }

func (r *RawTransaction) InputCount() int { return len(r.tx.TxIn) }

func (r *RawTransaction) Outputs() []OutputSummary {
	out := make([]OutputSummary, len(r.outputs))
	copy(out, r.outputs)
	return out
}

// Fee is the difference between the spent input values and the output values.
func (r *RawTransaction) Fee() btcutil.Amount {
	fee := r.inputTotal
	for _, out := range r.tx.TxOut {
		fee -= btcutil.Amount(out.Value)
	}
	return fee
}

// DustOutputs returns the indexes of outputs below the default relay dust threshold.
func (r *RawTransaction) DustOutputs() []uint32 {
	var dust []uint32
	for _, out := range r.outputs {
		if out.Dust {
			dust = append(dust, out.Index)
		}
	}
	return dust
}
