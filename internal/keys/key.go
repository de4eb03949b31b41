package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/chainspend/internal/model"
)

var (
	ErrInvalidSecret = errors.New("invalid private key")
	ErrWrongNetwork  = errors.New("private key belongs to another network")
)

// SigningKey holds a private key and the P2PKH address derived from it.
type SigningKey struct {
	Address    string
	addr       btcutil.Address
	priv       *btcec.PrivateKey
	compressed bool
}

// String never reveals the secret.
func (k *SigningKey) String() string {
	return k.Address
}

// Provider derives keys, validates addresses and builds signed transactions for one network.
type Provider struct {
	network model.Network
	params  *chaincfg.Params
}

// NewProvider returns a Provider bound to network.
func NewProvider(network model.Network) (*Provider, error) {
	params, err := chainParamsForNetwork(network)
	if err != nil {
		return nil, err
	}
	return &Provider{network: network, params: params}, nil
}

// Network returns the network the provider is bound to.
func (p *Provider) Network() model.Network {
	return p.network
}

// DeriveKey parses a WIF or a 64 char hex private key and derives its address.
func (p *Provider) DeriveKey(secret string) (*SigningKey, error) {
	secret = strings.TrimSpace(secret)

	var (
		priv       *btcec.PrivateKey
		compressed bool
	)
	if wif, err := btcutil.DecodeWIF(secret); err == nil {
		if !wif.IsForNet(p.params) {
			return nil, fmt.Errorf("%w: expected %s", ErrWrongNetwork, p.network)
		}
		priv, compressed = wif.PrivKey, wif.CompressPubKey
	} else if raw, herr := hex.DecodeString(secret); herr == nil && len(raw) == btcec.PrivKeyBytesLen {
		priv, _ = btcec.PrivKeyFromBytes(raw)
		compressed = true
	} else {
		return nil, ErrInvalidSecret
	}

	var pub []byte
	if compressed {
		pub = priv.PubKey().SerializeCompressed()
	} else {
		pub = priv.PubKey().SerializeUncompressed()
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub), p.params)
	if err != nil {
		return nil, fmt.Errorf("derive address: %w", err)
	}

	return &SigningKey{
		Address:    addr.EncodeAddress(),
		addr:       addr,
		priv:       priv,
		compressed: compressed,
	}, nil
}

// ValidateAddress reports whether address is well formed for the provider's network.
func (p *Provider) ValidateAddress(address string) bool {
	addr, err := btcutil.DecodeAddress(address, p.params)
	if err != nil {
		return false
	}
	return addr.IsForNet(p.params)
}
