package keys

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// keyring serves the signing keys of one build to txauthor.
type keyring struct {
	keys   map[string]*SigningKey
	params *chaincfg.Params
}

func newKeyring(params *chaincfg.Params) *keyring {
	return &keyring{keys: make(map[string]*SigningKey), params: params}
}

func (r *keyring) add(k *SigningKey) {
	r.keys[k.Address] = k
}

func (r *keyring) GetKey(addr btcutil.Address) (*btcec.PrivateKey, bool, error) {
	k, ok := r.keys[addr.EncodeAddress()]
	if !ok {
		return nil, false, fmt.Errorf("no signing key for address %s", addr.EncodeAddress())
	}
	return k.priv, k.compressed, nil
}

// P2SH inputs are not supported.
func (r *keyring) GetScript(addr btcutil.Address) ([]byte, error) {
	return nil, fmt.Errorf("no redeem script for address %s", addr.EncodeAddress())
}

func (r *keyring) ChainParams() *chaincfg.Params {
	return r.params
}
