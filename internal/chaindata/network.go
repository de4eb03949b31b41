package chaindata

import (
	"fmt"

	"github.com/goodnatureofminers/chainspend/internal/model"
)

const (
	mainnetURL = "https://bitcoin.toshi.io/api/v0/"
	testnetURL = "https://testnet3.toshi.io/api/v0/"
)

// BaseURL returns the public data service endpoint for a network. Regtest has
// no public endpoint and is served from regtestAddr (host:port).
func BaseURL(network model.Network, regtestAddr string) (string, error) {
	switch network {
	case model.Mainnet:
		return mainnetURL, nil
	case model.Testnet:
		return testnetURL, nil
	case model.Regtest:
		if regtestAddr == "" {
			return "", fmt.Errorf("regtest requires a data service address")
		}
		return "http://" + regtestAddr + "/api/v0/", nil
	default:
		return "", fmt.Errorf("no data service endpoint for network %q", network)
	}
}
