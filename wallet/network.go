package wallet

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Registered BIP44 coin types.
const (
	CoinTypeIOTA    = 4218
	CoinTypeShimmer = 4219
)

// NetworkConfig defines the parameters that tie keys and transactions to a network.
type NetworkConfig struct {
	Name         string `json:"name"`
	ProtocolName string `json:"protocol_name"`
	CoinType     uint32 `json:"coin_type"`
	Bech32HRP    string `json:"bech32_hrp"`
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{
		Name:         "mainnet",
		ProtocolName: "shimmer",
		CoinType:     CoinTypeShimmer,
		Bech32HRP:    "smr",
	}

	TestNet = NetworkConfig{
		Name:         "testnet",
		ProtocolName: "testnet-1",
		CoinType:     CoinTypeShimmer,
		Bech32HRP:    "rms",
	}

	RegTest = NetworkConfig{
		Name:         "regtest",
		ProtocolName: "private_tangle",
		CoinType:     CoinTypeShimmer,
		Bech32HRP:    "tst",
	}
)

// predefined maps network names to their configs.
var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// LoadCustomNetwork loads a NetworkConfig from a JSON file.
func LoadCustomNetwork(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to read network config: %w", err)
	}

	var config NetworkConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("wallet: failed to parse network config: %w", err)
	}

	if config.Name == "" || config.ProtocolName == "" || config.Bech32HRP == "" {
		return nil, fmt.Errorf("wallet: network config needs name, protocol_name and bech32_hrp")
	}

	return &config, nil
}

// NetworkID is the first 8 bytes (little-endian) of the BLAKE2b-256 hash
// of the protocol name. Essences carry it so a signature is only valid on
// one network.
func (n *NetworkConfig) NetworkID() uint64 {
	sum := blake2b.Sum256([]byte(n.ProtocolName))
	return binary.LittleEndian.Uint64(sum[:8])
}

// CheckChain verifies that c is a BIP44 chain under the network's coin type.
func (n *NetworkConfig) CheckChain(c Chain) error {
	coin, ok := c.CoinType()
	if !ok {
		return fmt.Errorf("%w: %s is not a BIP44 chain", ErrCoinTypeMismatch, c)
	}
	if coin != n.CoinType {
		return fmt.Errorf("%w: %s has coin type %d, %s uses %d", ErrCoinTypeMismatch, c, coin, n.Name, n.CoinType)
	}
	return nil
}
