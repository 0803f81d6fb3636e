package network

import "fmt"

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:14265/rpc", User: "offsign", Password: "offsign"},
	"testnet": {URL: "http://localhost:14266/rpc", User: "offsign", Password: "offsign"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (OFFSIGN_NODE_URL, OFFSIGN_NODE_USER, OFFSIGN_NODE_PASS)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env["OFFSIGN_NODE_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["OFFSIGN_NODE_USER"]; ok && v != "" {
			result.User = v
		}
		if v, ok := env["OFFSIGN_NODE_PASS"]; ok && v != "" {
			result.Password = v
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit node configuration (set --node-url, OFFSIGN_NODE_URL, or config file)", network)
	}

	return &result, nil
}
