// Package commands defines the offsign CLI.
//
// # Commands
//
//   - mnemonic   Generate a BIP39 mnemonic
//   - seed       Encrypt a mnemonic's seed into the data directory
//   - address    Derive the bech32 address of a chain
//   - account    Create accounts and hand out their next unused chains
//   - prepare    Build a prepared transaction from outputs held by a node
//   - inspect    Summarize a prepared transaction file
//   - sign       Sign a prepared transaction file, locally or on a remote signer
//   - submit     Send a signed transaction file to a node
//   - serve      Run the remote signer (gRPC) and the HTTP API
//
// # Configuration
//
// Settings come from the config file in the data directory, then OFFSIGN_*
// environment variables, then flags. The signing key comes from
// OFFSIGN_MNEMONIC or from the encrypted seed file unlocked with
// OFFSIGN_PASSWORD.
package commands
