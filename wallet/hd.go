package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/bitfsorg/walletsdk-go/block"
)

const (
	// BIP44 purpose.
	PurposeBIP44 = 44

	// Chain indices.
	ExternalChain = 0 // Receive addresses
	InternalChain = 1 // Remainder addresses

	// BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet derives keys for a single seed on one network.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived public/private key pair.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Chain      Chain          `json:"chain"`
}

// Address returns the key-hash address of the pair.
func (kp *KeyPair) Address() *block.KeyAddress {
	return block.KeyAddressFromPubKey(kp.PublicKey)
}

// NewWallet creates a Wallet from a BIP39 seed.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	// The params only select extended-key version bytes; child keys are
	// the same on every network.
	net := &chaincfg.TestNet
	if network.Name == MainNet.Name {
		net = &chaincfg.MainNet
	}

	masterKey, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &Wallet{
		masterKey: masterKey,
		network:   network,
	}, nil
}

// NewWalletFromMnemonic validates mnemonic, derives its seed and creates a Wallet.
func NewWalletFromMnemonic(mnemonic, passphrase string, network *NetworkConfig) (*Wallet, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewWallet(seed, network)
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveChain walks c from the master key.
func (w *Wallet) DeriveChain(c Chain) (*KeyPair, error) {
	current := w.masterKey
	for depth, seg := range c.segs {
		next, err := current.Child(seg.ChildIndex())
		if err != nil {
			return nil, fmt.Errorf("%w: %s at depth %d: %w", ErrDerivationFailed, c, depth, err)
		}
		current = next
	}
	return extKeyToKeyPair(current, c)
}

// DeriveAccountChain derives the key at m/44'/coin'/account'/change'/index'
// for the wallet's network.
func (w *Wallet) DeriveAccountChain(account, change, index uint32) (*KeyPair, error) {
	c, err := Bip44Chain(w.network.CoinType, account, change, index)
	if err != nil {
		return nil, err
	}
	return w.DeriveChain(c)
}

// Bech32Address renders the address of a derived key with the network's HRP.
func (w *Wallet) Bech32Address(kp *KeyPair) (string, error) {
	return block.Bech32(w.network.Bech32HRP, kp.Address())
}

// extKeyToKeyPair converts a BIP32 extended key to a KeyPair.
func extKeyToKeyPair(extKey *bip32.ExtendedKey, c Chain) (*KeyPair, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	pubKey := privKey.PubKey()
	if pubKey == nil {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrDerivationFailed)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		Chain:      c,
	}, nil
}
