package block

import (
	"encoding/json"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/walletsdk-go/variant"
)

// Address tags.
const (
	AddressKey   uint8 = 0
	AddressAlias uint8 = 8
	AddressNft   uint8 = 16
)

// Address is the owner of an output.
type Address interface {
	variant.Entity
	isAddress()

	// RequiresChain reports whether unlocking needs a key derived from an
	// HD chain. Only key-hash addresses do; alias and NFT addresses are
	// unlocked through the input that holds the alias or NFT.
	RequiresChain() bool
}

// Addresses is the registry of address variants.
var Addresses = variant.NewRegistry[Address]("address").
	Register(AddressKey, func() Address { return new(KeyAddress) }).
	Register(AddressAlias, func() Address { return new(AliasAddress) }).
	Register(AddressNft, func() Address { return new(NftAddress) })

// KeyAddress is owned by a single secp256k1 key.
type KeyAddress struct {
	PubKeyHash KeyHash `json:"pubKeyHash"`
}

// KeyAddressFromPubKey hashes the compressed public key.
func KeyAddressFromPubKey(pub *ec.PublicKey) *KeyAddress {
	return KeyAddressFromCompressed(pub.Compressed())
}

// KeyAddressFromCompressed hashes an already compressed public key.
func KeyAddressFromCompressed(compressed []byte) *KeyAddress {
	return &KeyAddress{PubKeyHash: KeyHash(blake2b.Sum256(compressed))}
}

func (*KeyAddress) Kind() uint8         { return AddressKey }
func (*KeyAddress) isAddress()          {}
func (*KeyAddress) RequiresChain() bool { return true }

func (a *KeyAddress) PackBody(p *variant.Packer)     { p.Raw(a.PubKeyHash[:]) }
func (a *KeyAddress) UnpackBody(u *variant.Unpacker) { u.Raw(a.PubKeyHash[:]) }

// AliasAddress is owned by whoever controls the alias.
type AliasAddress struct {
	AliasID AliasID `json:"aliasId"`
}

func (*AliasAddress) Kind() uint8         { return AddressAlias }
func (*AliasAddress) isAddress()          {}
func (*AliasAddress) RequiresChain() bool { return false }

func (a *AliasAddress) PackBody(p *variant.Packer)     { p.Raw(a.AliasID[:]) }
func (a *AliasAddress) UnpackBody(u *variant.Unpacker) { u.Raw(a.AliasID[:]) }

// NftAddress is owned by whoever holds the NFT.
type NftAddress struct {
	NftID NftID `json:"nftId"`
}

func (*NftAddress) Kind() uint8         { return AddressNft }
func (*NftAddress) isAddress()          {}
func (*NftAddress) RequiresChain() bool { return false }

func (a *NftAddress) PackBody(p *variant.Packer)     { p.Raw(a.NftID[:]) }
func (a *NftAddress) UnpackBody(u *variant.Unpacker) { u.Raw(a.NftID[:]) }

// Bech32 renders addr with the network's human-readable part. The data
// part is the tagged binary form of the address.
func Bech32(hrp string, addr Address) (string, error) {
	if addr == nil {
		return "", fmt.Errorf("%w: nil", ErrInvalidAddress)
	}
	conv, err := bech32.ConvertBits(Addresses.Bytes(addr), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	s, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return s, nil
}

// ParseBech32 decodes a bech32 address and returns its human-readable part.
func ParseBech32(s string) (string, Address, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	addr, err := Addresses.FromBytes(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return hrp, addr, nil
}

// SameAddress reports whether a and b are the same owner.
func SameAddress(a, b Address) bool {
	return variant.Equal(a, b)
}

func encodeAddress(a Address, field string) (json.RawMessage, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidAddress, field)
	}
	b, err := Addresses.EncodeJSON(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}

func decodeAddress(raw json.RawMessage, field string) (Address, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidAddress, field)
	}
	a, err := Addresses.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return a, nil
}
