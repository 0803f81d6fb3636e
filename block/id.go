package block

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// IDLength is the size of every hash-derived identifier.
	IDLength = 32

	// OutputIDLength is a transaction ID followed by a little-endian uint16 output index.
	OutputIDLength = IDLength + 2

	// MaxOutputIndex is the highest output index a transaction can create.
	MaxOutputIndex = 127
)

// TransactionID identifies a transaction by the hash of its payload.
type TransactionID [IDLength]byte

// BlockID identifies the block that booked an output.
type BlockID [IDLength]byte

// MilestoneID identifies a milestone that funds a treasury input.
type MilestoneID [IDLength]byte

// AliasID identifies an alias chain. A zero ID means "derive from the creating output".
type AliasID [IDLength]byte

// NftID identifies an NFT chain. A zero ID means "derive from the creating output".
type NftID [IDLength]byte

// KeyHash is the BLAKE2b-256 hash of a compressed secp256k1 public key.
type KeyHash [IDLength]byte

// InputsCommitment commits to the outputs consumed by a transaction.
type InputsCommitment [IDLength]byte

func (id TransactionID) String() string                { return encodeHex(id[:]) }
func (id TransactionID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *TransactionID) UnmarshalText(b []byte) error { return decodeFixed(id[:], b, "transaction id") }

func (id BlockID) String() string                { return encodeHex(id[:]) }
func (id BlockID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *BlockID) UnmarshalText(b []byte) error { return decodeFixed(id[:], b, "block id") }

func (id MilestoneID) String() string                { return encodeHex(id[:]) }
func (id MilestoneID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *MilestoneID) UnmarshalText(b []byte) error { return decodeFixed(id[:], b, "milestone id") }

func (id AliasID) String() string                { return encodeHex(id[:]) }
func (id AliasID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *AliasID) UnmarshalText(b []byte) error { return decodeFixed(id[:], b, "alias id") }

// Empty reports whether the ID still has to be derived from its output.
func (id AliasID) Empty() bool { return id == AliasID{} }

func (id NftID) String() string                { return encodeHex(id[:]) }
func (id NftID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id *NftID) UnmarshalText(b []byte) error { return decodeFixed(id[:], b, "nft id") }

// Empty reports whether the ID still has to be derived from its output.
func (id NftID) Empty() bool { return id == NftID{} }

func (h KeyHash) String() string                { return encodeHex(h[:]) }
func (h KeyHash) MarshalText() ([]byte, error)  { return []byte(h.String()), nil }
func (h *KeyHash) UnmarshalText(b []byte) error { return decodeFixed(h[:], b, "key hash") }

func (c InputsCommitment) String() string                { return encodeHex(c[:]) }
func (c InputsCommitment) MarshalText() ([]byte, error)  { return []byte(c.String()), nil }
func (c *InputsCommitment) UnmarshalText(b []byte) error { return decodeFixed(c[:], b, "inputs commitment") }

// HexBytes is a variable-length byte string rendered as 0x-prefixed hex.
type HexBytes []byte

func (b HexBytes) String() string               { return encodeHex(b) }
func (b HexBytes) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *HexBytes) UnmarshalText(text []byte) error {
	raw, err := decodeHex(text, "bytes")
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// OutputID is the packed reference to a transaction output:
// transaction ID (32 bytes) followed by the output index as a
// little-endian uint16.
type OutputID [OutputIDLength]byte

// NewOutputID packs a transaction ID and output index.
func NewOutputID(txID TransactionID, index uint16) OutputID {
	var id OutputID
	copy(id[:IDLength], txID[:])
	binary.LittleEndian.PutUint16(id[IDLength:], index)
	return id
}

// OutputIDFromBytes copies a packed output ID. Any length other than
// OutputIDLength is rejected.
func OutputIDFromBytes(b []byte) (OutputID, error) {
	var id OutputID
	if len(b) != OutputIDLength {
		return id, fmt.Errorf("%w: must be %d bytes, got %d", ErrMalformedOutputID, OutputIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ParseOutputID decodes the hex form produced by OutputID.String.
func ParseOutputID(s string) (OutputID, error) {
	raw, err := decodeHex([]byte(s), "output id")
	if err != nil {
		return OutputID{}, fmt.Errorf("%w: %w", ErrMalformedOutputID, err)
	}
	return OutputIDFromBytes(raw)
}

// TransactionID returns the first 32 bytes.
func (id OutputID) TransactionID() TransactionID {
	var txID TransactionID
	copy(txID[:], id[:IDLength])
	return txID
}

// Index returns the trailing output index.
func (id OutputID) Index() uint16 {
	return binary.LittleEndian.Uint16(id[IDLength:])
}

func (id OutputID) String() string               { return encodeHex(id[:]) }
func (id OutputID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *OutputID) UnmarshalText(b []byte) error {
	parsed, err := ParseOutputID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func decodeHex(text []byte, what string) ([]byte, error) {
	s := strings.TrimPrefix(string(text), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidHex, what, err)
	}
	return b, nil
}

func decodeFixed(dst []byte, text []byte, what string) error {
	b, err := decodeHex(text, what)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidHex, what, len(dst), len(b))
	}
	copy(dst, b)
	return nil
}
