package block

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/walletsdk-go/variant"
)

// Signature tags.
const (
	SignatureSecp256k1 uint8 = 0
)

const (
	compressedPubKeyLen = 33
	maxDERSignatureLen  = 72
)

// Signature proves control of a key over a message.
type Signature interface {
	variant.Entity
	isSignature()

	// Verify checks the signature over msg.
	Verify(msg []byte) error

	// SignerAddress returns the address of the signing key.
	SignerAddress() Address
}

// Signatures is the registry of signature variants.
var Signatures = variant.NewRegistry[Signature]("signature").
	Register(SignatureSecp256k1, func() Signature { return new(Secp256k1Signature) })

// Secp256k1Signature is a DER-encoded ECDSA signature with the compressed
// public key that produced it.
type Secp256k1Signature struct {
	PublicKey HexBytes `json:"publicKey"`
	Signature HexBytes `json:"signature"`
}

// SignSecp256k1 signs msg, which must already be a 32-byte hash.
func SignSecp256k1(priv *ec.PrivateKey, msg []byte) (*Secp256k1Signature, error) {
	sig, err := priv.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return &Secp256k1Signature{
		PublicKey: priv.PubKey().Compressed(),
		Signature: sig.Serialize(),
	}, nil
}

func (*Secp256k1Signature) Kind() uint8  { return SignatureSecp256k1 }
func (*Secp256k1Signature) isSignature() {}

func (s *Secp256k1Signature) SignerAddress() Address {
	return KeyAddressFromCompressed(s.PublicKey)
}

func (s *Secp256k1Signature) Verify(msg []byte) error {
	pub, err := ec.PublicKeyFromBytes(s.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: public key: %w", ErrInvalidSignature, err)
	}
	sig, err := ec.ParseDERSignature(s.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !sig.Verify(msg, pub) {
		return fmt.Errorf("%w: verification failed for key %s", ErrInvalidSignature, s.PublicKey)
	}
	return nil
}

func (s *Secp256k1Signature) PackBody(p *variant.Packer) {
	p.Raw(s.PublicKey)
	p.Bytes16(s.Signature)
}

func (s *Secp256k1Signature) UnpackBody(u *variant.Unpacker) {
	s.PublicKey = make(HexBytes, compressedPubKeyLen)
	u.Raw(s.PublicKey)
	s.Signature = u.Bytes16()
}

func (s *Secp256k1Signature) Validate() error {
	if len(s.PublicKey) != compressedPubKeyLen {
		return fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidSignature, compressedPubKeyLen, len(s.PublicKey))
	}
	if len(s.Signature) == 0 || len(s.Signature) > maxDERSignatureLen {
		return fmt.Errorf("%w: signature length %d", ErrInvalidSignature, len(s.Signature))
	}
	return nil
}
