package block

import (
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/walletsdk-go/variant"
)

// Unlock tags.
const (
	UnlockSignature uint8 = 0
	UnlockReference uint8 = 1
	UnlockAlias     uint8 = 2
	UnlockNft       uint8 = 3
)

// Unlock authorizes spending the input at the same position.
type Unlock interface {
	variant.Entity
	isUnlock()
}

// Referencing is implemented by unlocks that point at an earlier unlock.
type Referencing interface {
	Unlock
	Ref() uint16
}

// Unlocks is the registry of unlock variants.
var Unlocks = variant.NewRegistry[Unlock]("unlock").
	Register(UnlockSignature, func() Unlock { return new(SignatureUnlock) }).
	Register(UnlockReference, func() Unlock { return new(ReferenceUnlock) }).
	Register(UnlockAlias, func() Unlock { return new(AliasUnlock) }).
	Register(UnlockNft, func() Unlock { return new(NftUnlock) })

// SignatureUnlock carries a signature over the essence hash.
type SignatureUnlock struct {
	Signature Signature
}

func (*SignatureUnlock) Kind() uint8 { return UnlockSignature }
func (*SignatureUnlock) isUnlock()   {}

func (s *SignatureUnlock) PackBody(p *variant.Packer)     { Signatures.Pack(p, s.Signature) }
func (s *SignatureUnlock) UnpackBody(u *variant.Unpacker) { s.Signature = Signatures.Unpack(u) }

func (s *SignatureUnlock) Validate() error {
	if s.Signature == nil {
		return fmt.Errorf("%w: signature unlock without signature", ErrInvalidUnlock)
	}
	return nil
}

type signatureUnlockJSON struct {
	Signature json.RawMessage `json:"signature"`
}

func (s *SignatureUnlock) MarshalJSON() ([]byte, error) {
	if s.Signature == nil {
		return nil, fmt.Errorf("%w: signature unlock without signature", ErrInvalidUnlock)
	}
	sig, err := Signatures.EncodeJSON(s.Signature)
	if err != nil {
		return nil, err
	}
	return json.Marshal(signatureUnlockJSON{Signature: sig})
}

func (s *SignatureUnlock) UnmarshalJSON(data []byte) error {
	var in signatureUnlockJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Signature) == 0 || string(in.Signature) == "null" {
		return fmt.Errorf("%w: signature unlock without signature", ErrInvalidUnlock)
	}
	sig, err := Signatures.DecodeJSON(in.Signature)
	if err != nil {
		return err
	}
	s.Signature = sig
	return nil
}

// ReferenceUnlock reuses the signature unlock at position Reference.
type ReferenceUnlock struct {
	Reference uint16 `json:"reference"`
}

func (*ReferenceUnlock) Kind() uint8       { return UnlockReference }
func (*ReferenceUnlock) isUnlock()         {}
func (r *ReferenceUnlock) Ref() uint16     { return r.Reference }
func (r *ReferenceUnlock) Validate() error { return validateRef(r.Reference) }

func (r *ReferenceUnlock) PackBody(p *variant.Packer)     { p.U16(r.Reference) }
func (r *ReferenceUnlock) UnpackBody(u *variant.Unpacker) { r.Reference = u.U16() }

// AliasUnlock unlocks an output owned by the alias consumed at position Reference.
type AliasUnlock struct {
	Reference uint16 `json:"reference"`
}

func (*AliasUnlock) Kind() uint8       { return UnlockAlias }
func (*AliasUnlock) isUnlock()         {}
func (r *AliasUnlock) Ref() uint16     { return r.Reference }
func (r *AliasUnlock) Validate() error { return validateRef(r.Reference) }

func (r *AliasUnlock) PackBody(p *variant.Packer)     { p.U16(r.Reference) }
func (r *AliasUnlock) UnpackBody(u *variant.Unpacker) { r.Reference = u.U16() }

// NftUnlock unlocks an output owned by the NFT consumed at position Reference.
type NftUnlock struct {
	Reference uint16 `json:"reference"`
}

func (*NftUnlock) Kind() uint8       { return UnlockNft }
func (*NftUnlock) isUnlock()         {}
func (r *NftUnlock) Ref() uint16     { return r.Reference }
func (r *NftUnlock) Validate() error { return validateRef(r.Reference) }

func (r *NftUnlock) PackBody(p *variant.Packer)     { p.U16(r.Reference) }
func (r *NftUnlock) UnpackBody(u *variant.Unpacker) { r.Reference = u.U16() }

func validateRef(ref uint16) error {
	if ref >= MaxInputs {
		return fmt.Errorf("%w: reference %d >= %d", ErrInvalidUnlock, ref, MaxInputs)
	}
	return nil
}
