package block

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/walletsdk-go/variant"
)

// Output tags.
const (
	OutputTreasury uint8 = 2
	OutputBasic    uint8 = 3
	OutputAlias    uint8 = 4
	OutputNft      uint8 = 6
)

// Output is value created by a transaction.
type Output interface {
	variant.Entity
	isOutput()

	// Deposit returns the base token amount held by the output.
	Deposit() uint64

	// UnlockAddress returns the address that must unlock the output in a
	// transaction created at unix time at. A zero time ignores time-based
	// conditions. Treasury outputs have no unlock address and return nil.
	UnlockAddress(at uint32) Address
}

// Outputs is the registry of output variants.
var Outputs = variant.NewRegistry[Output]("output").
	Register(OutputTreasury, func() Output { return new(TreasuryOutput) }).
	Register(OutputBasic, func() Output { return new(BasicOutput) }).
	Register(OutputAlias, func() Output { return new(AliasOutput) }).
	Register(OutputNft, func() Output { return new(NftOutput) })

// ---------------------------------------------------------------------------
// TreasuryOutput
// ---------------------------------------------------------------------------

// TreasuryOutput holds the protocol treasury.
type TreasuryOutput struct {
	Amount uint64 `json:"amount,string"`
}

func (*TreasuryOutput) Kind() uint8                  { return OutputTreasury }
func (*TreasuryOutput) isOutput()                    {}
func (o *TreasuryOutput) Deposit() uint64            { return o.Amount }
func (*TreasuryOutput) UnlockAddress(uint32) Address { return nil }

func (o *TreasuryOutput) PackBody(p *variant.Packer)     { p.U64(o.Amount) }
func (o *TreasuryOutput) UnpackBody(u *variant.Unpacker) { o.Amount = u.U64() }

// ---------------------------------------------------------------------------
// BasicOutput
// ---------------------------------------------------------------------------

// Expiration hands an output back to ReturnAddress once Timestamp has passed.
type Expiration struct {
	ReturnAddress Address
	Timestamp     uint32
}

// BasicOutput holds tokens owned by an address.
type BasicOutput struct {
	Amount     uint64
	Address    Address
	Expiration *Expiration
}

func (*BasicOutput) Kind() uint8       { return OutputBasic }
func (*BasicOutput) isOutput()         {}
func (o *BasicOutput) Deposit() uint64 { return o.Amount }

func (o *BasicOutput) UnlockAddress(at uint32) Address {
	if o.Expiration != nil && at != 0 && at >= o.Expiration.Timestamp {
		return o.Expiration.ReturnAddress
	}
	return o.Address
}

func (o *BasicOutput) PackBody(p *variant.Packer) {
	p.U64(o.Amount)
	Addresses.Pack(p, o.Address)
	p.Bool(o.Expiration != nil)
	if o.Expiration != nil {
		Addresses.Pack(p, o.Expiration.ReturnAddress)
		p.U32(o.Expiration.Timestamp)
	}
}

func (o *BasicOutput) UnpackBody(u *variant.Unpacker) {
	o.Amount = u.U64()
	o.Address = Addresses.Unpack(u)
	if u.Bool() {
		o.Expiration = &Expiration{ReturnAddress: Addresses.Unpack(u)}
		o.Expiration.Timestamp = u.U32()
	}
}

func (o *BasicOutput) Validate() error {
	if o.Amount == 0 {
		return fmt.Errorf("%w: basic output amount is zero", ErrInvalidOutput)
	}
	if o.Address == nil {
		return fmt.Errorf("%w: basic output has no address", ErrInvalidOutput)
	}
	if e := o.Expiration; e != nil {
		if e.ReturnAddress == nil {
			return fmt.Errorf("%w: expiration has no return address", ErrInvalidOutput)
		}
		if e.Timestamp == 0 {
			return fmt.Errorf("%w: expiration timestamp is zero", ErrInvalidOutput)
		}
	}
	return nil
}

type expirationJSON struct {
	ReturnAddress json.RawMessage `json:"returnAddress"`
	Timestamp     uint32          `json:"timestamp"`
}

type basicOutputJSON struct {
	Amount     uint64          `json:"amount,string"`
	Address    json.RawMessage `json:"address"`
	Expiration *expirationJSON `json:"expiration,omitempty"`
}

func (o *BasicOutput) MarshalJSON() ([]byte, error) {
	addr, err := encodeAddress(o.Address, "address")
	if err != nil {
		return nil, err
	}
	out := basicOutputJSON{Amount: o.Amount, Address: addr}
	if o.Expiration != nil {
		ret, err := encodeAddress(o.Expiration.ReturnAddress, "returnAddress")
		if err != nil {
			return nil, err
		}
		out.Expiration = &expirationJSON{ReturnAddress: ret, Timestamp: o.Expiration.Timestamp}
	}
	return json.Marshal(out)
}

func (o *BasicOutput) UnmarshalJSON(data []byte) error {
	var in basicOutputJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	addr, err := decodeAddress(in.Address, "address")
	if err != nil {
		return err
	}
	o.Amount = in.Amount
	o.Address = addr
	o.Expiration = nil
	if in.Expiration != nil {
		ret, err := decodeAddress(in.Expiration.ReturnAddress, "returnAddress")
		if err != nil {
			return err
		}
		o.Expiration = &Expiration{ReturnAddress: ret, Timestamp: in.Expiration.Timestamp}
	}
	return nil
}

// ---------------------------------------------------------------------------
// AliasOutput
// ---------------------------------------------------------------------------

// AliasOutput carries an alias chain. The state controller unlocks it.
type AliasOutput struct {
	Amount          uint64
	AliasID         AliasID
	StateIndex      uint32
	StateController Address
	Governor        Address
}

func (*AliasOutput) Kind() uint8                    { return OutputAlias }
func (*AliasOutput) isOutput()                      {}
func (o *AliasOutput) Deposit() uint64              { return o.Amount }
func (o *AliasOutput) UnlockAddress(uint32) Address { return o.StateController }

// ResolvedID returns AliasID, or the ID derived from the creating output
// when the output mints the alias.
func (o *AliasOutput) ResolvedID(created OutputID) AliasID {
	if !o.AliasID.Empty() {
		return o.AliasID
	}
	return AliasID(blake2b.Sum256(created[:]))
}

func (o *AliasOutput) PackBody(p *variant.Packer) {
	p.U64(o.Amount)
	p.Raw(o.AliasID[:])
	p.U32(o.StateIndex)
	Addresses.Pack(p, o.StateController)
	Addresses.Pack(p, o.Governor)
}

func (o *AliasOutput) UnpackBody(u *variant.Unpacker) {
	o.Amount = u.U64()
	u.Raw(o.AliasID[:])
	o.StateIndex = u.U32()
	o.StateController = Addresses.Unpack(u)
	o.Governor = Addresses.Unpack(u)
}

func (o *AliasOutput) Validate() error {
	if o.Amount == 0 {
		return fmt.Errorf("%w: alias output amount is zero", ErrInvalidOutput)
	}
	if o.StateController == nil || o.Governor == nil {
		return fmt.Errorf("%w: alias output needs a state controller and a governor", ErrInvalidOutput)
	}
	return nil
}

type aliasOutputJSON struct {
	Amount          uint64          `json:"amount,string"`
	AliasID         AliasID         `json:"aliasId"`
	StateIndex      uint32          `json:"stateIndex"`
	StateController json.RawMessage `json:"stateController"`
	Governor        json.RawMessage `json:"governor"`
}

func (o *AliasOutput) MarshalJSON() ([]byte, error) {
	sc, err := encodeAddress(o.StateController, "stateController")
	if err != nil {
		return nil, err
	}
	gov, err := encodeAddress(o.Governor, "governor")
	if err != nil {
		return nil, err
	}
	return json.Marshal(aliasOutputJSON{
		Amount:          o.Amount,
		AliasID:         o.AliasID,
		StateIndex:      o.StateIndex,
		StateController: sc,
		Governor:        gov,
	})
}

func (o *AliasOutput) UnmarshalJSON(data []byte) error {
	var in aliasOutputJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	sc, err := decodeAddress(in.StateController, "stateController")
	if err != nil {
		return err
	}
	gov, err := decodeAddress(in.Governor, "governor")
	if err != nil {
		return err
	}
	*o = AliasOutput{
		Amount:          in.Amount,
		AliasID:         in.AliasID,
		StateIndex:      in.StateIndex,
		StateController: sc,
		Governor:        gov,
	}
	return nil
}

// ---------------------------------------------------------------------------
// NftOutput
// ---------------------------------------------------------------------------

// NftOutput carries an NFT owned by an address.
type NftOutput struct {
	Amount  uint64
	NftID   NftID
	Address Address
}

func (*NftOutput) Kind() uint8                    { return OutputNft }
func (*NftOutput) isOutput()                      {}
func (o *NftOutput) Deposit() uint64              { return o.Amount }
func (o *NftOutput) UnlockAddress(uint32) Address { return o.Address }

// ResolvedID returns NftID, or the ID derived from the creating output
// when the output mints the NFT.
func (o *NftOutput) ResolvedID(created OutputID) NftID {
	if !o.NftID.Empty() {
		return o.NftID
	}
	return NftID(blake2b.Sum256(created[:]))
}

func (o *NftOutput) PackBody(p *variant.Packer) {
	p.U64(o.Amount)
	p.Raw(o.NftID[:])
	Addresses.Pack(p, o.Address)
}

func (o *NftOutput) UnpackBody(u *variant.Unpacker) {
	o.Amount = u.U64()
	u.Raw(o.NftID[:])
	o.Address = Addresses.Unpack(u)
}

func (o *NftOutput) Validate() error {
	if o.Amount == 0 {
		return fmt.Errorf("%w: nft output amount is zero", ErrInvalidOutput)
	}
	if o.Address == nil {
		return fmt.Errorf("%w: nft output has no address", ErrInvalidOutput)
	}
	return nil
}

type nftOutputJSON struct {
	Amount  uint64          `json:"amount,string"`
	NftID   NftID           `json:"nftId"`
	Address json.RawMessage `json:"address"`
}

func (o *NftOutput) MarshalJSON() ([]byte, error) {
	addr, err := encodeAddress(o.Address, "address")
	if err != nil {
		return nil, err
	}
	return json.Marshal(nftOutputJSON{Amount: o.Amount, NftID: o.NftID, Address: addr})
}

func (o *NftOutput) UnmarshalJSON(data []byte) error {
	var in nftOutputJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	addr, err := decodeAddress(in.Address, "address")
	if err != nil {
		return err
	}
	*o = NftOutput{Amount: in.Amount, NftID: in.NftID, Address: addr}
	return nil
}

// ComputeInputsCommitment hashes the consumed outputs in input order:
// BLAKE2b-256 over the concatenated BLAKE2b-256 hashes of each output's
// tagged binary form.
func ComputeInputsCommitment(consumed []Output) InputsCommitment {
	h, _ := blake2b.New256(nil)
	for _, o := range consumed {
		sum := blake2b.Sum256(Outputs.Bytes(o))
		h.Write(sum[:])
	}
	var c InputsCommitment
	copy(c[:], h.Sum(nil))
	return c
}
