package block

import (
	"fmt"

	"github.com/bitfsorg/walletsdk-go/variant"
)

// Input tags.
const (
	InputUTXO     uint8 = 0
	InputTreasury uint8 = 1
)

// Input is a reference to value consumed by a transaction.
type Input interface {
	variant.Entity
	isInput()
}

// Inputs is the registry of input variants.
var Inputs = variant.NewRegistry[Input]("input").
	Register(InputUTXO, func() Input { return new(UtxoInput) }).
	Register(InputTreasury, func() Input { return new(TreasuryInput) })

// UtxoInput spends an unspent output of an earlier transaction.
type UtxoInput struct {
	TransactionID TransactionID `json:"transactionId"`
	OutputIndex   uint16        `json:"transactionOutputIndex"`
}

// NewUtxoInput returns an input spending output index of txID.
func NewUtxoInput(txID TransactionID, index uint16) (*UtxoInput, error) {
	in := &UtxoInput{TransactionID: txID, OutputIndex: index}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// UtxoInputFromOutputID splits a packed output ID into its transaction ID
// and output index.
func UtxoInputFromOutputID(id OutputID) (*UtxoInput, error) {
	in, err := NewUtxoInput(id.TransactionID(), id.Index())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutputID, err)
	}
	return in, nil
}

// UtxoInputFromBytes is UtxoInputFromOutputID for an unchecked byte slice.
func UtxoInputFromBytes(b []byte) (*UtxoInput, error) {
	id, err := OutputIDFromBytes(b)
	if err != nil {
		return nil, err
	}
	return UtxoInputFromOutputID(id)
}

// OutputID packs the input back into the output ID it spends.
func (in *UtxoInput) OutputID() OutputID {
	return NewOutputID(in.TransactionID, in.OutputIndex)
}

func (*UtxoInput) Kind() uint8 { return InputUTXO }
func (*UtxoInput) isInput()    {}

func (in *UtxoInput) PackBody(p *variant.Packer) {
	p.Raw(in.TransactionID[:])
	p.U16(in.OutputIndex)
}

func (in *UtxoInput) UnpackBody(u *variant.Unpacker) {
	u.Raw(in.TransactionID[:])
	in.OutputIndex = u.U16()
}

// Validate checks the output index bound.
func (in *UtxoInput) Validate() error {
	if in.OutputIndex > MaxOutputIndex {
		return fmt.Errorf("%w: %d > %d", ErrOutputIndexOutOfRange, in.OutputIndex, MaxOutputIndex)
	}
	return nil
}

// TreasuryInput consumes the treasury output funded by a milestone.
type TreasuryInput struct {
	MilestoneID MilestoneID `json:"milestoneId"`
}

func (*TreasuryInput) Kind() uint8 { return InputTreasury }
func (*TreasuryInput) isInput()    {}

func (in *TreasuryInput) PackBody(p *variant.Packer)     { p.Raw(in.MilestoneID[:]) }
func (in *TreasuryInput) UnpackBody(u *variant.Unpacker) { u.Raw(in.MilestoneID[:]) }
