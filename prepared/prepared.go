// Package prepared holds the offline-signing handoff: the unsigned essence,
// one signing record per input in unlock order, optional remainders and
// advisory rewards. A PreparedTransactionData moves from Unsigned to Signed
// exactly once, when Complete accepts one matching unlock per input.
package prepared

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/variant"
)

// State is the signing state of an envelope.
type State uint8

const (
	Unsigned State = iota
	Signed
)

func (s State) String() string {
	switch s {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// PreparedTransactionData is the envelope a signer consumes. Records are
// read-only once the envelope is built. An envelope must not be completed
// from more than one goroutine.
type PreparedTransactionData struct {
	essence    *block.TransactionEssence
	inputs     []*InputSigningData
	remainders []*Remainder
	rewards    map[block.OutputID]decimal.Decimal

	state  State
	signed *block.TransactionPayload
}

// New validates and returns an Unsigned envelope. inputs[i] must describe
// the output consumed by essence input i. rewards may be nil.
func New(essence *block.TransactionEssence, inputs []*InputSigningData, remainders []*Remainder, rewards map[block.OutputID]decimal.Decimal) (*PreparedTransactionData, error) {
	p := &PreparedTransactionData{
		essence:    essence,
		inputs:     append([]*InputSigningData(nil), inputs...),
		remainders: append([]*Remainder(nil), remainders...),
	}
	if len(rewards) > 0 {
		p.rewards = make(map[block.OutputID]decimal.Decimal, len(rewards))
		for id, amount := range rewards {
			p.rewards[id] = amount
		}
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PreparedTransactionData) validate() error {
	if len(p.inputs) == 0 {
		return ErrEmptyInputs
	}
	if p.essence == nil {
		return fmt.Errorf("%w: essence", ErrNilParam)
	}
	if err := p.essence.Validate(); err != nil {
		return err
	}
	if len(p.essence.Inputs) != len(p.inputs) {
		return fmt.Errorf("%w: essence has %d inputs, %d signing records", ErrInputOrder, len(p.essence.Inputs), len(p.inputs))
	}

	consumed := make([]block.Output, len(p.inputs))
	spent := make(map[block.OutputID]bool, len(p.inputs))
	for i, rec := range p.inputs {
		if rec == nil {
			return fmt.Errorf("%w: signing record %d", ErrNilParam, i)
		}
		if err := rec.validate(); err != nil {
			return fmt.Errorf("signing record %d: %w", i, err)
		}
		in, ok := p.essence.UtxoInput(i)
		if !ok {
			return fmt.Errorf("%w: essence input %d is not a UTXO input", ErrInputOrder, i)
		}
		if in.OutputID() != rec.OutputID() {
			return fmt.Errorf("%w: essence input %d spends %s, record describes %s", ErrInputOrder, i, in.OutputID(), rec.OutputID())
		}
		consumed[i] = rec.Output
		spent[rec.OutputID()] = true
	}
	if got := block.ComputeInputsCommitment(consumed); got != p.essence.InputsCommitment {
		return fmt.Errorf("%w: inputs commitment %s does not match the recorded outputs (%s)", block.ErrInvalidEssence, p.essence.InputsCommitment, got)
	}

	for i, r := range p.remainders {
		if r == nil {
			return fmt.Errorf("%w: remainder %d", ErrNilParam, i)
		}
		if err := r.validate(); err != nil {
			return fmt.Errorf("remainder %d: %w", i, err)
		}
		if !p.hasOutput(r.Output) {
			return fmt.Errorf("%w: remainder %d is not an output of the essence", ErrInvalidRemainder, i)
		}
	}

	for id, amount := range p.rewards {
		if !spent[id] {
			return fmt.Errorf("%w: %s is not an input", ErrInvalidReward, id)
		}
		if amount.IsNegative() {
			return fmt.Errorf("%w: %s has negative amount %s", ErrInvalidReward, id, amount)
		}
	}
	return nil
}

func (p *PreparedTransactionData) hasOutput(out block.Output) bool {
	for _, o := range p.essence.Outputs {
		if variant.Equal(o, out) {
			return true
		}
	}
	return false
}

// Essence returns the unsigned transaction body.
func (p *PreparedTransactionData) Essence() *block.TransactionEssence { return p.essence }

// Inputs returns the signing records in unlock order.
func (p *PreparedTransactionData) Inputs() []*InputSigningData {
	return append([]*InputSigningData(nil), p.inputs...)
}

// Remainders returns the remainder records.
func (p *PreparedTransactionData) Remainders() []*Remainder {
	return append([]*Remainder(nil), p.remainders...)
}

// Rewards returns a copy of the advisory reward amounts per input.
func (p *PreparedTransactionData) Rewards() map[block.OutputID]decimal.Decimal {
	out := make(map[block.OutputID]decimal.Decimal, len(p.rewards))
	for id, amount := range p.rewards {
		out[id] = amount
	}
	return out
}

// TotalRewards sums the reward amounts.
func (p *PreparedTransactionData) TotalRewards() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range p.rewards {
		total = total.Add(amount)
	}
	return total
}

// State returns the signing state.
func (p *PreparedTransactionData) State() State { return p.state }

// SigningHash returns the message every signature unlock must sign.
func (p *PreparedTransactionData) SigningHash() [32]byte { return p.essence.Hash() }

// Signed returns the signed payload, or false while the envelope is Unsigned.
func (p *PreparedTransactionData) Signed() (*block.TransactionPayload, bool) {
	return p.signed, p.state == Signed
}

// Complete checks unlocks against the inputs and, when they match, moves
// the envelope to Signed and returns the signed payload. Any mismatch
// returns ErrUnlockMismatch naming the first bad position and leaves the
// envelope Unsigned.
func (p *PreparedTransactionData) Complete(unlocks []block.Unlock) (*block.TransactionPayload, error) {
	if p.state == Signed {
		return nil, ErrAlreadySigned
	}
	if len(unlocks) != len(p.inputs) {
		return nil, fmt.Errorf("%w: %d unlocks for %d inputs", ErrUnlockMismatch, len(unlocks), len(p.inputs))
	}

	if err := newUnlockChecker(p).check(unlocks); err != nil {
		return nil, err
	}

	p.signed = &block.TransactionPayload{
		Essence: p.essence,
		Unlocks: append([]block.Unlock(nil), unlocks...),
	}
	p.state = Signed
	return p.signed, nil
}

type preparedJSON struct {
	Transaction *block.TransactionEssence          `json:"transaction"`
	InputsData  []*InputSigningData                `json:"inputsData"`
	Remainders  []*Remainder                       `json:"remainders,omitempty"`
	ManaRewards map[block.OutputID]decimal.Decimal `json:"manaRewards,omitempty"`
}

// MarshalJSON encodes the envelope. The signing state is not part of the
// encoding.
func (p *PreparedTransactionData) MarshalJSON() ([]byte, error) {
	return json.Marshal(preparedJSON{
		Transaction: p.essence,
		InputsData:  p.inputs,
		Remainders:  p.remainders,
		ManaRewards: p.rewards,
	})
}

// UnmarshalJSON decodes and validates an envelope. The result is always
// Unsigned.
func (p *PreparedTransactionData) UnmarshalJSON(data []byte) error {
	var in preparedJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Transaction == nil {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	decoded, err := New(in.Transaction, in.InputsData, in.Remainders, in.ManaRewards)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}
