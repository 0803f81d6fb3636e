package prepared

import (
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// InputSigningData binds an output being spent to its ledger metadata and,
// for key-owned outputs, the chain of the key that must sign it.
type InputSigningData struct {
	Output   block.Output
	Metadata *block.OutputMetadata
	Chain    *wallet.Chain
}

// NewInputSigningData validates and returns a signing record. chain may be
// nil; it must be nil when no owner of output is key-derived.
func NewInputSigningData(output block.Output, metadata *block.OutputMetadata, chain *wallet.Chain) (*InputSigningData, error) {
	d := &InputSigningData{Output: output, Metadata: metadata, Chain: chain}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *InputSigningData) validate() error {
	if d.Output == nil {
		return fmt.Errorf("%w: output", ErrNilParam)
	}
	if d.Metadata == nil {
		return fmt.Errorf("%w: output kind %d", ErrMissingMetadata, d.Output.Kind())
	}
	if d.Chain != nil && !ownerRequiresChain(d.Output) {
		return fmt.Errorf("%w: output %s is owned by %s", ErrUnexpectedChain, d.Metadata.OutputID(), ownerName(d.Output))
	}
	return nil
}

// OutputID returns the ID of the spent output.
func (d *InputSigningData) OutputID() block.OutputID {
	return d.Metadata.OutputID()
}

type inputSigningDataJSON struct {
	Output         json.RawMessage       `json:"output"`
	OutputMetadata *block.OutputMetadata `json:"outputMetadata"`
	Chain          *wallet.Chain         `json:"chain,omitempty"`
}

func (d *InputSigningData) MarshalJSON() ([]byte, error) {
	out, err := block.Outputs.EncodeJSON(d.Output)
	if err != nil {
		return nil, err
	}
	return json.Marshal(inputSigningDataJSON{Output: out, OutputMetadata: d.Metadata, Chain: d.Chain})
}

func (d *InputSigningData) UnmarshalJSON(data []byte) error {
	var in inputSigningDataJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Output) == 0 || string(in.Output) == "null" {
		return fmt.Errorf("%w: output", ErrNilParam)
	}
	out, err := block.Outputs.DecodeJSON(in.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	rec := InputSigningData{Output: out, Metadata: in.OutputMetadata, Chain: in.Chain}
	if err := rec.validate(); err != nil {
		return err
	}
	*d = rec
	return nil
}

// Remainder is change returned to the sender: one of the new outputs, the
// address it pays and, for key addresses, the chain of that address.
type Remainder struct {
	Output  block.Output
	Address block.Address
	Chain   *wallet.Chain
}

// NewRemainder validates and returns a remainder record.
func NewRemainder(output block.Output, address block.Address, chain *wallet.Chain) (*Remainder, error) {
	r := &Remainder{Output: output, Address: address, Chain: chain}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Remainder) validate() error {
	if r.Output == nil {
		return fmt.Errorf("%w: remainder output", ErrNilParam)
	}
	if r.Address == nil {
		return fmt.Errorf("%w: remainder address", ErrNilParam)
	}
	if r.Chain != nil && !r.Address.RequiresChain() {
		return fmt.Errorf("%w: remainder address kind %d", ErrUnexpectedChain, r.Address.Kind())
	}
	return nil
}

type remainderJSON struct {
	Output  json.RawMessage `json:"output"`
	Address json.RawMessage `json:"address"`
	Chain   *wallet.Chain   `json:"chain,omitempty"`
}

func (r *Remainder) MarshalJSON() ([]byte, error) {
	out, err := block.Outputs.EncodeJSON(r.Output)
	if err != nil {
		return nil, err
	}
	addr, err := block.Addresses.EncodeJSON(r.Address)
	if err != nil {
		return nil, err
	}
	return json.Marshal(remainderJSON{Output: out, Address: addr, Chain: r.Chain})
}

func (r *Remainder) UnmarshalJSON(data []byte) error {
	var in remainderJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Output) == 0 || string(in.Output) == "null" {
		return fmt.Errorf("%w: remainder output", ErrNilParam)
	}
	if len(in.Address) == 0 || string(in.Address) == "null" {
		return fmt.Errorf("%w: remainder address", ErrNilParam)
	}
	out, err := block.Outputs.DecodeJSON(in.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	addr, err := block.Addresses.DecodeJSON(in.Address)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	rec := Remainder{Output: out, Address: addr, Chain: in.Chain}
	if err := rec.validate(); err != nil {
		return err
	}
	*r = rec
	return nil
}

// ownerRequiresChain reports whether any address that can unlock out is
// key-derived. An expiring basic output has two possible owners.
func ownerRequiresChain(out block.Output) bool {
	if a := out.UnlockAddress(0); a != nil && a.RequiresChain() {
		return true
	}
	if b, ok := out.(*block.BasicOutput); ok && b.Expiration != nil && b.Expiration.ReturnAddress != nil {
		return b.Expiration.ReturnAddress.RequiresChain()
	}
	return false
}

func ownerName(out block.Output) string {
	a := out.UnlockAddress(0)
	if a == nil {
		return "no address"
	}
	return fmt.Sprintf("address kind %d", a.Kind())
}
