package block

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/walletsdk-go/variant"
)

const (
	// MaxInputs is the maximum number of inputs in one transaction.
	MaxInputs = 128

	// MaxOutputs is the maximum number of outputs in one transaction.
	MaxOutputs = 128
)

// TransactionEssence is the signed part of a transaction.
type TransactionEssence struct {
	NetworkID        uint64
	CreationTime     uint32
	Inputs           []Input
	InputsCommitment InputsCommitment
	Outputs          []Output
}

// Validate checks input and output counts, duplicate inputs and each output.
func (e *TransactionEssence) Validate() error {
	if n := len(e.Inputs); n == 0 || n > MaxInputs {
		return fmt.Errorf("%w: %d inputs (want 1..%d)", ErrInvalidEssence, n, MaxInputs)
	}
	if n := len(e.Outputs); n == 0 || n > MaxOutputs {
		return fmt.Errorf("%w: %d outputs (want 1..%d)", ErrInvalidEssence, n, MaxOutputs)
	}

	seen := make(map[string]int, len(e.Inputs))
	for i, in := range e.Inputs {
		if in == nil {
			return fmt.Errorf("%w: input %d is nil", ErrInvalidEssence, i)
		}
		key := string(Inputs.Bytes(in))
		if j, dup := seen[key]; dup {
			return fmt.Errorf("%w: input %d duplicates input %d", ErrInvalidEssence, i, j)
		}
		seen[key] = i
	}

	for i, out := range e.Outputs {
		if out == nil {
			return fmt.Errorf("%w: output %d is nil", ErrInvalidEssence, i)
		}
		if v, ok := out.(variant.Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: output %d: %w", ErrInvalidEssence, i, err)
			}
		}
	}
	return nil
}

// UtxoInput returns input i when it is a UTXO input.
func (e *TransactionEssence) UtxoInput(i int) (*UtxoInput, bool) {
	if i < 0 || i >= len(e.Inputs) {
		return nil, false
	}
	in, ok := e.Inputs[i].(*UtxoInput)
	return in, ok
}

func (e *TransactionEssence) pack(p *variant.Packer) {
	p.U64(e.NetworkID)
	p.U32(e.CreationTime)
	Inputs.PackList(p, e.Inputs)
	p.Raw(e.InputsCommitment[:])
	Outputs.PackList(p, e.Outputs)
}

func (e *TransactionEssence) unpack(u *variant.Unpacker) {
	e.NetworkID = u.U64()
	e.CreationTime = u.U32()
	e.Inputs = Inputs.UnpackList(u)
	u.Raw(e.InputsCommitment[:])
	e.Outputs = Outputs.UnpackList(u)
}

// Bytes returns the binary form of the essence.
func (e *TransactionEssence) Bytes() []byte {
	p := variant.NewPacker()
	e.pack(p)
	return p.Bytes()
}

// Hash returns the BLAKE2b-256 hash of Bytes. This is the message every
// signature unlock signs.
func (e *TransactionEssence) Hash() [32]byte {
	return blake2b.Sum256(e.Bytes())
}

// EssenceFromBytes decodes and validates an essence.
func EssenceFromBytes(b []byte) (*TransactionEssence, error) {
	u := variant.NewUnpacker(b)
	e := new(TransactionEssence)
	e.unpack(u)
	if err := u.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEssence, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

type essenceJSON struct {
	NetworkID        uint64           `json:"networkId,string"`
	CreationTime     uint32           `json:"creationTime,omitempty"`
	Inputs           json.RawMessage  `json:"inputs"`
	InputsCommitment InputsCommitment `json:"inputsCommitment"`
	Outputs          json.RawMessage  `json:"outputs"`
}

func (e *TransactionEssence) MarshalJSON() ([]byte, error) {
	inputs, err := Inputs.EncodeJSONList(e.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := Outputs.EncodeJSONList(e.Outputs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(essenceJSON{
		NetworkID:        e.NetworkID,
		CreationTime:     e.CreationTime,
		Inputs:           inputs,
		InputsCommitment: e.InputsCommitment,
		Outputs:          outputs,
	})
}

func (e *TransactionEssence) UnmarshalJSON(data []byte) error {
	var in essenceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEssence, err)
	}
	inputs, err := Inputs.DecodeJSONList(in.Inputs)
	if err != nil {
		return err
	}
	outputs, err := Outputs.DecodeJSONList(in.Outputs)
	if err != nil {
		return err
	}
	*e = TransactionEssence{
		NetworkID:        in.NetworkID,
		CreationTime:     in.CreationTime,
		Inputs:           inputs,
		InputsCommitment: in.InputsCommitment,
		Outputs:          outputs,
	}
	return nil
}
