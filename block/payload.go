package block

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/walletsdk-go/variant"
)

// TransactionPayload is a signed transaction: the essence plus one unlock
// per input, in input order.
type TransactionPayload struct {
	Essence *TransactionEssence
	Unlocks []Unlock
}

// Bytes returns the binary form of the payload.
func (t *TransactionPayload) Bytes() []byte {
	p := variant.NewPacker()
	t.Essence.pack(p)
	Unlocks.PackList(p, t.Unlocks)
	return p.Bytes()
}

// ID returns the transaction ID, the BLAKE2b-256 hash of Bytes.
func (t *TransactionPayload) ID() TransactionID {
	return TransactionID(blake2b.Sum256(t.Bytes()))
}

// PayloadFromBytes decodes a signed transaction.
func PayloadFromBytes(b []byte) (*TransactionPayload, error) {
	u := variant.NewUnpacker(b)
	t := &TransactionPayload{Essence: new(TransactionEssence)}
	t.Essence.unpack(u)
	t.Unlocks = Unlocks.UnpackList(u)
	if err := u.Done(); err != nil {
		return nil, fmt.Errorf("block: decode transaction payload: %w", err)
	}
	return t, nil
}

type payloadJSON struct {
	Essence *TransactionEssence `json:"essence"`
	Unlocks json.RawMessage     `json:"unlocks"`
}

func (t *TransactionPayload) MarshalJSON() ([]byte, error) {
	unlocks, err := Unlocks.EncodeJSONList(t.Unlocks)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadJSON{Essence: t.Essence, Unlocks: unlocks})
}

func (t *TransactionPayload) UnmarshalJSON(data []byte) error {
	var in payloadJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Essence == nil {
		return fmt.Errorf("%w: payload has no essence", ErrInvalidEssence)
	}
	unlocks, err := Unlocks.DecodeJSONList(in.Unlocks)
	if err != nil {
		return err
	}
	t.Essence = in.Essence
	t.Unlocks = unlocks
	return nil
}
