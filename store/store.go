// Package store keeps prepared transactions and their signed payloads,
// keyed by signing hash, and reads and writes the handoff files passed
// to an offline signer.
package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

// Key is the signing hash of a prepared transaction.
type Key [32]byte

// KeyOf returns the key p is stored under.
func KeyOf(p *prepared.PreparedTransactionData) Key { return Key(p.SigningHash()) }

func (k Key) String() string { return "0x" + hex.EncodeToString(k[:]) }

// ParseKey parses the 0x-prefixed hex form of a key.
func ParseKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return k, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(b) != len(k) {
		return k, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKey, len(b), len(k))
	}
	copy(k[:], b)
	return k, nil
}

// Entry describes one stored envelope.
type Entry struct {
	Key    Key
	Signed bool
}

// Store persists prepared transactions and the payloads that complete them.
type Store interface {
	// PutPrepared stores p under its signing hash.
	PutPrepared(p *prepared.PreparedTransactionData) (Key, error)

	// GetPrepared returns a fresh, Unsigned copy of the envelope.
	GetPrepared(k Key) (*prepared.PreparedTransactionData, error)

	// PutSigned stores a payload that completes a stored envelope.
	PutSigned(payload *block.TransactionPayload) (Key, error)

	// GetSigned returns the payload stored for k.
	GetSigned(k Key) (*block.TransactionPayload, error)

	// List returns all entries ordered by key.
	List() ([]Entry, error)
}

func encodePrepared(p *prepared.PreparedTransactionData) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("store: encode prepared: %w", err)
	}
	return data, nil
}

func decodePrepared(data []byte) (*prepared.PreparedTransactionData, error) {
	var p prepared.PreparedTransactionData
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: prepared: %w", ErrCorrupt, err)
	}
	return &p, nil
}

func decodeSigned(data []byte) (*block.TransactionPayload, error) {
	var t block.TransactionPayload
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: signed: %w", ErrCorrupt, err)
	}
	return &t, nil
}

// checkSigned returns the key of payload and its encoding, after checking
// that payload completes the envelope stored as preparedData.
func checkSigned(preparedData []byte, payload *block.TransactionPayload) ([]byte, error) {
	p, err := decodePrepared(preparedData)
	if err != nil {
		return nil, err
	}
	if _, err := p.Complete(payload.Unlocks); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("store: encode signed: %w", err)
	}
	return data, nil
}

func payloadKey(payload *block.TransactionPayload) (Key, error) {
	if payload == nil || payload.Essence == nil {
		return Key{}, fmt.Errorf("%w: signed payload", ErrNilParam)
	}
	return Key(payload.Essence.Hash()), nil
}
