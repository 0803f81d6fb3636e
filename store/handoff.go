package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

// WritePrepared writes p as indented JSON for transfer to an offline signer.
func WritePrepared(path string, p *prepared.PreparedTransactionData) error {
	if p == nil {
		return fmt.Errorf("%w: prepared transaction", ErrNilParam)
	}
	return writeJSON(path, p)
}

// ReadPrepared reads a handoff file. The envelope is re-validated and
// always comes back Unsigned.
func ReadPrepared(path string) (*prepared.PreparedTransactionData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read prepared: %w", err)
	}
	var p prepared.PreparedTransactionData
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

// WriteSigned writes the signed payload returned by the offline signer.
func WriteSigned(path string, payload *block.TransactionPayload) error {
	if payload == nil || payload.Essence == nil {
		return fmt.Errorf("%w: signed payload", ErrNilParam)
	}
	return writeJSON(path, payload)
}

// ReadSigned reads a signed payload file.
func ReadSigned(path string) (*block.TransactionPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read signed: %w", err)
	}
	var t block.TransactionPayload
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", filepath.Base(path), err)
	}
	return &t, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("store: create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store: replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
