package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Account tracks the next unused address indices of one BIP44 account.
type Account struct {
	Alias        string `json:"alias"`
	Index        uint32 `json:"index"`
	NextExternal uint32 `json:"next_external"`
	NextInternal uint32 `json:"next_internal"`
}

// NextReceiveChain returns the next external chain and advances the index.
func (a *Account) NextReceiveChain(coinType uint32) (Chain, error) {
	c, err := Bip44Chain(coinType, a.Index, ExternalChain, a.NextExternal)
	if err != nil {
		return Chain{}, err
	}
	a.NextExternal++
	return c, nil
}

// NextRemainderChain returns the next internal chain and advances the
// index. Remainders are sent to internal addresses.
func (a *Account) NextRemainderChain(coinType uint32) (Chain, error) {
	c, err := Bip44Chain(coinType, a.Index, InternalChain, a.NextInternal)
	if err != nil {
		return Chain{}, err
	}
	a.NextInternal++
	return c, nil
}

// WalletState holds persisted account bookkeeping.
type WalletState struct {
	Accounts         []Account `json:"accounts"`
	NextAccountIndex uint32    `json:"next_account_index"`
}

// NewWalletState creates a new empty WalletState.
func NewWalletState() *WalletState {
	return &WalletState{Accounts: []Account{}}
}

// Validate checks the integrity of a deserialized WalletState.
func (ws *WalletState) Validate() error {
	seen := make(map[uint32]string)
	var maxIdx uint32

	for _, a := range ws.Accounts {
		if a.Index >= Hardened || a.NextExternal >= Hardened || a.NextInternal >= Hardened {
			return fmt.Errorf("account %q: index exceeds BIP32 hardened boundary", a.Alias)
		}
		if prev, ok := seen[a.Index]; ok {
			return fmt.Errorf("duplicate account index %d: accounts %q and %q", a.Index, prev, a.Alias)
		}
		seen[a.Index] = a.Alias
		if a.Index >= maxIdx {
			maxIdx = a.Index + 1
		}
	}

	if len(seen) > 0 && ws.NextAccountIndex < maxIdx {
		return fmt.Errorf("NextAccountIndex (%d) is less than max account index + 1 (%d)", ws.NextAccountIndex, maxIdx)
	}
	return nil
}

// CreateAccount allocates the next account index under alias.
func (ws *WalletState) CreateAccount(alias string) (*Account, error) {
	if ws.NextAccountIndex >= Hardened {
		return nil, fmt.Errorf("account limit reached: index would exceed BIP32 hardened boundary")
	}
	for _, a := range ws.Accounts {
		if a.Alias == alias {
			return nil, fmt.Errorf("%w: %q", ErrAccountExists, alias)
		}
	}

	ws.Accounts = append(ws.Accounts, Account{Alias: alias, Index: ws.NextAccountIndex})
	ws.NextAccountIndex++
	return &ws.Accounts[len(ws.Accounts)-1], nil
}

// Account returns the account with the given alias.
func (ws *WalletState) Account(alias string) (*Account, error) {
	for i := range ws.Accounts {
		if ws.Accounts[i].Alias == alias {
			return &ws.Accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, alias)
}

// LoadWalletState reads a state file. A missing file yields an empty state.
func LoadWalletState(path string) (*WalletState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewWalletState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("wallet: read state: %w", err)
	}

	var ws WalletState
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("wallet: parse state: %w", err)
	}
	if err := ws.Validate(); err != nil {
		return nil, fmt.Errorf("wallet: invalid state: %w", err)
	}
	return &ws, nil
}

// SaveWalletState writes the state file atomically.
func SaveWalletState(path string, ws *WalletState) error {
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("wallet: encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create state directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("wallet: write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("wallet: replace state: %w", err)
	}
	return nil
}
