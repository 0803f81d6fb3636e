package signer

import "errors"

var (
	// ErrKeyMismatch indicates the key derived from a chain does not own the input.
	ErrKeyMismatch = errors.New("signer: derived key does not own the input")

	// ErrMissingChain indicates a key-owned input without a derivation chain.
	ErrMissingChain = errors.New("signer: key-owned input has no chain")

	// ErrUnsupportedOwner indicates an input owner the signer cannot unlock.
	ErrUnsupportedOwner = errors.New("signer: unsupported input owner")

	// ErrUnavailable indicates the remote signer could not be reached.
	ErrUnavailable = errors.New("signer: remote signer unavailable")
)
