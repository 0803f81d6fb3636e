package block

import "errors"

var (
	// ErrMalformedOutputID indicates a packed output ID of the wrong length or with an invalid index.
	ErrMalformedOutputID = errors.New("block: malformed output id")

	// ErrOutputIndexOutOfRange indicates an output index above MaxOutputIndex.
	ErrOutputIndexOutOfRange = errors.New("block: output index out of range")

	// ErrInvalidHex indicates a hex-encoded field could not be decoded.
	ErrInvalidHex = errors.New("block: invalid hex")

	// ErrInvalidAddress indicates a missing or undecodable address.
	ErrInvalidAddress = errors.New("block: invalid address")

	// ErrInvalidOutput indicates an output that violates its own invariants.
	ErrInvalidOutput = errors.New("block: invalid output")

	// ErrInvalidEssence indicates a transaction essence with bad counts or duplicate inputs.
	ErrInvalidEssence = errors.New("block: invalid transaction essence")

	// ErrInvalidSignature indicates a signature that is malformed or does not verify.
	ErrInvalidSignature = errors.New("block: invalid signature")

	// ErrInvalidUnlock indicates an unlock that is malformed.
	ErrInvalidUnlock = errors.New("block: invalid unlock")
)
