package prepared

import "errors"

var (
	// ErrMissingMetadata indicates a signing record built without output metadata.
	ErrMissingMetadata = errors.New("prepared: missing output metadata")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("prepared: required parameter is nil")

	// ErrUnexpectedChain indicates a derivation chain on a record whose owner is not key-derived.
	ErrUnexpectedChain = errors.New("prepared: chain given for an owner that does not use HD keys")

	// ErrEmptyInputs indicates an envelope without signing records.
	ErrEmptyInputs = errors.New("prepared: no inputs")

	// ErrInputOrder indicates signing records that do not match the essence inputs one-to-one, in order.
	ErrInputOrder = errors.New("prepared: signing records do not match essence inputs")

	// ErrInvalidRemainder indicates a remainder that is not one of the essence outputs.
	ErrInvalidRemainder = errors.New("prepared: invalid remainder")

	// ErrInvalidReward indicates a reward for an unknown input or a negative amount.
	ErrInvalidReward = errors.New("prepared: invalid reward")

	// ErrUnlockMismatch indicates unlocks whose count, order or owners do not match the inputs.
	ErrUnlockMismatch = errors.New("prepared: unlocks do not match inputs")

	// ErrAlreadySigned indicates Complete was called on a signed envelope.
	ErrAlreadySigned = errors.New("prepared: transaction already signed")

	// ErrOutputSpent indicates the builder was asked to spend a spent output.
	ErrOutputSpent = errors.New("prepared: output already spent")

	// ErrInsufficientFunds indicates the spent outputs hold less than the new outputs.
	ErrInsufficientFunds = errors.New("prepared: insufficient funds")

	// ErrAmountOverflow indicates amounts whose sum does not fit in 64 bits.
	ErrAmountOverflow = errors.New("prepared: amount sum overflows")

	// ErrNoRemainderAddress indicates change is left over but no remainder address was given.
	ErrNoRemainderAddress = errors.New("prepared: change left over without a remainder address")
)
