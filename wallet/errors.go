package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrInvalidPath indicates a malformed derivation path or an out-of-range segment.
	ErrInvalidPath = errors.New("wallet: invalid derivation path")

	// ErrCoinTypeMismatch indicates a chain whose coin type does not belong to the network.
	ErrCoinTypeMismatch = errors.New("wallet: chain coin type does not match network")

	// ErrAccountNotFound indicates the named account does not exist.
	ErrAccountNotFound = errors.New("wallet: account not found")

	// ErrAccountExists indicates the account alias is already taken.
	ErrAccountExists = errors.New("wallet: account already exists")

	// ErrDecryptionFailed indicates wrong password or corrupted seed file.
	ErrDecryptionFailed = errors.New("wallet: seed decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates seed checksum verification failed after decryption.
	ErrChecksumMismatch = errors.New("wallet: seed checksum mismatch")

	// ErrInvalidNetwork indicates unknown network name with no custom config.
	ErrInvalidNetwork = errors.New("wallet: invalid network name")

	// ErrInvalidSeed indicates the seed is empty or invalid.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")
)
