// Package wallet derives signing keys from a BIP39 seed and describes
// where they live.
//
// Key hierarchy: m/44'/{coin}'/{account}'/{change}'/{index}', every
// segment hardened. Chain is the key reference handed to signers; it
// never carries key material.
package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128 // 12-word mnemonic
	Mnemonic24Words = 256 // 24-word mnemonic

	// Argon2id parameters for seed encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Seed file layout: magic || salt || nonce || AES-GCM(seed || checksum).
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// seedFileMagic tags the seed file format and is bound into the GCM tag.
var seedFileMagic = []byte("OSK1")

// GenerateMnemonic creates a new BIP39 mnemonic with the specified entropy bits.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic string is valid BIP39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte BIP39 seed. An empty passphrase
// still participates in derivation.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to derive seed: %w", err)
	}

	return seed, nil
}

func seedKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
}

func seedChecksum(seed []byte) []byte {
	sum := blake2b.Sum256(seed)
	return sum[:ChecksumLen]
}

// EncryptSeed seals the seed with a password using Argon2id and AES-256-GCM.
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate salt: %w", err)
	}

	gcm, err := newSeedAEAD(seedKey(password, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate nonce: %w", err)
	}

	plaintext := append(append([]byte(nil), seed...), seedChecksum(seed)...)

	out := make([]byte, 0, len(seedFileMagic)+SaltLen+NonceLen+len(plaintext)+gcm.Overhead())
	out = append(out, seedFileMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, seedFileMagic), nil
}

// DecryptSeed opens data produced by EncryptSeed.
func DecryptSeed(encrypted []byte, password string) ([]byte, error) {
	header := len(seedFileMagic) + SaltLen + NonceLen
	if len(encrypted) < header+ChecksumLen || !bytes.Equal(encrypted[:len(seedFileMagic)], seedFileMagic) {
		return nil, ErrDecryptionFailed
	}

	salt := encrypted[len(seedFileMagic) : len(seedFileMagic)+SaltLen]
	nonce := encrypted[len(seedFileMagic)+SaltLen : header]

	gcm, err := newSeedAEAD(seedKey(password, salt))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, nonce, encrypted[header:], seedFileMagic)
	if err != nil || len(plaintext) <= ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	seed := plaintext[:len(plaintext)-ChecksumLen]
	if !bytes.Equal(plaintext[len(seed):], seedChecksum(seed)) {
		return nil, ErrChecksumMismatch
	}
	return seed, nil
}

func newSeedAEAD(key []byte) (cipher.AEAD, error) {
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(blk)
	if err != nil {
		return nil, fmt.Errorf("wallet: GCM creation failed: %w", err)
	}
	return gcm, nil
}

// WriteSeedFile encrypts seed and writes it to path with owner-only permissions.
func WriteSeedFile(path string, seed []byte, password string) error {
	data, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create seed directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("wallet: write seed file: %w", err)
	}
	return nil
}

// ReadSeedFile reads and decrypts a seed file.
func ReadSeedFile(path, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: read seed file: %w", err)
	}
	return DecryptSeed(data, password)
}
