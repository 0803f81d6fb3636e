package signer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// MnemonicSigner signs with keys derived from an in-memory HD wallet.
type MnemonicSigner struct {
	wallet *wallet.Wallet
	logger *zap.Logger
}

// Option configures a MnemonicSigner.
type Option func(*MnemonicSigner)

// WithLogger sets the signer's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *MnemonicSigner) { s.logger = l }
}

// NewMnemonicSigner returns a signer for w.
func NewMnemonicSigner(w *wallet.Wallet, opts ...Option) *MnemonicSigner {
	s := &MnemonicSigner{wallet: w, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignTransaction signs the first input of every key once and references
// that signature from later inputs of the same key. Inputs owned by an
// alias or NFT reference the earlier input that holds it.
func (s *MnemonicSigner) SignTransaction(ctx context.Context, p *prepared.PreparedTransactionData) ([]block.Unlock, error) {
	hash := p.SigningHash()
	essence := p.Essence()
	inputs := p.Inputs()

	unlocks := make([]block.Unlock, len(inputs))
	sigs := make(map[block.KeyHash]uint16)
	aliases := make(map[block.AliasID]uint16)
	nfts := make(map[block.NftID]uint16)

	for i, rec := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos := uint16(i)

		switch owner := rec.Output.UnlockAddress(essence.CreationTime).(type) {
		case *block.KeyAddress:
			if ref, ok := sigs[owner.PubKeyHash]; ok {
				unlocks[i] = &block.ReferenceUnlock{Reference: ref}
				break
			}
			u, err := s.signInput(i, rec, owner, hash)
			if err != nil {
				return nil, err
			}
			unlocks[i] = u
			sigs[owner.PubKeyHash] = pos
		case *block.AliasAddress:
			ref, ok := aliases[owner.AliasID]
			if !ok {
				return nil, fmt.Errorf("%w: input %d is owned by alias %s, which no earlier input holds", ErrUnsupportedOwner, i, owner.AliasID)
			}
			unlocks[i] = &block.AliasUnlock{Reference: ref}
		case *block.NftAddress:
			ref, ok := nfts[owner.NftID]
			if !ok {
				return nil, fmt.Errorf("%w: input %d is owned by nft %s, which no earlier input holds", ErrUnsupportedOwner, i, owner.NftID)
			}
			unlocks[i] = &block.NftUnlock{Reference: ref}
		default:
			return nil, fmt.Errorf("%w: input %d (output kind %d)", ErrUnsupportedOwner, i, rec.Output.Kind())
		}

		switch out := rec.Output.(type) {
		case *block.AliasOutput:
			aliases[out.ResolvedID(rec.OutputID())] = pos
		case *block.NftOutput:
			nfts[out.ResolvedID(rec.OutputID())] = pos
		}
	}

	s.logger.Info("signed transaction",
		zap.Int("inputs", len(inputs)),
		zap.Int("signatures", len(sigs)),
		zap.String("signing_hash", fmt.Sprintf("%x", hash[:])),
	)
	return unlocks, nil
}

func (s *MnemonicSigner) signInput(i int, rec *prepared.InputSigningData, owner *block.KeyAddress, hash [32]byte) (block.Unlock, error) {
	if rec.Chain == nil {
		return nil, fmt.Errorf("%w: input %d", ErrMissingChain, i)
	}
	if err := s.wallet.Network().CheckChain(*rec.Chain); err != nil {
		return nil, fmt.Errorf("input %d: %w", i, err)
	}
	kp, err := s.wallet.DeriveChain(*rec.Chain)
	if err != nil {
		return nil, fmt.Errorf("input %d: %w", i, err)
	}
	if !block.SameAddress(kp.Address(), owner) {
		return nil, fmt.Errorf("%w: input %d, chain %s derives %s, owner is %s", ErrKeyMismatch, i, rec.Chain, kp.Address().PubKeyHash, owner.PubKeyHash)
	}
	sig, err := block.SignSecp256k1(kp.PrivateKey, hash[:])
	if err != nil {
		return nil, fmt.Errorf("input %d: %w", i, err)
	}
	s.logger.Debug("signed input", zap.Int("input", i), zap.Stringer("chain", rec.Chain))
	return &block.SignatureUnlock{Signature: sig}, nil
}
